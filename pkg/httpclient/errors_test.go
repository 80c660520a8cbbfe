package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError_StructuredBody(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"status": 422,
		"error": "Unprocessable Entity",
		"message": "Validation failed",
		"timestamp": "2026-01-02T03:04:05Z",
		"path": "/api/v1/auth/register",
		"validationErrors": {"email": ["must be a well-formed email address"]}
	}`)

	err := parseError(http.StatusUnprocessableEntity, body, "/auth/register")

	assert.Equal(t, 422, err.StatusCode)
	assert.Equal(t, "Unprocessable Entity", err.ErrorCode)
	assert.Equal(t, "Validation failed", err.Message)
	assert.Equal(t, "2026-01-02T03:04:05Z", err.Timestamp)
	assert.Equal(t, "/api/v1/auth/register", err.Path)
	assert.Equal(t, []string{"must be a well-formed email address"}, err.ValidationErrors["email"])
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseError_UnstructuredBody(t *testing.T) {
	t.Parallel()

	err := parseError(http.StatusBadGateway, []byte("upstream down"), "/organizations")

	assert.Equal(t, "unknown_error", err.ErrorCode)
	assert.Equal(t, "server returned status 502: upstream down", err.Error())
	assert.Equal(t, "/organizations", err.Path)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestParseError_EmptyBody(t *testing.T) {
	t.Parallel()

	err := parseError(http.StatusNotFound, nil, "/organizations/1")
	assert.Equal(t, "server returned status 404", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAPIError_NetworkUnwraps(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := connectionError("http://localhost:8080/api/v1", cause)

	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrorCodeConnection, err.ErrorCode)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{
			name: "validation errors are joined",
			err: &APIError{StatusCode: 400, Message: "Validation failed", ValidationErrors: map[string][]string{
				"password": {"size must be between 8 and 100"},
				"email":    {"must not be blank", "must be a well-formed email address"},
			}},
			want: "must not be blank, must be a well-formed email address, size must be between 8 and 100",
		},
		{"server message", &APIError{StatusCode: 409, Message: "Email already registered"}, "Email already registered"},
		{"no message", &APIError{StatusCode: 500}, GenericMessage},
		{"wrapped", fmt.Errorf("create project: %w", &APIError{StatusCode: 404, Message: "Organization not found"}), "Organization not found"},
		{"session expired", fmt.Errorf("%w: %w", ErrSessionExpired, &APIError{StatusCode: 401, Message: "Token expired"}), "Your session has expired. Please log in again."},
		{"plain error", errors.New("open data.json: no such file"), "open data.json: no such file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
