package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors for errors.Is checks against *APIError.
var (
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrNetwork        = errors.New("network error")
	ErrSessionExpired = errors.New("session expired")
)

// ErrorCodeConnection is the ErrorCode of an APIError for requests that got
// no response.
const ErrorCodeConnection = "connection_error"

// GenericMessage is shown when an error carries no usable message.
const GenericMessage = "An unexpected error occurred"

// APIError is an error response from the Mockify API, or a transport failure
// when StatusCode is 0.
type APIError struct {
	StatusCode       int
	ErrorCode        string
	Message          string
	Path             string
	Timestamp        string
	ValidationErrors map[string][]string

	cause error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode == 0 {
		return "request failed: no response"
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// Unwrap returns the transport error, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// Is maps the status code onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.StatusCode == 0
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// errorBody is the error document the API returns.
type errorBody struct {
	Status           int                 `json:"status"`
	Error            string              `json:"error"`
	Message          string              `json:"message"`
	Timestamp        string              `json:"timestamp"`
	Path             string              `json:"path"`
	ValidationErrors map[string][]string `json:"validationErrors,omitempty"`
}

// parseError builds an APIError from a non-2xx response.
func parseError(status int, body []byte, path string) *APIError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && (eb.Message != "" || eb.Error != "" || len(eb.ValidationErrors) > 0) {
		apiErr := &APIError{
			StatusCode:       status,
			ErrorCode:        eb.Error,
			Message:          eb.Message,
			Path:             eb.Path,
			Timestamp:        eb.Timestamp,
			ValidationErrors: eb.ValidationErrors,
		}
		if apiErr.Path == "" {
			apiErr.Path = path
		}
		return apiErr
	}

	msg := fmt.Sprintf("server returned status %d", status)
	if text := strings.TrimSpace(string(body)); text != "" {
		msg += ": " + truncate(text, 200)
	}
	return &APIError{
		StatusCode: status,
		ErrorCode:  "unknown_error",
		Message:    msg,
		Path:       path,
	}
}

func connectionError(baseURL string, err error) *APIError {
	return &APIError{
		ErrorCode: ErrorCodeConnection,
		Message:   fmt.Sprintf("cannot connect to Mockify API at %s: %v", baseURL, err),
		cause:     err,
	}
}

// UserMessage extracts the message to show a user for err: the joined
// validation errors when present, else the server message, else a generic
// fallback.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSessionExpired) {
		return "Your session has expired. Please log in again."
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return GenericMessage
	}

	if len(apiErr.ValidationErrors) > 0 {
		fields := make([]string, 0, len(apiErr.ValidationErrors))
		for field := range apiErr.ValidationErrors {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		var msgs []string
		for _, field := range fields {
			msgs = append(msgs, apiErr.ValidationErrors[field]...)
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, ", ")
		}
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericMessage
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
