package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("writes JSON with correct content type", func(t *testing.T) {
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusOK, map[string]string{"foo": "bar"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var result map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "bar", result["foo"])
	})

	t.Run("handles nil data", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteJSON(rec, http.StatusAccepted, nil)
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestWriteError(t *testing.T) {
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	orig := Now
	Now = func() time.Time { return fixed }
	t.Cleanup(func() { Now = orig })

	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusConflict, "/api/v1/auth/register", "Email already registered")

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrorBody{
		Status:    409,
		Error:     "Conflict",
		Message:   "Email already registered",
		Timestamp: "2026-03-04T05:06:07Z",
		Path:      "/api/v1/auth/register",
	}, body)
}

func TestWriteValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, "/api/v1/organizations", map[string][]string{"name": {"size must be between 3 and 100"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, []string{"size must be between 3 and 100"}, body.ValidationErrors["name"])
}

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
	}{
		{"ok", func(w http.ResponseWriter) { WriteOK(w, []int{1}) }, http.StatusOK},
		{"created", func(w http.ResponseWriter) { WriteCreated(w, map[string]int{"id": 1}) }, http.StatusCreated},
		{"no content", WriteNoContent, http.StatusNoContent},
		{"unauthorized", func(w http.ResponseWriter) { WriteUnauthorized(w, "/x", "Token expired") }, http.StatusUnauthorized},
		{"not found", func(w http.ResponseWriter) { WriteNotFound(w, "/x", "missing") }, http.StatusNotFound},
		{"conflict", func(w http.ResponseWriter) { WriteConflict(w, "/x", "taken") }, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
