// Package httputil writes responses in the shape the Mockify API uses,
// including its error document.
package httputil

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorBody is the error document returned by the Mockify API.
type ErrorBody struct {
	Status           int                 `json:"status"`
	Error            string              `json:"error"`
	Message          string              `json:"message"`
	Timestamp        string              `json:"timestamp"`
	Path             string              `json:"path"`
	ValidationErrors map[string][]string `json:"validationErrors,omitempty"`
}

// Now is the clock used for error timestamps.
var Now = time.Now

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// NewErrorBody builds an error document for status.
func NewErrorBody(status int, path, message string) *ErrorBody {
	return &ErrorBody{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Timestamp: Now().UTC().Format(time.RFC3339),
		Path:      path,
	}
}

// WriteError writes an error document with the given status code.
func WriteError(w http.ResponseWriter, status int, path, message string) {
	WriteJSON(w, status, NewErrorBody(status, path, message))
}

// WriteValidationError writes a 400 error document with per-field messages.
func WriteValidationError(w http.ResponseWriter, path string, fields map[string][]string) {
	body := NewErrorBody(http.StatusBadRequest, path, "Validation failed")
	body.ValidationErrors = fields
	WriteJSON(w, http.StatusBadRequest, body)
}

// WriteOK writes a 200 OK response with data.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a 201 Created response with the created resource.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a 204 No Content response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteUnauthorized writes a 401 error document.
func WriteUnauthorized(w http.ResponseWriter, path, message string) {
	WriteError(w, http.StatusUnauthorized, path, message)
}

// WriteNotFound writes a 404 error document.
func WriteNotFound(w http.ResponseWriter, path, message string) {
	WriteError(w, http.StatusNotFound, path, message)
}

// WriteConflict writes a 409 error document.
func WriteConflict(w http.ResponseWriter, path, message string) {
	WriteError(w, http.StatusConflict, path, message)
}
