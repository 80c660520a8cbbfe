package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRecord is matched by the error returned from Result.Err.
var ErrInvalidRecord = errors.New("record does not match schema")

// ErrorCode constants for machine-readable error identification
const (
	ErrCodeSchema      = "schema"
	ErrCodeInvalidJSON = "invalid_json"
)

// FieldError represents a validation error for a single field.
type FieldError struct {
	// Field is the dotted path of the field, empty for the record itself
	Field string `json:"field,omitempty"`

	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`
}

// Error implements the error interface
func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Result contains the outcome of validation.
type Result struct {
	Valid  bool          `json:"valid"`
	Errors []*FieldError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (r *Result) AddError(err *FieldError) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// Merge combines another result into this one
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	if !other.Valid {
		r.Valid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
}

// Err returns nil for a valid result, otherwise an error wrapping
// ErrInvalidRecord that lists every field error.
func (r *Result) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(msgs, "; "))
}
