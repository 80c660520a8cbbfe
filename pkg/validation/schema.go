package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaResource = "schema.json"

// RecordValidator validates record data against a compiled JSON Schema.
type RecordValidator struct {
	schema *jsonschema.Schema
}

// Compile compiles a JSON Schema document. An empty document accepts any
// record.
func Compile(schemaJSON []byte) (*RecordValidator, error) {
	if len(bytes.TrimSpace(schemaJSON)) == 0 {
		return &RecordValidator{}, nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaResource, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &RecordValidator{schema: schema}, nil
}

// Validate checks record data against the schema.
func (v *RecordValidator) Validate(data map[string]any) *Result {
	result := &Result{Valid: true}
	if v.schema == nil {
		return result
	}

	// Round-trip so that typed Go values reach the validator as JSON values.
	raw, err := json.Marshal(data)
	if err != nil {
		result.AddError(&FieldError{Code: ErrCodeInvalidJSON, Message: err.Error()})
		return result
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		result.AddError(&FieldError{Code: ErrCodeInvalidJSON, Message: err.Error()})
		return result
	}

	if err := v.schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			parseSchemaErrors(validationErr, result)
		} else {
			result.AddError(&FieldError{Code: ErrCodeSchema, Message: err.Error()})
		}
	}
	return result
}

// ValidateJSON decodes a JSON object and validates it.
func (v *RecordValidator) ValidateJSON(raw []byte) (map[string]any, *Result) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		result := &Result{}
		result.AddError(&FieldError{Code: ErrCodeInvalidJSON, Message: fmt.Sprintf("record data must be a JSON object: %v", err)})
		return nil, result
	}
	return data, v.Validate(data)
}

// parseSchemaErrors flattens the leaves of a validation error tree.
func parseSchemaErrors(err *jsonschema.ValidationError, result *Result) {
	if len(err.Causes) == 0 {
		result.AddError(&FieldError{
			Field:   fieldFromPointer(err.InstanceLocation),
			Code:    ErrCodeSchema,
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		parseSchemaErrors(cause, result)
	}
}

// fieldFromPointer converts a JSON Pointer to dot notation.
func fieldFromPointer(ptr string) string {
	if ptr == "" || ptr == "/" {
		return ""
	}
	ptr = strings.TrimPrefix(ptr, "/")
	ptr = strings.ReplaceAll(ptr, "/", ".")
	ptr = strings.ReplaceAll(ptr, "~1", "/")
	return strings.ReplaceAll(ptr, "~0", "~")
}
