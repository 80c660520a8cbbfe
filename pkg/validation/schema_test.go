package validation

import (
	"errors"
	"strings"
	"testing"
)

const userSchema = `{
	"type": "object",
	"required": ["name", "age"],
	"properties": {
		"name": {"type": "string", "minLength": 2},
		"age": {"type": "integer", "minimum": 0},
		"address": {
			"type": "object",
			"properties": {"city": {"type": "string"}}
		}
	}
}`

func TestCompile_Invalid(t *testing.T) {
	if _, err := Compile([]byte(`{"type": 12}`)); err == nil {
		t.Fatal("expected compile error")
	}
	if _, err := Compile([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for malformed schema")
	}
}

func TestValidate(t *testing.T) {
	v, err := Compile([]byte(userSchema))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	tests := []struct {
		name   string
		data   map[string]any
		valid  bool
		fields []string
	}{
		{
			name:  "valid",
			data:  map[string]any{"name": "Ada", "age": 36},
			valid: true,
		},
		{
			name:   "missing required",
			data:   map[string]any{"name": "Ada"},
			fields: []string{""},
		},
		{
			name:   "wrong type",
			data:   map[string]any{"name": "Ada", "age": "old"},
			fields: []string{"age"},
		},
		{
			name:   "nested field",
			data:   map[string]any{"name": "Ada", "age": 1, "address": map[string]any{"city": 7}},
			fields: []string{"address.city"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.data)
			if res.Valid != tt.valid {
				t.Fatalf("Valid = %v, want %v (errors: %v)", res.Valid, tt.valid, res.Errors)
			}
			for i, field := range tt.fields {
				if i >= len(res.Errors) {
					t.Fatalf("missing error for field %q", field)
				}
				if res.Errors[i].Field != field {
					t.Errorf("error %d field = %q, want %q", i, res.Errors[i].Field, field)
				}
			}
		})
	}
}

func TestValidate_EmptySchemaAcceptsAll(t *testing.T) {
	v, err := Compile(nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res := v.Validate(map[string]any{"anything": true}); !res.Valid {
		t.Errorf("expected valid, got %v", res.Errors)
	}
}

func TestValidateJSON(t *testing.T) {
	v, _ := Compile([]byte(userSchema))

	data, res := v.ValidateJSON([]byte(`{"name":"Bo","age":3}`))
	if !res.Valid {
		t.Fatalf("expected valid, got %v", res.Errors)
	}
	if data["name"] != "Bo" {
		t.Errorf("data[name] = %v", data["name"])
	}

	_, res = v.ValidateJSON([]byte(`[1,2]`))
	if res.Valid || res.Errors[0].Code != ErrCodeInvalidJSON {
		t.Errorf("expected invalid_json, got %+v", res)
	}
}

func TestResult_Err(t *testing.T) {
	res := &Result{Valid: true}
	if res.Err() != nil {
		t.Fatal("valid result must have nil Err")
	}

	res.AddError(&FieldError{Field: "age", Code: ErrCodeSchema, Message: "expected integer"})
	res.AddError(&FieldError{Code: ErrCodeSchema, Message: "missing properties: 'name'"})
	err := res.Err()
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if !strings.Contains(err.Error(), "age: expected integer; missing properties") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestFieldFromPointer(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"/":         "",
		"/name":     "name",
		"/tags/0":   "tags.0",
		"/a~1b/c~0": "a/b.c~",
	}
	for in, want := range cases {
		if got := fieldFromPointer(in); got != want {
			t.Errorf("fieldFromPointer(%q) = %q, want %q", in, got, want)
		}
	}
}
