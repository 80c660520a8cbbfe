// Package validation checks record data against the JSON Schema of the
// mock schema it belongs to, so that bad records are rejected locally
// before they reach the API.
//
// # Basic Usage
//
//	v, err := validation.Compile(schema.SchemaJSON)
//	if err != nil {
//	    return err
//	}
//	if res := v.Validate(data); !res.Valid {
//	    return res.Err()
//	}
//
// Errors are reported per field with the field named in dot notation
// ("address.city", "tags.0").
package validation
