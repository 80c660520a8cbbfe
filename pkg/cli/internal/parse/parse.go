// Package parse provides string parsing utilities for CLI commands.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// KeyValue parses a "key:value" or "key=value" string.
// If delimiters are provided, uses the first one found; otherwise defaults to '='.
// Returns the key, value, and a boolean indicating success.
func KeyValue(s string, delimiters ...rune) (key, value string, ok bool) {
	if len(delimiters) == 0 {
		delimiters = []rune{'='}
	}

	for i, c := range s {
		for _, d := range delimiters {
			if c == d {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// Assignments builds a record object from "path=value" pairs. Dotted paths
// create nested objects and values are decoded as JSON when they parse,
// otherwise kept as strings:
//
//	name=Ada age=36 address.city=Paris tags=["a","b"]
func Assignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any)
	for _, pair := range pairs {
		key, raw, ok := KeyValue(pair)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q (want key=value)", pair)
		}
		if err := assign(out, strings.Split(key, "."), Value(raw)); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}
	return out, nil
}

// Value decodes s as a JSON value, falling back to the string itself.
func Value(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

func assign(m map[string]any, path []string, v any) error {
	for i, seg := range path {
		if seg == "" {
			return errors.New("empty path segment")
		}
		if i == len(path)-1 {
			m[seg] = v
			return nil
		}
		next, exists := m[seg]
		if !exists {
			child := make(map[string]any)
			m[seg] = child
			m = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%s is not an object", seg)
		}
		m = child
	}
	return nil
}
