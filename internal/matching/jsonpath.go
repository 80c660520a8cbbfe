package matching

import (
	"encoding/json"
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Select evaluates a JSONPath expression against each document and returns
// every matched value in order. Documents without a match contribute nothing.
func Select(path string, docs []any) ([]any, error) {
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %q: %w", path, err)
	}

	var out []any
	for _, doc := range docs {
		out = append(out, expr.Get(doc)...)
	}
	return out, nil
}

// Documents converts typed values into generic JSON documents.
func Documents[T any](items []T) ([]any, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	var docs []any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
