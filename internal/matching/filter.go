package matching

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Predicate is a compiled boolean expression over a record document.
type Predicate struct {
	source  string
	program *vm.Program
}

// Compile compiles a boolean expression such as `data.age > 30`. Top-level
// fields of the document are variables of the expression.
func Compile(expression string) (*Predicate, error) {
	program, err := expr.Compile(expression, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}
	return &Predicate{source: expression, program: program}, nil
}

// Match reports whether the expression holds for doc. Documents that are
// not JSON objects never match.
func (p *Predicate) Match(doc any) (bool, error) {
	env, ok := doc.(map[string]any)
	if !ok {
		return false, nil
	}
	out, err := expr.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.source, err)
	}
	matched, _ := out.(bool)
	return matched, nil
}

// Filter returns the documents for which the expression holds.
func Filter(expression string, docs []any) ([]any, error) {
	p, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(docs))
	for _, doc := range docs {
		ok, err := p.Match(doc)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, doc)
		}
	}
	return out, nil
}
