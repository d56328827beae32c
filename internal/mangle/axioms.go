package mangle

import (
	_ "embed"
	"fmt"
)

// CategoryAxioms is the built-in axiom program for square inference.
//
//go:embed axioms/category.mg
var CategoryAxioms string

// Relation predicates the square decoder reads back, and the base predicate
// fed with oriented edges. Replacement programs must declare all of them.
const (
	EdgePredicate = "edge"
	ZeroEntailed  = "zero_entailed"
)

var requiredByDecoder = []string{
	EdgePredicate, ZeroEntailed,
	"mor", "iso", "mono", "epi", "zero", "left_inv", "right_inv",
}

// NewAxiomEngine returns an engine with an axiom program loaded: the file at
// path when it is set, the built-in program otherwise.
func NewAxiomEngine(cfg Config, path string) (*Engine, error) {
	e, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	if path == "" {
		err = e.LoadSchemaString(CategoryAxioms)
	} else {
		err = e.LoadSchema(path)
	}
	if err != nil {
		return nil, err
	}
	if err := e.RequirePredicates(2, requiredByDecoder...); err != nil {
		return nil, fmt.Errorf("axiom program unusable: %w", err)
	}
	return e, nil
}
