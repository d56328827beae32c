// Package parser builds diagram expressions from notation text.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cosquare/internal/expr"
	"cosquare/internal/grammar"
	"cosquare/internal/logging"
	"cosquare/internal/morphism"
)

// ParseError is returned when text is not a well-formed expression.
type ParseError struct {
	Input  string
	Reason string
	// Err is the underlying *grammar.SyntaxError when the grammar rejected
	// the text, nil when the tree was malformed.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("unable to parse expression %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

var variantKinds = map[string]morphism.Kind{
	"dir":           morphism.Dir,
	"rev_dir":       morphism.RevDir,
	"iso":           morphism.Iso,
	"mono":          morphism.Mono,
	"rev_mono":      morphism.RevMono,
	"epi":           morphism.Epi,
	"rev_epi":       morphism.RevEpi,
	"epi_mono":      morphism.EpiMono,
	"rev_epi_mono":  morphism.RevEpiMono,
	"left_inv":      morphism.LeftInv,
	"rev_left_inv":  morphism.RevLeftInv,
	"right_inv":     morphism.RightInv,
	"rev_right_inv": morphism.RevRightInv,
	"zero":          morphism.Zero,
}

// Parse converts notation text into an expression.
func Parse(text string) (expr.Expr, error) {
	root, err := grammar.Parse(text)
	if err != nil {
		return nil, &ParseError{Input: text, Reason: "syntax", Err: err}
	}
	w := &walker{input: text}
	e, err := w.expr(root)
	if err != nil {
		return nil, err
	}
	if len(w.ignored) > 0 {
		logging.Get(logging.CategoryParse).Debug("ignored parse nodes",
			zap.String("input", text), zap.Strings("nodes", w.ignored))
	}
	return e, nil
}

// MustParse is Parse that panics on error. It is meant for tests and
// fixed literals.
func MustParse(text string) expr.Expr {
	e, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("unable to parse %q: %v", text, err))
	}
	return e
}

// IsParseError reports whether err came from Parse.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

type walker struct {
	input   string
	ignored []string
}

func (w *walker) fail(format string, args ...interface{}) error {
	return &ParseError{Input: w.input, Reason: fmt.Sprintf(format, args...)}
}

// expr resolves an `expr` node: one leaf, optionally followed by a path.
func (w *walker) expr(n *grammar.Node) (expr.Expr, error) {
	var leaf expr.Expr
	var tail *grammar.Node
	for _, c := range n.Children {
		var (
			e   expr.Expr
			err error
		)
		switch c.Name {
		case grammar.NameObj:
			e = expr.NewObject(c.Token)
		case grammar.NameZero:
			e = expr.Zero
		case grammar.NameMor:
			e, err = w.mor(c)
		case grammar.NameExpr:
			e, err = w.expr(c)
		case grammar.NamePath:
			tail = c
			continue
		default:
			w.ignored = append(w.ignored, c.Name)
			continue
		}
		if err != nil {
			return nil, err
		}
		if leaf != nil {
			return nil, w.fail("expression has more than one operand")
		}
		leaf = e
	}
	if leaf == nil {
		return nil, w.fail("empty expression")
	}
	if tail == nil {
		return leaf, nil
	}
	if len(tail.Children) != 1 {
		return nil, w.fail("path must wrap exactly one expression")
	}
	rhs, err := w.expr(tail.Children[0])
	if err != nil {
		return nil, err
	}
	return expr.NewPath(leaf, rhs), nil
}

// mor resolves a `mor` node into a morphism.
func (w *walker) mor(n *grammar.Node) (expr.Expr, error) {
	var (
		left, right expr.Expr
		kinds       []morphism.Kind
		degree      int
	)
	side := func(c *grammar.Node) (expr.Expr, error) {
		if len(c.Children) != 1 {
			return nil, w.fail("%s operand must be a single expression", c.Name)
		}
		return w.expr(c.Children[0])
	}
	for _, c := range n.Children {
		var err error
		switch {
		case c.Name == grammar.NameLeft:
			if left != nil {
				return nil, w.fail("morphism has two left operands")
			}
			left, err = side(c)
		case c.Name == grammar.NameRight:
			if right != nil {
				return nil, w.fail("morphism has two right operands")
			}
			right, err = side(c)
		case c.Name == grammar.NamePlus2:
			degree += 2
		case c.Name == grammar.NamePlus1:
			degree++
		case grammar.IsVariant(c.Name):
			kinds = append(kinds, variantKinds[c.Name])
		default:
			w.ignored = append(w.ignored, c.Name)
		}
		if err != nil {
			return nil, err
		}
	}
	switch {
	case left == nil || right == nil:
		return nil, w.fail("morphism %q needs both operands", n.Token)
	case len(kinds) == 0:
		return nil, w.fail("morphism %q has no arrow kind", n.Token)
	case len(kinds) > 1:
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.String()
		}
		return nil, w.fail("morphism %q has several arrow kinds: %s", n.Token, strings.Join(names, ", "))
	}
	return expr.New(kinds[0], degree, left, right), nil
}
