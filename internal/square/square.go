// Package square recognises commutative squares in diagram expressions,
// strengthens their edges by inference and writes the result back.
//
// A square is written `L[T -> B] <=> D`: the left edge L, the top and bottom
// edges T and B, and the diagonal D. Edges are numbered 0 to 3 in that order.
package square

import (
	"go.uber.org/zap"

	"cosquare/internal/expr"
	"cosquare/internal/logging"
	"cosquare/internal/morphism"
)

// Edge positions.
const (
	EdgeLeft = iota
	EdgeTop
	EdgeBottom
	EdgeDiagonal
)

// EdgeNames names the positions for display.
var EdgeNames = [4]string{"left", "top", "bottom", "diagonal"}

// Square is the normalised view of a square expression.
type Square struct {
	// Bind holds the distinct objects of the square; labels refer to them
	// by 1-based index.
	Bind []expr.Expr
	// Labels is [obj, 0, 0] for an edge that is not a morphism and
	// [0, from, to] for a morphism edge.
	Labels [4][3]int
	// Code is the kind of every edge, oriented to match Labels.
	Code [4]morphism.Kind
}

// Extract recognises `L[T -> B] <=> D`, where the outer arrow is an iso of
// degree exactly 2. ok is false for any other shape.
func Extract(e expr.Expr) (*Square, bool) {
	edges, ok := edgesOf(e)
	if !ok {
		return nil, false
	}

	s := &Square{}
	for i, edge := range edges {
		s.Labels[i] = s.label(edge)
	}
	for i, edge := range edges {
		s.Code[i] = s.code(edge, i)
	}

	logging.Get(logging.CategorySquare).Debug("extracted square",
		zap.Stringer("expr", e),
		zap.Stringers("code", s.Code[:]),
		zap.Int("objects", len(s.Bind)))
	return s, true
}

// edgesOf returns the left, top, bottom and diagonal sub-expressions.
func edgesOf(e expr.Expr) ([4]expr.Expr, bool) {
	var edges [4]expr.Expr
	root, ok := e.(*expr.Morphism)
	if !ok || root.Kind != morphism.Iso || root.Degree != 2 {
		return edges, false
	}
	p, ok := root.Ends.From.(*expr.Path)
	if !ok {
		return edges, false
	}
	tb, ok := p.Ends.To.(*expr.Morphism)
	if !ok {
		return edges, false
	}
	edges[EdgeLeft] = p.Ends.From
	edges[EdgeTop] = tb.Ends.From
	edges[EdgeBottom] = tb.Ends.To
	edges[EdgeDiagonal] = root.Ends.To
	return edges, true
}

// find returns the bind index of a, binding it first if it is new.
func (s *Square) find(a expr.Expr) int {
	for i, b := range s.Bind {
		if expr.Equal(a, b) {
			return i + 1
		}
	}
	s.Bind = append(s.Bind, a)
	return len(s.Bind)
}

func (s *Square) label(e expr.Expr) [3]int {
	if m, ok := e.(*expr.Morphism); ok {
		from := s.find(m.Ends.From)
		to := s.find(m.Ends.To)
		return [3]int{0, from, to}
	}
	return [3]int{s.find(e), 0, 0}
}

// flipped reports whether edge i runs against the edges before it. Labels of
// earlier edges are read after their own flips.
func (s *Square) flipped(i int) bool {
	l := &s.Labels
	switch i {
	case EdgeTop:
		return l[0][1] != 0 && l[1][2] == l[0][1]
	case EdgeBottom:
		return l[0][2] != 0 && l[2][2] == l[0][2]
	case EdgeDiagonal:
		return (l[1][2] != 0 && l[3][2] == l[1][2]) ||
			(l[2][2] != 0 && l[3][1] == l[2][2])
	}
	return false
}

func (s *Square) code(e expr.Expr, i int) morphism.Kind {
	flip := s.flipped(i)

	m, ok := e.(*expr.Morphism)
	if !ok {
		return morphism.Unknown
	}
	switch {
	case m.Kind == morphism.Unknown:
		return morphism.Unknown
	case (m.Kind == morphism.Dir || m.Kind == morphism.Mono || m.Kind == morphism.Epi) &&
		expr.Equal(m.Ends.From, m.Ends.To):
		return morphism.Iso
	case i == EdgeLeft:
		return m.Kind
	case flip:
		l := &s.Labels[i]
		l[1], l[2] = l[2], l[1]
		return morphism.Reverse(m.Kind)
	default:
		return m.Kind
	}
}

// Objects renders the bound objects in bind order.
func (s *Square) Objects() []string {
	out := make([]string, len(s.Bind))
	for i, b := range s.Bind {
		out[i] = b.String()
	}
	return out
}
