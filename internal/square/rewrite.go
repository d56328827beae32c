package square

import (
	"cosquare/internal/expr"
	"cosquare/internal/morphism"
)

// Update rewrites e, the expression s was extracted from, with the codes
// Eval infers.
func (s *Square) Update(e expr.Expr) expr.Expr {
	return Rewrite(e, s.Eval())
}

// Rewrite writes code into the left, top, bottom and diagonal edges of the
// square e. An edge whose new code points the other way has its endpoints
// swapped so the arrow keeps its meaning. Only nodes between the root and a
// changed edge are copied; e itself is never modified. Expressions of any
// other shape are returned as they are.
func Rewrite(e expr.Expr, code [4]morphism.Kind) expr.Expr {
	edges, ok := edgesOf(e)
	if !ok {
		return e
	}

	var next [4]expr.Expr
	changed := false
	for i, edge := range edges {
		next[i] = recode(edge, code[i])
		changed = changed || next[i] != edge
	}
	if !changed {
		return e
	}

	root := e.(*expr.Morphism)
	p := root.Ends.From.(*expr.Path)
	tb := p.Ends.To.(*expr.Morphism)

	var tbOut expr.Expr = tb
	if next[EdgeTop] != edges[EdgeTop] || next[EdgeBottom] != edges[EdgeBottom] {
		tbOut = &expr.Morphism{Kind: tb.Kind, Degree: tb.Degree, Ends: &expr.Pair{From: next[EdgeTop], To: next[EdgeBottom]}}
	}

	var pOut expr.Expr = p
	if next[EdgeLeft] != edges[EdgeLeft] || tbOut != expr.Expr(tb) {
		pOut = &expr.Path{Ends: &expr.Pair{From: next[EdgeLeft], To: tbOut}}
	}

	return &expr.Morphism{Kind: root.Kind, Degree: root.Degree, Ends: &expr.Pair{From: pOut, To: next[EdgeDiagonal]}}
}

// recode returns e with kind k, or e itself when nothing changes.
func recode(e expr.Expr, k morphism.Kind) expr.Expr {
	m, ok := e.(*expr.Morphism)
	if !ok || m.Kind == k {
		return e
	}
	return expr.WithKind(m, k)
}
