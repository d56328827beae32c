// Package expr is the diagram expression tree: objects, the zero object,
// morphisms between sub-expressions, and path composition.
//
// Nodes are immutable once built. Sub-expressions are shared by pointer, so
// code that wants a different tree builds new nodes along the changed path
// and reuses everything else.
package expr

import (
	"cosquare/internal/morphism"
)

// Expr is one node of a diagram expression.
type Expr interface {
	String() string
	isExpr()
}

// Pair is an ordered pair of sub-expressions.
type Pair struct {
	From Expr
	To   Expr
}

// ZeroObject is the zero object, written `0`.
type ZeroObject struct{}

// Object is a named object.
type Object struct {
	Name string
}

// Morphism is an arrow of the given kind between two sub-expressions.
// Degree counts the repeated body characters of the arrow and is at least 1.
type Morphism struct {
	Kind   morphism.Kind
	Degree int
	Ends   *Pair
}

// Path is the composition `From[To]`.
type Path struct {
	Ends *Pair
}

func (ZeroObject) isExpr() {}
func (*Object) isExpr() {}
func (*Morphism) isExpr() {}
func (*Path) isExpr() {}

// Zero is the shared zero object value.
var Zero Expr = ZeroObject{}

// NewObject returns a named object.
func NewObject(name string) Expr {
	return &Object{Name: name}
}

// NewPath returns the composition a[b].
func NewPath(a, b Expr) Expr {
	return &Path{Ends: &Pair{From: a, To: b}}
}

// New returns a morphism of kind k at degree n. Degrees below 1 are raised to
// 1 and zero morphisms always have degree 1.
func New(k morphism.Kind, n int, a, b Expr) Expr {
	if n < 1 || morphism.IsZero(k) {
		n = 1
	}
	return &Morphism{Kind: k, Degree: n, Ends: &Pair{From: a, To: b}}
}

func DirN(n int, a, b Expr) Expr { return New(morphism.Dir, n, a, b) }
func RevDirN(n int, a, b Expr) Expr { return New(morphism.RevDir, n, a, b) }
func IsoN(n int, a, b Expr) Expr { return New(morphism.Iso, n, a, b) }
func MonoN(n int, a, b Expr) Expr { return New(morphism.Mono, n, a, b) }
func RevMonoN(n int, a, b Expr) Expr { return New(morphism.RevMono, n, a, b) }
func EpiN(n int, a, b Expr) Expr { return New(morphism.Epi, n, a, b) }
func RevEpiN(n int, a, b Expr) Expr { return New(morphism.RevEpi, n, a, b) }
func EpiMonoN(n int, a, b Expr) Expr { return New(morphism.EpiMono, n, a, b) }
func RevEpiMonoN(n int, a, b Expr) Expr { return New(morphism.RevEpiMono, n, a, b) }
func LeftInvN(n int, a, b Expr) Expr { return New(morphism.LeftInv, n, a, b) }
func RevLeftInvN(n int, a, b Expr) Expr { return New(morphism.RevLeftInv, n, a, b) }
func RightInvN(n int, a, b Expr) Expr { return New(morphism.RightInv, n, a, b) }
func RevRightInvN(n int, a, b Expr) Expr { return New(morphism.RevRightInv, n, a, b) }

// ZeroN ignores n: a zero morphism always has degree 1.
func ZeroN(_ int, a, b Expr) Expr { return New(morphism.Zero, 1, a, b) }

func Dir(a, b Expr) Expr { return DirN(1, a, b) }
func RevDir(a, b Expr) Expr { return RevDirN(1, a, b) }
func Iso(a, b Expr) Expr { return IsoN(1, a, b) }
func Mono(a, b Expr) Expr { return MonoN(1, a, b) }
func RevMono(a, b Expr) Expr { return RevMonoN(1, a, b) }
func Epi(a, b Expr) Expr { return EpiN(1, a, b) }
func RevEpi(a, b Expr) Expr { return RevEpiN(1, a, b) }
func EpiMono(a, b Expr) Expr { return EpiMonoN(1, a, b) }
func RevEpiMono(a, b Expr) Expr { return RevEpiMonoN(1, a, b) }
func LeftInv(a, b Expr) Expr { return LeftInvN(1, a, b) }
func RevLeftInv(a, b Expr) Expr { return RevLeftInvN(1, a, b) }
func RightInv(a, b Expr) Expr { return RightInvN(1, a, b) }
func RevRightInv(a, b Expr) Expr { return RevRightInvN(1, a, b) }
func ZeroMor(a, b Expr) Expr { return ZeroN(1, a, b) }

// Left returns the first element of a path, e.g. `a -> b` in
// `(a -> b)[(c -> a) -> (b -> d)]`.
func Left(e Expr) (Expr, bool) {
	p, ok := e.(*Path)
	if !ok {
		return nil, false
	}
	return p.Ends.From, true
}

// Top returns the source of the morphism composed onto a path.
func Top(e Expr) (Expr, bool) {
	m, ok := pathMorphism(e)
	if !ok {
		return nil, false
	}
	return m.Ends.From, true
}

// Bottom returns the target of the morphism composed onto a path.
func Bottom(e Expr) (Expr, bool) {
	m, ok := pathMorphism(e)
	if !ok {
		return nil, false
	}
	return m.Ends.To, true
}

func pathMorphism(e Expr) (*Morphism, bool) {
	p, ok := e.(*Path)
	if !ok {
		return nil, false
	}
	m, ok := p.Ends.To.(*Morphism)
	return m, ok
}

// Equal reports structural equality. Degrees take part in the comparison.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case ZeroObject:
		_, ok := b.(ZeroObject)
		return ok
	case *Object:
		y, ok := b.(*Object)
		return ok && x.Name == y.Name
	case *Morphism:
		y, ok := b.(*Morphism)
		return ok && x.Kind == y.Kind && x.Degree == y.Degree && pairEqual(x.Ends, y.Ends)
	case *Path:
		y, ok := b.(*Path)
		return ok && pairEqual(x.Ends, y.Ends)
	default:
		return a == nil && b == nil
	}
}

func pairEqual(a, b *Pair) bool {
	if a == b {
		return true
	}
	return Equal(a.From, b.From) && Equal(a.To, b.To)
}

// WithKind returns a copy of m carrying kind k. When the orientation family
// changes the endpoints are swapped so the rendered arrow keeps pointing the
// same way. The endpoint pair is shared when no swap is needed.
func WithKind(m *Morphism, k morphism.Kind) *Morphism {
	out := *m
	out.Kind = k
	if morphism.IsZero(k) {
		out.Degree = 1
	}
	if morphism.IsReversed(k) != morphism.IsReversed(m.Kind) {
		out.Ends = &Pair{From: m.Ends.To, To: m.Ends.From}
	}
	return &out
}
