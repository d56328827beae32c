package expr

import (
	"strings"

	"cosquare/internal/morphism"
)

// Glyphs returns the characters written before and after the arrow body of
// kind k.
func Glyphs(k morphism.Kind) (left, right string) {
	switch k {
	case morphism.Dir:
		return "", ">"
	case morphism.RevDir:
		return "<", ""
	case morphism.Iso, morphism.RevIso, morphism.Zero, morphism.RevZero:
		return "<", ">"
	case morphism.Epi:
		return "", ">>"
	case morphism.RevEpi:
		return "<<", ""
	case morphism.Mono:
		return "!", ">"
	case morphism.RevMono:
		return "<", "!"
	case morphism.LeftInv:
		return "<!", ">"
	case morphism.RevLeftInv:
		return "<", "!>"
	case morphism.RightInv:
		return "<", ">>"
	case morphism.RevRightInv:
		return "<<", ">"
	case morphism.EpiMono:
		return "!", ">>"
	case morphism.RevEpiMono:
		return "<<", "!"
	default:
		return "", ""
	}
}

// Arrow renders the full arrow token of kind k at degree n, e.g. `<=->`.
func Arrow(k morphism.Kind, n int) string {
	left, right := Glyphs(k)
	var b strings.Builder
	b.WriteString(left)
	if !morphism.IsZero(k) {
		b.WriteString(strings.Repeat("=", n/2))
		b.WriteString(strings.Repeat("-", n%2))
	}
	b.WriteString(right)
	return b.String()
}

func (ZeroObject) String() string { return "0" }

func (o *Object) String() string { return o.Name }

func (m *Morphism) String() string {
	var b strings.Builder
	writeOperand(&b, m.Ends.From)
	b.WriteByte(' ')
	b.WriteString(Arrow(m.Kind, m.Degree))
	b.WriteByte(' ')
	writeOperand(&b, m.Ends.To)
	return b.String()
}

func (p *Path) String() string {
	var b strings.Builder
	writeOperand(&b, p.Ends.From)
	b.WriteByte('[')
	b.WriteString(p.Ends.To.String())
	b.WriteByte(']')
	return b.String()
}

// writeOperand parenthesizes morphisms and nothing else.
func writeOperand(b *strings.Builder, e Expr) {
	if _, ok := e.(*Morphism); ok {
		b.WriteByte('(')
		b.WriteString(e.String())
		b.WriteByte(')')
		return
	}
	b.WriteString(e.String())
}
