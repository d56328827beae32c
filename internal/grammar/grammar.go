// Package grammar turns diagram notation into a named parse tree.
//
// The tree is deliberately untyped: every node carries a name (`expr`, `mor`,
// `left`, `right`, `path`, `obj`, `0`, a variant marker such as `rev_epi`, or a
// degree marker `+1`/`+2`) and the package parser gives it meaning.
package grammar

import (
	"strings"

	p "github.com/vektah/goparsify"
)

// Node names produced by the grammar.
const (
	NameExpr  = "expr"
	NameMor   = "mor"
	NameLeft  = "left"
	NameRight = "right"
	NamePath  = "path"
	NameObj   = "obj"
	NameZero  = "0"
	NamePlus1 = "+1"
	NamePlus2 = "+2"
)

// Node is one element of the parse tree.
type Node struct {
	Name     string
	Token    string
	Children []*Node
}

// Child returns the first child with the given name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// variants maps the glyphs around an arrow body to the variant marker name.
var variants = map[[2]string]string{
	{"", ">"}:    "dir",
	{"<", ""}:    "rev_dir",
	{"<", ">"}:   "iso",
	{"", ">>"}:   "epi",
	{"<<", ""}:   "rev_epi",
	{"!", ">"}:   "mono",
	{"<", "!"}:   "rev_mono",
	{"<!", ">"}:  "left_inv",
	{"<", "!>"}:  "rev_left_inv",
	{"<", ">>"}:  "right_inv",
	{"<<", ">"}:  "rev_right_inv",
	{"!", ">>"}:  "epi_mono",
	{"<<", "!"}:  "rev_epi_mono",
}

// VariantZero is the marker emitted for `<>`.
const VariantZero = "zero"

// IsVariant reports whether name is a variant marker.
func IsVariant(name string) bool {
	if name == VariantZero {
		return true
	}
	for _, v := range variants {
		if v == name {
			return true
		}
	}
	return false
}

const arrowChars = "<>!=-"

// arrowMarkers splits an arrow token into its variant marker followed by one
// degree marker per body character.
func arrowMarkers(tok string) ([]*Node, bool) {
	if tok == "<>" {
		return []*Node{{Name: VariantZero, Token: tok}}, true
	}

	rest := tok
	var prefix string
	for _, pre := range []string{"<!", "<<", "<", "!"} {
		if strings.HasPrefix(rest, pre) {
			prefix = pre
			rest = rest[len(pre):]
			break
		}
	}
	bodyLen := 0
	for bodyLen < len(rest) && (rest[bodyLen] == '=' || rest[bodyLen] == '-') {
		bodyLen++
	}
	if bodyLen == 0 {
		return nil, false
	}
	body, suffix := rest[:bodyLen], rest[bodyLen:]

	name, ok := variants[[2]string{prefix, suffix}]
	if !ok {
		return nil, false
	}
	markers := []*Node{{Name: name, Token: tok}}
	for _, c := range body {
		if c == '=' {
			markers = append(markers, &Node{Name: NamePlus2, Token: "="})
		} else {
			markers = append(markers, &Node{Name: NamePlus1, Token: "-"})
		}
	}
	return markers, true
}

// arrow consumes the longest run of arrow characters and rejects runs that do
// not spell a known glyph.
func arrow() p.Parser {
	return p.NewParser("arrow", func(s *p.State, r *p.Result) {
		s.WS(s)
		in := s.Get()
		n := 0
		for n < len(in) && strings.IndexByte(arrowChars, in[n]) >= 0 {
			n++
		}
		if n == 0 {
			s.ErrorHere("arrow")
			return
		}
		markers, ok := arrowMarkers(in[:n])
		if !ok {
			s.ErrorHere("a known arrow, got '" + in[:n] + "'")
			return
		}
		r.Token = in[:n]
		r.Result = markers
		s.Advance(n)
	})
}

// expression is the root parser. It is referenced by pointer from the
// bracketed forms to allow nesting.
var expression p.Parser

func exprNode(children ...*Node) *Node {
	return &Node{Name: NameExpr, Children: children}
}

func init() {
	ident := p.Chars("A-Za-z0-9_", 1).Map(func(n *p.Result) {
		name := NameObj
		if n.Token == "0" {
			name = NameZero
		}
		n.Result = &Node{Name: name, Token: n.Token}
	})
	group := p.Seq("(", &expression, ")").Map(func(n *p.Result) {
		n.Result = n.Child[1].Result
	})
	atom := p.Any(group, ident)

	suffix := p.Seq("[", &expression, "]").Map(func(n *p.Result) {
		n.Result = &Node{Name: NamePath, Children: []*Node{n.Child[1].Result.(*Node)}}
	})
	term := p.Seq(atom, p.Some(suffix)).Map(func(n *p.Result) {
		head := n.Child[0].Result.(*Node)
		if head.Name != NameExpr {
			head = exprNode(head)
		}
		for _, s := range n.Child[1].Child {
			if path, ok := s.Result.(*Node); ok {
				head = exprNode(head, path)
			}
		}
		n.Result = head
	})

	expression = p.Seq(term, p.Maybe(p.Seq(arrow(), term))).Map(func(n *p.Result) {
		left := n.Child[0].Result.(*Node)
		// A failed Seq inside Maybe keeps its child slots with nil results.
		tail := n.Child[1]
		if len(tail.Child) < 2 {
			n.Result = left
			return
		}
		markers, ok := tail.Child[0].Result.([]*Node)
		right, rok := tail.Child[1].Result.(*Node)
		if !ok || !rok {
			n.Result = left
			return
		}
		mor := &Node{Name: NameMor, Token: tail.Child[0].Token}
		mor.Children = append(mor.Children, &Node{Name: NameLeft, Children: []*Node{left}})
		mor.Children = append(mor.Children, markers...)
		mor.Children = append(mor.Children, &Node{Name: NameRight, Children: []*Node{right}})
		n.Result = exprNode(mor)
	})
}
