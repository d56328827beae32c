package grammar

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrowMarkers(t *testing.T) {
	tests := []struct {
		tok     string
		variant string
		degree  []string
	}{
		{"->", "dir", []string{"+1"}},
		{"=>", "dir", []string{"+2"}},
		{"<-", "rev_dir", []string{"+1"}},
		{"<->", "iso", []string{"+1"}},
		{"<=>", "iso", []string{"+2"}},
		{"<-=>", "iso", []string{"+1", "+2"}},
		{"<==>", "iso", []string{"+2", "+2"}},
		{"->>", "epi", []string{"+1"}},
		{"<<-", "rev_epi", []string{"+1"}},
		{"!->", "mono", []string{"+1"}},
		{"<-!", "rev_mono", []string{"+1"}},
		{"<!->", "left_inv", []string{"+1"}},
		{"<-!>", "rev_left_inv", []string{"+1"}},
		{"<->>", "right_inv", []string{"+1"}},
		{"<<->", "rev_right_inv", []string{"+1"}},
		{"!->>", "epi_mono", []string{"+1"}},
		{"<<-!", "rev_epi_mono", []string{"+1"}},
		{"<>", "zero", nil},
	}
	for _, tt := range tests {
		t.Run(tt.tok, func(t *testing.T) {
			markers, ok := arrowMarkers(tt.tok)
			require.True(t, ok)
			require.NotEmpty(t, markers)
			assert.Equal(t, tt.variant, markers[0].Name)
			assert.True(t, IsVariant(markers[0].Name))

			var degree []string
			for _, m := range markers[1:] {
				degree = append(degree, m.Name)
			}
			assert.Equal(t, tt.degree, degree)
		})
	}
}

func TestArrowMarkersRejects(t *testing.T) {
	for _, tok := range []string{">", "<", "!", "<<>>", "-!-", "><", "<!!>", "!-!"} {
		_, ok := arrowMarkers(tok)
		assert.False(t, ok, tok)
	}
}

func obj(name string) *Node { return &Node{Name: NameObj, Token: name} }

func TestParseTree(t *testing.T) {
	tests := []struct {
		in   string
		want *Node
	}{
		{"X", exprNode(obj("X"))},
		{"0", exprNode(&Node{Name: NameZero, Token: "0"})},
		{"(X)", exprNode(obj("X"))},
		{"X[Y]", exprNode(exprNode(obj("X")), &Node{Name: NamePath, Children: []*Node{exprNode(obj("Y"))}})},
		{"(A -> B)[C]", exprNode(
			exprNode(&Node{Name: NameMor, Token: "->", Children: []*Node{
				{Name: NameLeft, Children: []*Node{exprNode(obj("A"))}},
				{Name: "dir", Token: "->"},
				{Name: NamePlus1, Token: "-"},
				{Name: NameRight, Children: []*Node{exprNode(obj("B"))}},
			}}),
			&Node{Name: NamePath, Children: []*Node{exprNode(obj("C"))}},
		)},
		{"X => Y", exprNode(&Node{Name: NameMor, Token: "=>", Children: []*Node{
			{Name: NameLeft, Children: []*Node{exprNode(obj("X"))}},
			{Name: "dir", Token: "=>"},
			{Name: NamePlus2, Token: "="},
			{Name: NameRight, Children: []*Node{exprNode(obj("Y"))}},
		}})},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseNested(t *testing.T) {
	root, err := Parse("  (A -> B)[(A -> C) -> (B -> D)] <=> (C -> D)  ")
	require.NoError(t, err)
	require.Equal(t, NameExpr, root.Name)

	mor := root.Child(NameMor)
	require.NotNil(t, mor)
	assert.Equal(t, "<=>", mor.Token)
	assert.NotNil(t, mor.Child("iso"))
	assert.NotNil(t, mor.Child(NamePlus2))

	left := mor.Child(NameLeft).Children[0]
	assert.NotNil(t, left.Child(NamePath))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in     string
		column int
	}{
		{"A -> B -> C", 8},
		{"X >< Y", 3},
		{"(A -> B", 0},
		{"X[Y", 2},
		{"", 1},
		// cut off after an arrow
		{"X ->", 3},
		{"A <=> ", 3},
		{"x[A -> ]", 2},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			var syn *SyntaxError
			require.True(t, errors.As(err, &syn))
			assert.Equal(t, tt.in, syn.Input)
			assert.Equal(t, 1, syn.Line)
			if tt.column > 0 {
				assert.Equal(t, tt.column, syn.Column)
			}
			assert.Contains(t, err.Error(), "unable to parse expression")
		})
	}
}

func TestParseUnparsedText(t *testing.T) {
	_, err := Parse("A -> B -> C")
	assert.EqualError(t, err, "unable to parse expression: line 1 column 8: unparsed text: '-> C'")
}

func TestCoordinates(t *testing.T) {
	line, col := coordinates("ab\ncd", 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	line, col = coordinates("abc   ", 6)
	assert.Equal(t, 1, line)
	assert.Equal(t, 4, col)
}
