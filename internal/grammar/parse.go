package grammar

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vektah/goparsify"
)

// SyntaxError reports where the grammar rejected the input.
type SyntaxError struct {
	// The text handed to Parse.
	Input string
	// Byte offset into Input at which the error occurred.
	Offset int
	// Line and Column (in runes) of Offset, both 1-based.
	Line   int
	Column int
	// What the grammar expected or found.
	Details string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("unable to parse expression: line %d column %d: %s", e.Line, e.Column, e.Details)
}

// Parse runs the notation grammar over in and returns the root `expr` node.
// The whole input must be consumed.
func Parse(in string) (*Node, error) {
	state := goparsify.NewState(in)
	state.WS = goparsify.UnicodeWhitespace

	result := &goparsify.Result{}
	expression(state, result)
	if state.Errored() {
		return nil, newSyntaxError(in, state.Error.Pos(), "expected "+expectedText(&state.Error))
	}

	state.WS(state)
	if unparsed := state.Get(); unparsed != "" {
		return nil, newSyntaxError(in, state.Pos,
			fmt.Sprintf("unparsed text: '%s'", strings.TrimRightFunc(unparsed, unicode.IsSpace)))
	}
	node, ok := result.Result.(*Node)
	if !ok {
		return nil, newSyntaxError(in, 0, "empty expression")
	}
	return node, nil
}

func newSyntaxError(in string, offset int, details string) *SyntaxError {
	line, col := coordinates(in, offset)
	return &SyntaxError{
		Input:   in,
		Offset:  offset,
		Line:    line,
		Column:  col,
		Details: details,
	}
}

// coordinates returns the line and rune column of a byte offset into input.
func coordinates(input string, atOffset int) (line, col int) {
	input = strings.TrimRightFunc(input, unicode.IsSpace)
	atOffset = min(atOffset, len(input))

	current := 0
	line = 1
	for _, l := range strings.Split(input, "\n") {
		if current+len(l) >= atOffset {
			return line, utf8.RuneCountInString(l[:atOffset-current]) + 1
		}
		line++
		current += len(l) + 1
	}
	return line, 1
}

// expectedText strips goparsify's "offset N: expected" preamble.
func expectedText(e *goparsify.Error) string {
	msg := e.Error()
	idx := strings.Index(msg, "expected")
	if idx == -1 {
		return msg
	}
	return strings.TrimSpace(msg[idx+len("expected"):])
}
