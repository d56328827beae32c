package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cosquare/internal/expr"
	"cosquare/internal/logging"
	"cosquare/internal/morphism"
)

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7a89"))
)

// notationRows lists the arrow kinds in the order they are documented.
var notationRows = []struct {
	name string
	kind morphism.Kind
}{
	{"Directional", morphism.Dir},
	{"Reverse Directional", morphism.RevDir},
	{"Epi", morphism.Epi},
	{"Reverse Epi", morphism.RevEpi},
	{"Mono", morphism.Mono},
	{"Reverse Mono", morphism.RevMono},
	{"Left Inverse", morphism.LeftInv},
	{"Reverse Left Inverse", morphism.RevLeftInv},
	{"Right Inverse", morphism.RightInv},
	{"Reverse Right Inverse", morphism.RevRightInv},
	{"Epi-Mono", morphism.EpiMono},
	{"Reverse Epi-Mono", morphism.RevEpiMono},
	{"Iso", morphism.Iso},
	{"Zero", morphism.Zero},
}

// notationMarkdown documents the notation as a markdown table.
func notationMarkdown() string {
	var b strings.Builder
	b.WriteString("# Notation\n\n")
	b.WriteString("A square is written `L[T -> B] <=> D`: left edge, top edge to bottom edge, diagonal.\n\n")
	b.WriteString("| Morphism | Notation | Kind |\n| --- | --- | --- |\n")
	for _, row := range notationRows {
		fmt.Fprintf(&b, "| %s | `%s` | %s |\n", row.name, expr.Arrow(row.kind, 1), row.kind)
	}
	b.WriteString("\nDegrees: `=` adds 2 and `-` adds 1, so `<=>` is an iso of degree 2 ")
	b.WriteString("and `<==>` one of degree 4.\n")
	return b.String()
}

func newRenderer() *glamour.TermRenderer {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		logging.Get(logging.CategoryShell).Debug("markdown renderer unavailable", zap.Error(err))
		return nil
	}
	return renderer
}

// renderMarkdown renders md for the terminal, falling back to the raw text.
func renderMarkdown(renderer *glamour.TermRenderer, md string) string {
	if renderer == nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

func runNotation(cmd *cobra.Command, args []string) error {
	fmt.Print(renderMarkdown(newRenderer(), notationMarkdown()))
	return nil
}
