package solver

import (
	"fmt"
	"strings"

	"cosquare/internal/mangle"
	"cosquare/internal/morphism"
	"cosquare/internal/square"
)

// Report records every step of one solve.
type Report struct {
	RequestID  string
	Input      string
	Parsed     string
	Objects    []string
	Labels     [4][3]int
	Extracted  [4]morphism.Kind
	Normalized [4]morphism.Kind
	Facts      []string
	Inferred   [4]morphism.Kind
	// Engine holds the fact counts of the inference run.
	Engine     mangle.Stats
	Degraded   bool
	Output     string
}

// Closes reports whether the normalizer alone proves every edge an iso.
func (r *Report) Closes() bool {
	iso := morphism.Iso
	return r.Normalized == [4]morphism.Kind{iso, iso, iso, iso}
}

// Markdown renders the report as a markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## `%s`\n\n", r.Input)
	fmt.Fprintf(&b, "Objects: %s\n\n", strings.Join(quoted(r.Objects), ", "))

	b.WriteString("| edge | label | extracted | inferred |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for i := range r.Labels {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			square.EdgeNames[i], r.label(i), r.Extracted[i], r.Inferred[i])
	}

	if r.Closes() {
		b.WriteString("\nThe square closes over isomorphisms.\n")
	}
	if len(r.Facts) > 0 {
		b.WriteString("\nFacts:\n\n```\n")
		for _, f := range r.Facts {
			b.WriteString(f)
			b.WriteByte('\n')
		}
		b.WriteString("```\n")
	}
	if r.Degraded {
		b.WriteString("\nInference was unavailable; the extracted codes were kept.\n")
	} else {
		fmt.Fprintf(&b, "\nEngine: %d base facts, %d after evaluation.\n", r.Engine.BaseFacts, r.Engine.TotalFacts)
	}
	fmt.Fprintf(&b, "\nResult: `%s`\n", r.Output)
	return b.String()
}

func (r *Report) label(i int) string {
	l := r.Labels[i]
	if l[0] != 0 {
		return "`" + r.object(l[0]) + "`"
	}
	return fmt.Sprintf("`%s` to `%s`", r.object(l[1]), r.object(l[2]))
}

func (r *Report) object(idx int) string {
	if idx < 1 || idx > len(r.Objects) {
		return "?"
	}
	return r.Objects[idx-1]
}

func quoted(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = "`" + s + "`"
	}
	return out
}
