package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cosquare/internal/solver"
)

// runSolve solves the squares given as arguments or read from --file.
func runSolve(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	lines := args
	if solveFile != "" {
		fromFile, err := readExpressions(solveFile)
		if err != nil {
			return err
		}
		lines = append(append([]string(nil), args...), fromFile...)
	}
	if len(lines) == 0 {
		return fmt.Errorf("no expressions to solve (pass them as arguments or use --file)")
	}

	s := newSolver()
	logger.Debug("solving", zap.Int("expressions", len(lines)), zap.Bool("explain", solveExplain))

	if solveExplain {
		return explainAll(cmd, s, lines)
	}

	failed := 0
	for _, r := range s.SolveAll(ctx, lines, solveWorkers) {
		if r.Err != nil {
			failed++
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("%s: %v", r.Input, r.Err)))
			continue
		}
		fmt.Println(r.Output)
	}
	return solveFailures(failed, len(lines))
}

// explainAll prints the inference report of each line in order.
func explainAll(cmd *cobra.Command, s *solver.Solver, lines []string) error {
	ctx := commandContext(cmd)
	renderer := newRenderer()

	failed := 0
	for _, line := range lines {
		r, err := s.Explain(ctx, line)
		if err != nil {
			failed++
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("%s: %v", line, err)))
			continue
		}
		fmt.Print(renderMarkdown(renderer, r.Markdown()))
	}
	return solveFailures(failed, len(lines))
}

func solveFailures(failed, total int) error {
	if failed == 0 {
		return nil
	}
	if total == 1 {
		return fmt.Errorf("expression could not be solved")
	}
	return fmt.Errorf("%d of %d expressions could not be solved", failed, total)
}

// readExpressions reads one expression per line from path ("-" is stdin).
// Blank lines and # comments are skipped.
func readExpressions(path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open expressions file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expressions: %w", err)
	}
	return lines, nil
}

// runParse prints the canonical rendering of the joined arguments.
func runParse(cmd *cobra.Command, args []string) error {
	text := joinArgs(args)
	e, err := solver.Parse(text)
	if err != nil {
		return err
	}
	logger.Debug("parsed", zap.String("input", text), zap.Stringer("expr", e))
	fmt.Println(e)
	return nil
}
