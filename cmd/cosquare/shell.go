package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cosquare/internal/config"
	"cosquare/internal/logging"
	"cosquare/internal/solver"
)

// shell is the line REPL. Prompt and banner are only written when
// interactive.
type shell struct {
	in          io.Reader
	out         io.Writer
	interactive bool
	cfg         config.ShellConfig
	solver      *solver.Solver
}

func runShell(cmd *cobra.Command, args []string) error {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	sh := &shell{
		in:          os.Stdin,
		out:         os.Stdout,
		interactive: interactive,
		cfg:         currentConfig().Shell,
		solver:      newSolver(),
	}
	return sh.run(commandContext(cmd))
}

// run reads lines until `bye`, EOF or cancellation.
func (sh *shell) run(ctx context.Context) error {
	log := logging.Get(logging.CategoryShell)
	if sh.interactive && sh.cfg.Banner != "" {
		fmt.Fprintln(sh.out, bannerStyle.Render(sh.cfg.Banner))
	}

	scanner := bufio.NewScanner(sh.in)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if sh.interactive {
			fmt.Fprint(sh.out, sh.cfg.Prompt)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			if sh.interactive {
				fmt.Fprintln(sh.out)
			}
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "bye":
			return nil
		case "":
			fmt.Fprintf(sh.out, "\n%s\n\n", mutedStyle.Render(sh.cfg.Separator))
		case "help":
			sh.help()
		default:
			out, err := sh.solver.Solve(ctx, line)
			if err != nil {
				log.Debug("line rejected", zap.String("input", line), zap.Error(err))
				fmt.Fprintln(sh.out, errorStyle.Render("error: "+err.Error()))
				continue
			}
			fmt.Fprintln(sh.out, out)
		}
	}
}

func (sh *shell) help() {
	md := notationMarkdown()
	if sh.interactive {
		md = renderMarkdown(newRenderer(), md)
	}
	fmt.Fprint(sh.out, md)
}
