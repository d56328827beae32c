package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cosquare/internal/config"
	"cosquare/internal/logging"
	"cosquare/internal/solver"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded in PersistentPreRunE
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cosquare",
	Short: "cosquare - solver for commutative squares (Cosquare 0.1)",
	Long: `cosquare strengthens the arrows of a commutative square.

A square is written L[T -> B] <=> D: the left edge L, the path from the top
edge T to the bottom edge B, and the diagonal D. Every arrow that category
laws force to be stronger (iso, mono, epi, zero) is rewritten in place.

  > (A <-> B)[(A <-> C) -> (B <-> D)] <=> (C -> D)
  (A <-> B)[(A <-> C) -> (B <-> D)] <=> (C <-> D)

Inference runs through Google Mangle (Datalog) over a built-in axiom program.

Run without arguments to start the interactive shell.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			loaded.Logging.DebugMode = true
		}
		cfg = loaded

		logger, err = logging.Initialize(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Get(logging.CategoryBoot).Debug("configuration loaded",
			zap.String("path", configPath),
			zap.Int("workers", cfg.Batch.Workers),
			zap.Int("fact_limit", cfg.Inference.FactLimit))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the shell
		return runShell(cmd, args)
	},
}

// solveCmd strengthens each square given on the command line or in a file
var solveCmd = &cobra.Command{
	Use:   "solve [expression...]",
	Short: "Solve one or more squares",
	Long: `Parses each expression, infers the strongest arrows the square allows and
prints the rewritten expression, one per line.

With --file, expressions are read one per line (blank lines and lines starting
with # are skipped) and solved concurrently.

Example:
  cosquare solve "(A <-> B)[(A <-> C) -> (B <-> D)] <=> (C -> D)"`,
	RunE: runSolve,
}

// parseCmd prints the canonical rendering of an expression
var parseCmd = &cobra.Command{
	Use:   "parse [expression]",
	Short: "Parse an expression and print its canonical form",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParse,
}

// shellCmd is the line-oriented REPL
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive shell",
	Long: `Reads one expression per line and prints the solved square.

  bye    quit
  help   show the notation
  (empty line prints a separator)`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

// notationCmd renders the arrow notation table
var notationCmd = &cobra.Command{
	Use:   "notation",
	Short: "Show the arrow notation",
	Args:  cobra.NoArgs,
	RunE:  runNotation,
}

var (
	solveFile    string
	solveExplain bool
	solveWorkers int
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to config file")

	solveCmd.Flags().StringVarP(&solveFile, "file", "f", "", "Read expressions from a file, one per line")
	solveCmd.Flags().BoolVarP(&solveExplain, "explain", "e", false, "Print the inference report for each square")
	solveCmd.Flags().IntVarP(&solveWorkers, "workers", "w", 0, "Concurrent solves for --file (0 = config)")

	rootCmd.AddCommand(
		solveCmd,
		parseCmd,
		shellCmd,
		notationCmd,
	)
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "cosquare", "config.yaml")
	}
	return "cosquare.yaml"
}

// currentConfig returns the loaded config, falling back to defaults when a
// command runs without the root pre-run (tests).
func currentConfig() *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}

// commandContext returns the context cobra was executed with.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newSolver() *solver.Solver {
	return solver.New(currentConfig())
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
