// Package solver is the public pipeline: parse notation, extract the square,
// infer stronger edges and render the rewritten diagram.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cosquare/internal/config"
	"cosquare/internal/expr"
	"cosquare/internal/logging"
	"cosquare/internal/mangle"
	"cosquare/internal/morphism"
	"cosquare/internal/parser"
	"cosquare/internal/square"
)

// ErrNotASquare is returned for well-formed expressions that do not have the
// shape `L[T -> B] <=> D`.
var ErrNotASquare = errors.New("expression is not a square")

// Solver runs the pipeline with one inference configuration.
type Solver struct {
	inference square.Inference
	workers   int
}

// New returns a solver configured from cfg.
func New(cfg *config.Config) *Solver {
	engine := mangle.DefaultConfig()
	engine.FactLimit = cfg.Inference.FactLimit
	return &Solver{
		inference: square.Inference{Engine: engine, AxiomPath: cfg.Inference.AxiomPath},
		workers:   cfg.Batch.Workers,
	}
}

// Default returns a solver with the default configuration.
func Default() *Solver {
	return New(config.DefaultConfig())
}

// Parse converts notation text into an expression.
func Parse(text string) (expr.Expr, error) {
	return parser.Parse(text)
}

// Solve runs text through a default solver.
func Solve(ctx context.Context, text string) (string, error) {
	return Default().Solve(ctx, text)
}

// Solve parses text, strengthens the square it describes and renders the
// result. Parse failures are *parser.ParseError; other shapes give
// ErrNotASquare.
func (s *Solver) Solve(ctx context.Context, text string) (string, error) {
	r, err := s.Explain(ctx, text)
	if err != nil {
		return "", err
	}
	return r.Output, nil
}

// Explain is Solve keeping every intermediate step.
func (s *Solver) Explain(ctx context.Context, text string) (r *Report, err error) {
	reqID := uuid.NewString()
	log := logging.WithRequestID(logging.CategorySolve, reqID)
	timer := logging.StartTimer(logging.CategorySolve, "solve")
	defer timer.Stop()

	e, err := parser.Parse(text)
	if err != nil {
		log.Debug("parse failed", zap.String("input", text), zap.Error(err))
		return nil, err
	}
	sq, ok := square.Extract(e)
	if !ok {
		log.Debug("not a square", zap.Stringer("expr", e))
		return nil, fmt.Errorf("%w: %s", ErrNotASquare, e)
	}

	// A gap in the composition table means the diagram asserts relations
	// that cannot hold together, e.g. an epi edge entailed to be zero.
	defer func() {
		if rec := recover(); rec != nil {
			gap, ok := rec.(*morphism.CompositionTableGap)
			if !ok {
				panic(rec)
			}
			log.Warn("inconsistent square", zap.String("input", text), zap.Error(gap))
			r, err = nil, fmt.Errorf("inconsistent square %s: %w", e, gap)
		}
	}()

	outcome := s.inference.Run(ctx, sq)
	inferred := outcome.Code
	out := square.Rewrite(e, inferred)

	r = &Report{
		RequestID:  reqID,
		Input:      text,
		Parsed:     e.String(),
		Objects:    sq.Objects(),
		Labels:     sq.Labels,
		Extracted:  sq.Code,
		Normalized: square.Normalize(sq.Code),
		Inferred:   inferred,
		Engine:     outcome.Stats,
		Degraded:   outcome.Degraded,
		Output:     out.String(),
	}
	for _, f := range sq.Facts() {
		r.Facts = append(r.Facts, f.String())
	}

	log.Info("solved",
		zap.String("input", text),
		zap.String("output", r.Output),
		zap.Stringers("extracted", sq.Code[:]),
		zap.Stringers("inferred", inferred[:]))
	return r, nil
}

// Result is the outcome of one line of SolveAll.
type Result struct {
	Input  string
	Output string
	Err    error
}

// SolveAll solves independent lines concurrently on at most workers
// goroutines (the solver's configured count when workers < 1). Results keep
// the order of lines.
func (s *Solver) SolveAll(ctx context.Context, lines []string, workers int) []Result {
	if workers < 1 {
		workers = s.workers
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(lines))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, line := range lines {
		i, line := i, line
		eg.Go(func() error {
			results[i].Input = line
			if err := egCtx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Output, results[i].Err = s.Solve(egCtx, line)
			return nil
		})
	}
	_ = eg.Wait()

	logging.Get(logging.CategorySolve).Debug("batch solved",
		zap.Int("lines", len(lines)),
		zap.Int("workers", workers))
	return results
}
