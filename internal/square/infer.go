package square

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cosquare/internal/logging"
	"cosquare/internal/mangle"
	"cosquare/internal/morphism"
)

// Inference configures the engine Eval runs the axioms on.
type Inference struct {
	Engine mangle.Config
	// AxiomPath replaces the built-in axiom program when set.
	AxiomPath string
}

// DefaultInference uses the built-in axioms.
var DefaultInference = Inference{Engine: mangle.DefaultConfig()}

// Eval strengthens the codes of s with everything the axioms entail, using
// DefaultInference. s is not modified.
func (s *Square) Eval() [4]morphism.Kind {
	return DefaultInference.Eval(context.Background(), s)
}

// Eval strengthens the codes of s. When the axioms cannot be loaded or
// evaluated the extracted codes are returned unchanged.
func (inf Inference) Eval(ctx context.Context, s *Square) [4]morphism.Kind {
	return inf.Run(ctx, s).Code
}

// Outcome is the result of one inference run.
type Outcome struct {
	Code [4]morphism.Kind
	// Stats describes the fact store after evaluation. It is zero when the
	// run degraded to the extracted codes.
	Stats    mangle.Stats
	Degraded bool
}

// Run is Eval keeping the engine statistics.
func (inf Inference) Run(ctx context.Context, s *Square) Outcome {
	out, err := inf.infer(ctx, s)
	if err != nil {
		logging.Get(logging.CategoryInference).Warn("inference unavailable, keeping extracted codes",
			zap.Error(err),
			zap.Stringers("code", s.Code[:]))
		return Outcome{Code: s.Code, Degraded: true}
	}
	return out
}

// Infer is Eval without the fallback.
func (inf Inference) Infer(ctx context.Context, s *Square) ([4]morphism.Kind, error) {
	out, err := inf.infer(ctx, s)
	if err != nil {
		return s.Code, err
	}
	return out.Code, nil
}

func (inf Inference) infer(ctx context.Context, s *Square) (Outcome, error) {
	e, err := mangle.NewAxiomEngine(inf.Engine, inf.AxiomPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load axioms: %w", err)
	}
	if err := e.AddFacts(s.Facts()); err != nil {
		return Outcome{}, fmt.Errorf("failed to add square facts: %w", err)
	}
	if err := e.Evaluate(ctx); err != nil {
		return Outcome{}, err
	}
	code, err := s.decode(e)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read entailed relations: %w", err)
	}
	return Outcome{Code: code, Stats: e.GetStats()}, nil
}

// Facts returns the base facts the edges of s assert. Objects are their bind
// indices; every known morphism edge asserts edge(from, to) along its arrow
// plus the relations its kind states.
func (s *Square) Facts() []mangle.Fact {
	var facts []mangle.Fact
	for i, l := range s.Labels {
		k := s.Code[i]
		if l[0] != 0 || k == morphism.Unknown {
			continue
		}
		from, to := int64(l[1]), int64(l[2])
		if morphism.IsReversed(k) {
			from, to = to, from
		}
		facts = append(facts, mangle.Fact{Predicate: mangle.EdgePredicate, Args: []interface{}{from, to}})
		for _, r := range morphism.Entails(k) {
			facts = append(facts, mangle.Fact{Predicate: string(r), Args: []interface{}{from, to}})
		}
	}
	return facts
}

// pair is an unordered pair of bind indices.
type pair [2]int64

func pairOf(a, b int64) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// entailed reads every decoded relation once and indexes it by endpoint pair,
// ignoring direction.
func entailed(e *mangle.Engine) (map[morphism.Relation]map[pair]bool, error) {
	index := make(map[morphism.Relation]map[pair]bool, len(morphism.Relations))
	for _, r := range morphism.Relations {
		pred := string(r)
		if r == morphism.RelZero {
			pred = mangle.ZeroEntailed
		}
		facts, err := e.GetFacts(pred)
		if err != nil {
			return nil, err
		}
		pairs := make(map[pair]bool, len(facts))
		for _, f := range facts {
			if len(f.Args) != 2 {
				continue
			}
			a, aok := f.Args[0].(int64)
			b, bok := f.Args[1].(int64)
			if aok && bok {
				pairs[pairOf(a, b)] = true
			}
		}
		index[r] = pairs
	}
	return index, nil
}

// decode folds the relations entailed between the endpoints of every known
// edge into its code.
func (s *Square) decode(e *mangle.Engine) ([4]morphism.Kind, error) {
	code := s.Code
	index, err := entailed(e)
	if err != nil {
		return code, err
	}
	log := logging.Get(logging.CategoryInference)
	for i, l := range s.Labels {
		if l[0] != 0 || code[i] == morphism.Unknown {
			continue
		}
		key := pairOf(int64(l[1]), int64(l[2]))
		rels := make(map[morphism.Relation]bool)
		for _, r := range morphism.Relations {
			if index[r][key] {
				rels[r] = true
			}
		}
		next := morphism.Fold(code[i], rels)
		if next != code[i] {
			log.Debug("edge strengthened",
				zap.String("edge", EdgeNames[i]),
				zap.Stringer("from", code[i]),
				zap.Stringer("to", next))
		}
		code[i] = next
	}
	return code, nil
}
