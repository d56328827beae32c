package morphism

import "fmt"

// Relation is a binary property between two objects, as entailed by the
// category axioms. The string value doubles as the fact predicate name.
type Relation string

const (
	RelMor      Relation = "mor"
	RelLeftInv  Relation = "left_inv"
	RelRightInv Relation = "right_inv"
	RelMono     Relation = "mono"
	RelEpi      Relation = "epi"
	RelIso      Relation = "iso"
	RelZero     Relation = "zero"
)

// Relations is the canonical order in which entailed relations are folded
// into an edge's kind.
var Relations = []Relation{RelMor, RelLeftInv, RelRightInv, RelMono, RelEpi, RelIso, RelZero}

// Entails returns the relations asserted by an edge of kind k, before any
// inference. Unknown asserts nothing.
func Entails(k Kind) []Relation {
	switch k {
	case Dir, RevDir:
		return []Relation{RelMor}
	case Iso, RevIso:
		return []Relation{RelIso}
	case Mono, RevMono:
		return []Relation{RelMono}
	case Epi, RevEpi:
		return []Relation{RelEpi}
	case EpiMono, RevEpiMono:
		return []Relation{RelEpi, RelMono}
	case LeftInv, RevLeftInv:
		return []Relation{RelLeftInv}
	case RightInv, RevRightInv:
		return []Relation{RelRightInv}
	case Zero, RevZero:
		return []Relation{RelZero}
	default:
		return nil
	}
}

// row builds a table row where every listed relation keeps the kind.
func row(k Kind, keep ...Relation) map[Relation]Kind {
	m := make(map[Relation]Kind, len(keep))
	for _, r := range keep {
		m[r] = k
	}
	return m
}

// table holds, per kind, the closed list of relations it accepts and the
// kind it becomes. A relation missing from a kind's row is a gap.
var table = func() map[Kind]map[Relation]Kind {
	t := map[Kind]map[Relation]Kind{}

	t[Dir] = row(Dir, RelMor, RelLeftInv)
	t[Dir][RelMono] = Mono
	t[Dir][RelZero] = Zero
	t[Dir][RelRightInv] = RightInv

	t[RevDir] = row(RevDir, RelMor, RelRightInv)
	t[RevDir][RelMono] = RevMono
	t[RevDir][RelIso] = RevIso
	t[RevDir][RelZero] = RevZero
	t[RevDir][RelLeftInv] = RevLeftInv

	t[Mono] = row(Mono, RelMono, RelMor)
	t[Mono][RelEpi] = EpiMono
	t[Mono][RelZero] = Zero

	t[RevMono] = row(RevMono, RelMor, RelMono)
	t[RevMono][RelEpi] = RevEpiMono
	t[RevMono][RelZero] = RevZero

	t[Epi] = row(Epi, RelEpi, RelMor, RelLeftInv, RelRightInv)
	t[Epi][RelMono] = EpiMono
	t[Epi][RelIso] = Iso

	t[RevEpi] = row(RevEpi, RelEpi, RelMor)
	t[RevEpi][RelMono] = RevEpiMono
	t[RevEpi][RelIso] = RevIso

	t[EpiMono] = row(EpiMono, RelEpi, RelMono, RelLeftInv, RelRightInv)
	t[EpiMono][RelIso] = Iso

	t[RevEpiMono] = row(RevEpiMono, RelMor, RelEpi, RelMono, RelLeftInv, RelRightInv)
	t[RevEpiMono][RelIso] = RevIso

	t[LeftInv] = row(LeftInv, RelMor, RelMono, RelLeftInv)
	t[LeftInv][RelRightInv] = Iso

	t[RevLeftInv] = row(RevLeftInv, RelMor, RelMono, RelLeftInv)
	t[RevLeftInv][RelRightInv] = RevIso

	t[RightInv] = row(RightInv, RelMor, RelEpi, RelRightInv, RelMono)
	t[RightInv][RelLeftInv] = Iso
	t[RightInv][RelIso] = Iso

	t[RevRightInv] = row(RevRightInv, RelMor, RelEpi, RelRightInv, RelMono)
	t[RevRightInv][RelLeftInv] = RevIso

	t[Iso] = row(Iso, RelIso, RelLeftInv, RelRightInv, RelMono, RelEpi, RelMor)
	t[Iso][RelZero] = Zero

	t[RevIso] = row(RevIso, RelIso, RelLeftInv, RelRightInv, RelMono, RelEpi, RelMor)
	t[RevIso][RelZero] = RevZero

	t[Zero] = row(Zero, Relations...)
	t[RevZero] = row(RevZero, Relations...)

	return t
}()

// Compose folds an entailed relation into a known kind. ok is false when the
// kind has no entry for the relation.
func Compose(k Kind, r Relation) (Kind, bool) {
	next, ok := table[k][r]
	return next, ok
}

// CompositionTableGap is the panic value raised when inference produced a
// relation the table cannot absorb. The axioms and the table have drifted
// apart when this happens.
type CompositionTableGap struct {
	Kind     Kind
	Relation Relation
}

func (g *CompositionTableGap) Error() string {
	return fmt.Sprintf("composition table has no entry for %s with %s", g.Kind, g.Relation)
}

// MustCompose is Compose that panics with *CompositionTableGap on a gap.
func MustCompose(k Kind, r Relation) Kind {
	next, ok := Compose(k, r)
	if !ok {
		panic(&CompositionTableGap{Kind: k, Relation: r})
	}
	return next
}

// Fold applies every relation in rels to k in the canonical order. A relation
// the current kind does not accept is retried after the others have moved k
// on; one that can never be applied panics with *CompositionTableGap.
func Fold(k Kind, rels map[Relation]bool) Kind {
	var pending []Relation
	for _, r := range Relations {
		if rels[r] {
			pending = append(pending, r)
		}
	}
	for len(pending) > 0 {
		var deferred []Relation
		for _, r := range pending {
			if next, ok := Compose(k, r); ok {
				k = next
				continue
			}
			deferred = append(deferred, r)
		}
		if len(deferred) == len(pending) {
			MustCompose(k, deferred[0])
		}
		pending = deferred
	}
	return k
}
