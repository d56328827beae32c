// Package morphism defines the closed set of morphism kinds that can label an
// edge of a commutative square, together with their orientation algebra and
// the table describing how a known kind absorbs a newly entailed relation.
package morphism

import "fmt"

// Kind is the categorical property claimed for a single arrow.
// The Rev* forms describe the same property for an arrow written right to left.
type Kind int

const (
	Unknown Kind = iota
	Dir
	RevDir
	Mono
	RevMono
	Epi
	RevEpi
	EpiMono
	RevEpiMono
	LeftInv
	RevLeftInv
	RightInv
	RevRightInv
	Iso
	RevIso
	Zero
	RevZero
)

// All lists every kind in declaration order.
var All = []Kind{
	Unknown,
	Dir, RevDir,
	Mono, RevMono,
	Epi, RevEpi,
	EpiMono, RevEpiMono,
	LeftInv, RevLeftInv,
	RightInv, RevRightInv,
	Iso, RevIso,
	Zero, RevZero,
}

var kindNames = map[Kind]string{
	Unknown:     "Unknown",
	Dir:         "Dir",
	RevDir:      "RevDir",
	Mono:        "Mono",
	RevMono:     "RevMono",
	Epi:         "Epi",
	RevEpi:      "RevEpi",
	EpiMono:     "EpiMono",
	RevEpiMono:  "RevEpiMono",
	LeftInv:     "LeftInv",
	RevLeftInv:  "RevLeftInv",
	RightInv:    "RightInv",
	RevRightInv: "RevRightInv",
	Iso:         "Iso",
	RevIso:      "RevIso",
	Zero:        "Zero",
	RevZero:     "RevZero",
}

// reversePairs maps each base kind to its right-to-left form.
var reversePairs = map[Kind]Kind{
	Dir:      RevDir,
	Mono:     RevMono,
	Epi:      RevEpi,
	EpiMono:  RevEpiMono,
	LeftInv:  RevLeftInv,
	RightInv: RevRightInv,
	Iso:      RevIso,
	Zero:     RevZero,
}

var reversed = func() map[Kind]Kind {
	m := make(map[Kind]Kind, 2*len(reversePairs)+1)
	m[Unknown] = Unknown
	for base, rev := range reversePairs {
		m[base] = rev
		m[rev] = base
	}
	return m
}()

// String returns the Go-style name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return Unknown, fmt.Errorf("unknown morphism kind %q", name)
}

// Reverse swaps a kind with its opposite orientation. Unknown is its own reverse.
func Reverse(k Kind) Kind {
	if r, ok := reversed[k]; ok {
		return r
	}
	return k
}

// IsReversed reports whether k belongs to the right-to-left family.
func IsReversed(k Kind) bool {
	switch k {
	case RevDir, RevMono, RevEpi, RevEpiMono, RevLeftInv, RevRightInv, RevIso, RevZero:
		return true
	default:
		return false
	}
}

// IsZero reports whether k is one of the zero morphism kinds.
func IsZero(k Kind) bool {
	return k == Zero || k == RevZero
}
