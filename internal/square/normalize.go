package square

import "cosquare/internal/morphism"

// Normalize checks whether code closes as a square of isomorphisms: the
// first non-iso edge fixes a direction and every later edge is either an iso
// or runs the way that direction implies. A full match returns four Iso
// codes; anything else is returned unchanged.
func Normalize(code [4]morphism.Kind) [4]morphism.Kind {
	const (
		dir    = morphism.Dir
		revDir = morphism.RevDir
		iso    = morphism.Iso
	)

	x := [2]morphism.Kind{dir, revDir}
	either := func(a, b, k morphism.Kind) bool { return k == a || k == b }
	// read matches k against x. x is flipped when k is x[1], or when k is
	// x[0] and inverted is set.
	read := func(k morphism.Kind, inverted bool) bool {
		switch {
		case x[0] == k:
			if inverted {
				x[0], x[1] = x[1], x[0]
			}
			return true
		case x[1] == k:
			if !inverted {
				x[0], x[1] = x[1], x[0]
			}
			return true
		}
		return false
	}

	// x carries over between alternatives, as read may have flipped it.
	closes := (read(code[0], false) &&
		either(x[1], iso, code[1]) &&
		either(x[0], iso, code[2]) &&
		either(x[1], iso, code[3])) ||
		(code[0] == iso &&
			((read(code[1], false) &&
				either(x[1], iso, code[2]) &&
				either(x[0], iso, code[3])) ||
				(code[1] == iso &&
					((read(code[2], true) &&
						either(x[0], iso, code[3])) ||
						(code[2] == iso && either(dir, revDir, code[3]))))))

	if closes {
		return [4]morphism.Kind{iso, iso, iso, iso}
	}
	return code
}
