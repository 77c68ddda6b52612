package ordering

import "fmt"

// Shift is a bulk ±1 adjustment over a position range of one group.
type Shift struct {
	// Delta is +1 or -1.
	Delta int

	// From is the lowest affected position, inclusive.
	From int

	// To is the highest affected position, inclusive. Ignored when Open.
	To int

	// Open means the range has no upper bound.
	Open bool
}

// Plan computes the shift that makes room for, or closes the gap left by, a
// record going from one position to another. Unset from is an insertion,
// Unset to is a removal.
//
// ok is false when nothing needs to move: from == to, or both are Unset.
func Plan(from, to Position) (s Shift, ok bool) {
	f, hasFrom := from.Int()
	t, hasTo := to.Int()

	switch {
	case !hasFrom && !hasTo:
		return Shift{}, false
	case !hasFrom:
		return Shift{Delta: +1, From: t, Open: true}, true
	case !hasTo:
		return Shift{Delta: -1, From: f + 1, Open: true}, true
	case f > t:
		return Shift{Delta: +1, From: t, To: f - 1}, true
	case f < t:
		return Shift{Delta: -1, From: f + 1, To: t}, true
	default:
		return Shift{}, false
	}
}

// Contains reports whether position p falls inside the shifted range.
func (s Shift) Contains(p int) bool {
	if p < s.From {
		return false
	}
	return s.Open || p <= s.To
}

// Expected returns how many rows the shift touches in a group whose
// positions are 0..max, with at most one hole outside the range.
func (s Shift) Expected(max int, hasMax bool) int64 {
	if !hasMax {
		return 0
	}
	hi := max
	if !s.Open && s.To < hi {
		hi = s.To
	}
	lo := s.From
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		return 0
	}
	return int64(hi - lo + 1)
}

func (s Shift) String() string {
	if s.Open {
		return fmt.Sprintf("%+d [%d, ∞)", s.Delta, s.From)
	}
	return fmt.Sprintf("%+d [%d, %d]", s.Delta, s.From, s.To)
}
