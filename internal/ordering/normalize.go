package ordering

// Normalize computes the position actually assigned for a requested one.
//
// max is the highest position currently used in the target group and hasMax
// is false when the group is empty. previous is the position the record held
// before this change (Unset on create or when entering a new group).
//
// The result is always within [0, max+1].
func Normalize(requested, previous Position, max int, hasMax bool) int {
	if !hasMax {
		return 0
	}

	v := requested

	// A record that was last stays last instead of running off the end.
	if prev, ok := previous.Int(); ok && prev == max {
		if n, ok := v.Int(); ok && (n > max || n < 0) {
			v = At(max)
		}
	}

	if n, ok := v.Int(); ok {
		if n < 0 || n > max+1 {
			return max + 1
		}
		return n
	}

	if v.IsBlank() {
		return 0
	}
	return max + 1
}
