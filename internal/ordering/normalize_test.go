package ordering

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		requested Position
		previous  Position
		max       int
		hasMax    bool
		want      int
	}{
		{"empty group integer", At(7), Unset, 0, false, 0},
		{"empty group blank", Blank, Unset, 0, false, 0},
		{"empty group unset", Unset, Unset, 0, false, 0},
		{"inside range", At(2), Unset, 3, true, 2},
		{"append slot", At(4), Unset, 3, true, 4},
		{"too large goes to end", At(10), Unset, 3, true, 4},
		{"negative goes to end", At(-1), Unset, 3, true, 4},
		{"blank goes to front", Blank, Unset, 3, true, 0},
		{"unset goes to end", Unset, Unset, 3, true, 4},
		{"last stays last on overflow", At(10), At(3), 3, true, 3},
		{"last stays last on negative", At(-1), At(3), 3, true, 3},
		{"last may still move inside", At(1), At(3), 3, true, 1},
		{"not last overflows to end", At(10), At(1), 3, true, 4},
		{"zero is a real position", At(0), At(2), 3, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.requested, tt.previous, tt.max, tt.hasMax)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Clamp(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 2000; i++ {
		max := r.IntN(50)
		hasMax := r.IntN(8) != 0
		var requested Position
		switch r.IntN(4) {
		case 0:
			requested = Unset
		case 1:
			requested = Blank
		default:
			requested = At(r.IntN(200) - 100)
		}
		previous := Unset
		if r.IntN(2) == 0 {
			previous = At(r.IntN(max + 1))
		}

		got := Normalize(requested, previous, max, hasMax)

		assert.GreaterOrEqual(t, got, 0, "requested=%s max=%d", requested, max)
		if hasMax {
			assert.LessOrEqual(t, got, max+1, "requested=%s max=%d", requested, max)
		} else {
			assert.Equal(t, 0, got)
		}
	}
}

func TestNormalize_MonotonicInRange(t *testing.T) {
	const max = 9
	last := -1
	for p := 0; p <= max+1; p++ {
		got := Normalize(At(p), Unset, max, true)
		assert.GreaterOrEqual(t, got, last, "p=%d", p)
		last = got
	}
}
