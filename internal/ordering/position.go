package ordering

import (
	"strconv"
	"strings"
)

type positionKind uint8

const (
	kindUnset positionKind = iota
	kindBlank
	kindAt
)

// Position is a requested position: unset, blank, or an integer.
// The zero value is Unset.
type Position struct {
	n    int
	kind positionKind
}

var (
	// Unset requests the end of the group.
	Unset = Position{}

	// Blank requests the front of the group.
	Blank = Position{kind: kindBlank}
)

// At requests position n. Negative values are allowed and normalized later.
func At(n int) Position {
	return Position{n: n, kind: kindAt}
}

// Int returns the integer value and whether the position holds one.
func (p Position) Int() (int, bool) {
	return p.n, p.kind == kindAt
}

// IsUnset reports whether no position was requested.
func (p Position) IsUnset() bool { return p.kind == kindUnset }

// IsBlank reports whether an empty position was requested.
func (p Position) IsBlank() bool { return p.kind == kindBlank }

func (p Position) String() string {
	switch p.kind {
	case kindBlank:
		return `""`
	case kindAt:
		return strconv.Itoa(p.n)
	default:
		return "unset"
	}
}

// ParsePosition reads a position from text.
// The empty string is Blank; anything else must be an integer.
func ParsePosition(s string) (Position, error) {
	if strings.TrimSpace(s) == "" {
		return Blank, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Unset, NewInvalidPositionError(s)
	}
	return At(n), nil
}
