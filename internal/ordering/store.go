package ordering

import "context"

// Entry is a stored record as seen by readers.
type Entry struct {
	ID       string
	Group    GroupKey
	Position int
	Fields   map[string]string
}

// Placement is where a record sits: its group and its position.
type Placement struct {
	Group    GroupKey
	Position int
}

// Record is the capability the coordinator needs from the record being
// created or updated.
type Record interface {
	// RequestedPosition is the position the caller asked for.
	RequestedPosition() Position

	// SetPosition stores the position actually assigned.
	SetPosition(int)

	// GroupKey returns the record's (new) group key.
	GroupKey() GroupKey
}

// Tx is the part of a store transaction the coordinator writes through.
// All calls on one Tx belong to the same atomic unit.
type Tx interface {
	// MaxPosition returns the highest position in the scope,
	// or ok=false when the scope is empty.
	MaxPosition(ctx context.Context, scope Scope) (max int, ok bool, err error)

	// Shift adds s.Delta to every position inside s in the scope and
	// returns the number of rows changed.
	Shift(ctx context.Context, scope Scope, s Shift) (int64, error)

	// Renumber assigns 0..N-1 to the scope ordered by (position, id) and
	// returns the number of rows whose position changed.
	Renumber(ctx context.Context, scope Scope) (int64, error)
}

// Lister reads committed state.
type Lister interface {
	// ListOrdered returns the scope's records by ascending position.
	ListOrdered(ctx context.Context, scope Scope) ([]Entry, error)

	// Groups returns every non-empty group of a collection.
	Groups(ctx context.Context, collection string) ([]GroupKey, error)
}
