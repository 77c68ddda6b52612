// Package items is the host side of ordering: the Item record, the
// transactional backend it is persisted through, and a Service that fires
// the ordering hooks around every create, update and delete.
package items

import (
	"context"
	"maps"

	"github.com/roach88/ordering/internal/ordering"
)

// Item is an ordered record.
type Item struct {
	Collection string
	ID         string
	Group      ordering.GroupKey
	Position   int
	Fields     map[string]string

	requested ordering.Position
}

// RequestedPosition implements ordering.Record.
func (i *Item) RequestedPosition() ordering.Position { return i.requested }

// SetPosition implements ordering.Record.
func (i *Item) SetPosition(p int) { i.Position = p }

// GroupKey implements ordering.Record.
func (i *Item) GroupKey() ordering.GroupKey { return i.Group }

// Request records the position the caller asks for.
func (i *Item) Request(p ordering.Position) { i.requested = p }

// Placement returns the item's current group and position.
func (i Item) Placement() ordering.Placement {
	return ordering.Placement{Group: maps.Clone(i.Group), Position: i.Position}
}

// Entry converts the item to the reader view.
func (i Item) Entry() ordering.Entry {
	return ordering.Entry{
		ID:       i.ID,
		Group:    maps.Clone(i.Group),
		Position: i.Position,
		Fields:   maps.Clone(i.Fields),
	}
}

// Clone returns a deep copy.
func (i Item) Clone() Item {
	i.Group = maps.Clone(i.Group)
	i.Fields = maps.Clone(i.Fields)
	return i
}

// FromEntry builds an item of collection from a reader entry.
func FromEntry(collection string, e ordering.Entry) Item {
	return Item{
		Collection: collection,
		ID:         e.ID,
		Group:      maps.Clone(e.Group),
		Position:   e.Position,
		Fields:     maps.Clone(e.Fields),
	}
}

// Tx is one atomic unit of work against a backend.
type Tx interface {
	ordering.Tx

	// Get returns the item or an ordering not-found error.
	Get(ctx context.Context, collection, id string) (Item, error)

	// Insert adds a new item.
	Insert(ctx context.Context, item Item) error

	// Save overwrites an existing item.
	Save(ctx context.Context, item Item) error

	// Delete removes an item.
	Delete(ctx context.Context, collection, id string) error
}

// Backend is a transactional item store.
type Backend interface {
	ordering.Lister

	// InTx runs fn in one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise, including on ctx cancellation.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
