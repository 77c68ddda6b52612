package memstore

import (
	"context"
	"fmt"
	"math"

	"github.com/roach88/ordering/internal/items"
	"github.com/roach88/ordering/internal/ordering"
)

// tx works on private clones of the committed trees. Rows are never mutated
// in place: clones share them with the committed state.
type tx struct {
	trees
}

var _ items.Tx = (*tx)(nil)

func newRow(item items.Item) *row {
	item = item.Clone()
	return &row{
		collection: item.Collection,
		group:      item.Group.Encode(),
		position:   item.Position,
		item:       item,
	}
}

func (t *tx) put(r *row) {
	t.byPos.ReplaceOrInsert(r)
	t.byID.ReplaceOrInsert(r)
}

func (t *tx) remove(r *row) {
	t.byPos.Delete(r)
	t.byID.Delete(r)
}

// reposition replaces r with a copy at position p.
func (t *tx) reposition(r *row, p int) {
	t.byPos.Delete(r)
	item := r.item.Clone()
	item.Position = p
	t.put(newRow(item))
}

func (t *tx) lookup(collection, id string) (*row, bool) {
	return t.byID.Get(&row{collection: collection, item: items.Item{ID: id}})
}

// MaxPosition implements ordering.Tx.
func (t *tx) MaxPosition(ctx context.Context, scope ordering.Scope) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	group := scope.Group.Encode()
	var (
		max   int
		found bool
	)
	pivot := &row{collection: scope.Collection, group: group, position: math.MaxInt}
	t.byPos.DescendLessOrEqual(pivot, func(r *row) bool {
		if r.collection == scope.Collection && r.group == group {
			max, found = r.position, true
		}
		return false
	})
	return max, found, nil
}

// Shift implements ordering.Tx.
func (t *tx) Shift(ctx context.Context, scope ordering.Scope, s ordering.Shift) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	hi := s.To
	if s.Open {
		hi = math.MaxInt
	}
	rows := scopeRows(t.trees, scope.Collection, scope.Group.Encode(), s.From, hi)
	for _, r := range rows {
		t.reposition(r, r.position+s.Delta)
	}
	return int64(len(rows)), nil
}

// Renumber implements ordering.Tx.
func (t *tx) Renumber(ctx context.Context, scope ordering.Scope) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	rows := scopeRows(t.trees, scope.Collection, scope.Group.Encode(), math.MinInt, math.MaxInt)
	var changed int64
	for i, r := range rows {
		if r.position == i {
			continue
		}
		t.reposition(r, i)
		changed++
	}
	return changed, nil
}

// Get implements items.Tx.
func (t *tx) Get(ctx context.Context, collection, id string) (items.Item, error) {
	if err := ctx.Err(); err != nil {
		return items.Item{}, err
	}
	r, ok := t.lookup(collection, id)
	if !ok {
		return items.Item{}, ordering.NewNotFoundError(collection, id)
	}
	return r.item.Clone(), nil
}

// Insert implements items.Tx.
func (t *tx) Insert(ctx context.Context, item items.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, exists := t.lookup(item.Collection, item.ID); exists {
		return fmt.Errorf("insert %s/%s: item already exists", item.Collection, item.ID)
	}
	t.put(newRow(item))
	return nil
}

// Save implements items.Tx.
func (t *tx) Save(ctx context.Context, item items.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	old, ok := t.lookup(item.Collection, item.ID)
	if !ok {
		return ordering.NewNotFoundError(item.Collection, item.ID)
	}
	t.byPos.Delete(old)
	t.put(newRow(item))
	return nil
}

// Delete implements items.Tx.
func (t *tx) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, ok := t.lookup(collection, id)
	if !ok {
		return ordering.NewNotFoundError(collection, id)
	}
	t.remove(r)
	return nil
}
