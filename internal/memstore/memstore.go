// Package memstore is an in-memory item backend built on copy-on-write
// B-trees.
//
// A transaction clones the committed trees (O(1) with btree.Clone), works on
// the clones and swaps them in on commit. Writers serialize on one mutex;
// readers always see the last committed state and never a partial one.
package memstore

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/google/btree"

	"github.com/roach88/ordering/internal/items"
	"github.com/roach88/ordering/internal/ordering"
)

const degree = 32

type row struct {
	collection string
	group      string
	position   int
	item       items.Item
}

// lessByPosition orders rows by (collection, group, position, id).
func lessByPosition(a, b *row) bool {
	if a.collection != b.collection {
		return a.collection < b.collection
	}
	if a.group != b.group {
		return a.group < b.group
	}
	if a.position != b.position {
		return a.position < b.position
	}
	return a.item.ID < b.item.ID
}

// lessByID orders rows by (collection, id).
func lessByID(a, b *row) bool {
	if a.collection != b.collection {
		return a.collection < b.collection
	}
	return a.item.ID < b.item.ID
}

type trees struct {
	byPos *btree.BTreeG[*row]
	byID  *btree.BTreeG[*row]
}

func (t trees) clone() trees {
	return trees{byPos: t.byPos.Clone(), byID: t.byID.Clone()}
}

// Store is an in-memory items.Backend.
type Store struct {
	writer sync.Mutex // serializes transactions

	mu        sync.Mutex // guards committed
	committed trees
}

var _ items.Backend = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		committed: trees{
			byPos: btree.NewG(degree, lessByPosition),
			byID:  btree.NewG(degree, lessByID),
		},
	}
}

func (s *Store) snapshot() trees {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed.clone()
}

// InTx implements items.Backend.
func (s *Store) InTx(ctx context.Context, fn func(tx items.Tx) error) error {
	s.writer.Lock()
	defer s.writer.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	t := &tx{trees: s.snapshot()}
	if err := fn(t); err != nil {
		return err
	}
	// Cancelled before commit: nothing becomes visible.
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = t.trees
	s.mu.Unlock()
	return nil
}

// ListOrdered implements ordering.Lister.
func (s *Store) ListOrdered(ctx context.Context, scope ordering.Scope) ([]ordering.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := s.snapshot()
	var out []ordering.Entry
	for _, r := range scopeRows(t, scope.Collection, scope.Group.Encode(), math.MinInt, math.MaxInt) {
		out = append(out, r.item.Entry())
	}
	return out, nil
}

// Groups implements ordering.Lister.
func (s *Store) Groups(ctx context.Context, collection string) ([]ordering.GroupKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := s.snapshot()
	var (
		out  []ordering.GroupKey
		last string
		err  error
	)
	t.byPos.AscendGreaterOrEqual(&row{collection: collection, position: math.MinInt}, func(r *row) bool {
		if r.collection != collection {
			return false
		}
		if len(out) > 0 && r.group == last {
			return true
		}
		last = r.group
		var key ordering.GroupKey
		key, err = ordering.ParseGroupKey(r.group)
		if err != nil {
			return false
		}
		out = append(out, key)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("groups: %w", err)
	}
	return out, nil
}

// Len returns the number of stored items across all collections.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed.byID.Len()
}

// scopeRows returns the rows of one group with lo <= position <= hi, in
// position order.
func scopeRows(t trees, collection, group string, lo, hi int) []*row {
	var out []*row
	t.byPos.AscendGreaterOrEqual(&row{collection: collection, group: group, position: lo}, func(r *row) bool {
		if r.collection != collection || r.group != group || r.position > hi {
			return false
		}
		out = append(out, r)
		return true
	})
	return out
}
