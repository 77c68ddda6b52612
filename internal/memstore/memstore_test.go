package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ordering/internal/items"
	"github.com/roach88/ordering/internal/ordering"
)

func scope(project string) ordering.Scope {
	return ordering.Scope{Collection: "tasks", Group: ordering.GroupKey{"project": project}}
}

func item(id, project string, position int) items.Item {
	return items.Item{
		Collection: "tasks",
		ID:         id,
		Group:      ordering.GroupKey{"project": project},
		Position:   position,
		Fields:     map[string]string{"title": id},
	}
}

// seed inserts the items in one transaction.
func seed(t *testing.T, s *Store, all ...items.Item) {
	t.Helper()
	require.NoError(t, s.InTx(context.Background(), func(tx items.Tx) error {
		for _, it := range all {
			if err := tx.Insert(context.Background(), it); err != nil {
				return err
			}
		}
		return nil
	}))
}

func listIDs(t *testing.T, s *Store, sc ordering.Scope) []string {
	t.Helper()
	entries, err := s.ListOrdered(context.Background(), sc)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestListOrdered_ByPositionThenID(t *testing.T) {
	s := New()
	seed(t, s,
		item("c", "p1", 1),
		item("b", "p1", 0),
		item("a", "p1", 1),
		item("z", "p2", 0),
	)

	assert.Equal(t, []string{"b", "a", "c"}, listIDs(t, s, scope("p1")))
	assert.Equal(t, []string{"z"}, listIDs(t, s, scope("p2")))
	assert.Empty(t, listIDs(t, s, scope("p3")))
}

func TestGroups(t *testing.T) {
	s := New()
	seed(t, s,
		item("a", "p2", 0),
		item("b", "p1", 0),
		item("c", "p1", 1),
		items.Item{Collection: "menu", ID: "m", Group: ordering.GroupKey{}},
	)

	groups, err := s.Groups(context.Background(), "tasks")
	require.NoError(t, err)
	assert.Equal(t, []ordering.GroupKey{{"project": "p1"}, {"project": "p2"}}, groups)

	groups, err = s.Groups(context.Background(), "menu")
	require.NoError(t, err)
	assert.Equal(t, []ordering.GroupKey{{}}, groups)

	groups, err = s.Groups(context.Background(), "none")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestTx_MaxPositionAndShift(t *testing.T) {
	s := New()
	seed(t, s, item("a", "p1", 0), item("b", "p1", 1), item("c", "p1", 2), item("x", "p2", 0))
	ctx := context.Background()

	require.NoError(t, s.InTx(ctx, func(tx items.Tx) error {
		max, ok, err := tx.MaxPosition(ctx, scope("p1"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2, max)

		_, ok, err = tx.MaxPosition(ctx, scope("p9"))
		require.NoError(t, err)
		assert.False(t, ok)

		n, err := tx.Shift(ctx, scope("p1"), ordering.Shift{Delta: +1, From: 1, To: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return nil
	}))

	entries, err := s.ListOrdered(ctx, scope("p1"))
	require.NoError(t, err)
	assert.Equal(t, 2, entries[1].Position)
	assert.Equal(t, "b", entries[1].ID)
	assert.Equal(t, 2, entries[2].Position)
	assert.Equal(t, []string{"x"}, listIDs(t, s, scope("p2")))
}

func TestTx_Renumber(t *testing.T) {
	s := New()
	seed(t, s, item("a", "p1", 3), item("b", "p1", 7), item("c", "p1", 7), item("d", "p1", 0))
	ctx := context.Background()

	var n int64
	require.NoError(t, s.InTx(ctx, func(tx items.Tx) error {
		var err error
		n, err = tx.Renumber(ctx, scope("p1"))
		return err
	}))

	assert.Equal(t, int64(3), n)
	entries, err := s.ListOrdered(ctx, scope("p1"))
	require.NoError(t, err)
	require.NoError(t, ordering.VerifyContiguous(scope("p1"), entries))
	assert.Equal(t, []string{"d", "a", "b", "c"}, listIDs(t, s, scope("p1")))
}

func TestTx_SaveAndDelete(t *testing.T) {
	s := New()
	seed(t, s, item("a", "p1", 0))
	ctx := context.Background()

	require.NoError(t, s.InTx(ctx, func(tx items.Tx) error {
		moved := item("a", "p2", 0)
		moved.Fields["title"] = "renamed"
		return tx.Save(ctx, moved)
	}))
	assert.Empty(t, listIDs(t, s, scope("p1")))
	assert.Equal(t, []string{"a"}, listIDs(t, s, scope("p2")))

	err := s.InTx(ctx, func(tx items.Tx) error {
		got, err := tx.Get(ctx, "tasks", "a")
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Fields["title"])
		return tx.Delete(ctx, "tasks", "a")
	})
	require.NoError(t, err)
	assert.Zero(t, s.Len())

	err = s.InTx(ctx, func(tx items.Tx) error { return tx.Delete(ctx, "tasks", "a") })
	assert.True(t, ordering.IsNotFound(err))
	err = s.InTx(ctx, func(tx items.Tx) error { return tx.Save(ctx, item("a", "p1", 0)) })
	assert.True(t, ordering.IsNotFound(err))
	err = s.InTx(ctx, func(tx items.Tx) error {
		_, err := tx.Get(ctx, "tasks", "a")
		return err
	})
	assert.True(t, ordering.IsNotFound(err))
}

func TestTx_InsertDuplicate(t *testing.T) {
	s := New()
	seed(t, s, item("a", "p1", 0))

	err := s.InTx(context.Background(), func(tx items.Tx) error {
		return tx.Insert(context.Background(), item("a", "p2", 0))
	})
	assert.ErrorContains(t, err, "already exists")
}

func TestInTx_RollbackOnError(t *testing.T) {
	s := New()
	seed(t, s, item("a", "p1", 0), item("b", "p1", 1))
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx items.Tx) error {
		if _, err := tx.Shift(ctx, scope("p1"), ordering.Shift{Delta: +1, From: 0, Open: true}); err != nil {
			return err
		}
		if err := tx.Insert(ctx, item("c", "p1", 0)); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, s.Len())
	entries, err := s.ListOrdered(ctx, scope("p1"))
	require.NoError(t, err)
	assert.NoError(t, ordering.VerifyContiguous(scope("p1"), entries))
}

func TestInTx_CancelledBeforeCommit(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())

	err := s.InTx(ctx, func(tx items.Tx) error {
		if err := tx.Insert(ctx, item("a", "p1", 0)); err != nil {
			return err
		}
		cancel()
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.Len())
}

func TestInTx_ReadersSeeCommittedState(t *testing.T) {
	s := New()
	seed(t, s, item("a", "p1", 0))
	ctx := context.Background()

	require.NoError(t, s.InTx(ctx, func(tx items.Tx) error {
		if err := tx.Insert(ctx, item("b", "p1", 1)); err != nil {
			return err
		}
		// Not yet visible outside the transaction.
		assert.Equal(t, []string{"a"}, listIDs(t, s, scope("p1")))
		return nil
	}))

	assert.Equal(t, []string{"a", "b"}, listIDs(t, s, scope("p1")))
}

func TestEntriesAreCopies(t *testing.T) {
	s := New()
	seed(t, s, item("a", "p1", 0))
	ctx := context.Background()

	entries, err := s.ListOrdered(ctx, scope("p1"))
	require.NoError(t, err)
	entries[0].Fields["title"] = "mutated"

	entries, err = s.ListOrdered(ctx, scope("p1"))
	require.NoError(t, err)
	assert.Equal(t, "a", entries[0].Fields["title"])
}
