package ordering

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
)

// Coordinator runs the ordering reactions for one collection.
// It holds no mutable state and is safe for concurrent use.
type Coordinator struct {
	def    Definition
	lister Lister
	logger *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// New validates def and returns a coordinator reading through lister.
func New(def Definition, lister Lister, opts ...Option) (*Coordinator, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if lister == nil {
		return nil, NewConfigError(def.Collection, "a lister must be provided")
	}
	c := &Coordinator{
		def:    def,
		lister: lister,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Definition returns the collection definition.
func (c *Coordinator) Definition() Definition {
	return c.def
}

// BeforeCreate reserves room for a new record and sets its position.
// Must run in the transaction that inserts the record, before the insert.
func (c *Coordinator) BeforeCreate(ctx context.Context, tx Tx, rec Record) error {
	scope := c.def.Scope(rec.GroupKey())
	assigned, err := c.enter(ctx, tx, scope, rec.RequestedPosition())
	if err != nil {
		return fmt.Errorf("before create: %w", err)
	}
	rec.SetPosition(assigned)
	return nil
}

// BeforeUpdate moves the record inside its group, or out of prior's group
// and into its new one. Must run before the record is saved.
func (c *Coordinator) BeforeUpdate(ctx context.Context, tx Tx, prior Placement, rec Record) error {
	from := c.def.Scope(prior.Group)
	to := c.def.Scope(rec.GroupKey())

	if changed := Changed(prior.Group, rec.GroupKey(), c.def.GroupFields); len(changed) > 0 {
		if err := c.leave(ctx, tx, from, prior.Position); err != nil {
			return fmt.Errorf("before update: leave %s: %w", from, err)
		}
		assigned, err := c.enter(ctx, tx, to, rec.RequestedPosition())
		if err != nil {
			return fmt.Errorf("before update: enter %s: %w", to, err)
		}
		rec.SetPosition(assigned)
		c.logger.Debug("group transfer",
			"collection", c.def.Collection,
			"from", from.Group.Encode(),
			"to", to.Group.Encode(),
			"fields", changed,
			"position", assigned,
		)
		return nil
	}

	max, ok, err := tx.MaxPosition(ctx, from)
	if err != nil {
		return fmt.Errorf("before update: %w", err)
	}
	assigned := Normalize(rec.RequestedPosition(), At(prior.Position), max, ok)
	// The record already counts toward max, so max is the last free slot.
	if ok && assigned > max {
		assigned = max
	}
	rec.SetPosition(assigned)

	s, moved := Plan(At(prior.Position), At(assigned))
	if !moved {
		return nil
	}
	if err := c.apply(ctx, tx, from, s, max, ok); err != nil {
		return fmt.Errorf("before update: %w", err)
	}
	return nil
}

// AfterUpdate renumbers the source and destination groups when the record
// changed group. Must run after the record is saved, in the same transaction.
func (c *Coordinator) AfterUpdate(ctx context.Context, tx Tx, prior Placement, rec Record) error {
	if len(Changed(prior.Group, rec.GroupKey(), c.def.GroupFields)) == 0 {
		return nil
	}
	for _, scope := range []Scope{c.def.Scope(prior.Group), c.def.Scope(rec.GroupKey())} {
		n, err := tx.Renumber(ctx, scope)
		if err != nil {
			return fmt.Errorf("after update: renumber %s: %w", scope, err)
		}
		c.logger.Debug("group renumbered",
			"collection", scope.Collection,
			"group", scope.Group.Encode(),
			"changed", n,
		)
	}
	return nil
}

// AfterDelete closes the gap left by a deleted record.
// Must run after the delete, in the same transaction.
func (c *Coordinator) AfterDelete(ctx context.Context, tx Tx, removed Placement) error {
	scope := c.def.Scope(removed.Group)
	max, ok, err := tx.MaxPosition(ctx, scope)
	if err != nil {
		return fmt.Errorf("after delete: %w", err)
	}
	s, _ := Plan(At(removed.Position), Unset)
	if err := c.apply(ctx, tx, scope, s, max, ok); err != nil {
		return fmt.Errorf("after delete: %w", err)
	}
	return nil
}

// Renumber compacts one group to 0..N-1 keeping the current relative order.
func (c *Coordinator) Renumber(ctx context.Context, tx Tx, group GroupKey) (int64, error) {
	scope := c.def.Scope(group)
	n, err := tx.Renumber(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("renumber %s: %w", scope, err)
	}
	return n, nil
}

// ListOrdered yields the group's records by ascending position.
// Nothing is read until the sequence is ranged over; ranging again re-reads
// a fresh snapshot.
func (c *Coordinator) ListOrdered(ctx context.Context, group GroupKey) iter.Seq2[Entry, error] {
	scope := c.def.Scope(group)
	return func(yield func(Entry, error) bool) {
		entries, err := c.lister.ListOrdered(ctx, scope)
		if err != nil {
			yield(Entry{}, fmt.Errorf("list %s: %w", scope, err))
			return
		}
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	}
}

// Verify checks that the group's positions are exactly 0..N-1.
func (c *Coordinator) Verify(ctx context.Context, group GroupKey) error {
	scope := c.def.Scope(group)
	entries, err := c.lister.ListOrdered(ctx, scope)
	if err != nil {
		return fmt.Errorf("verify %s: %w", scope, err)
	}
	return VerifyContiguous(scope, entries)
}

// VerifyContiguous checks entries, sorted by position, against 0..N-1.
func VerifyContiguous(scope Scope, entries []Entry) error {
	for i, e := range entries {
		if e.Position != i {
			return NewGapError(scope, i, e.Position)
		}
	}
	return nil
}

// enter normalizes the requested position against the scope and opens a slot.
func (c *Coordinator) enter(ctx context.Context, tx Tx, scope Scope, requested Position) (int, error) {
	max, ok, err := tx.MaxPosition(ctx, scope)
	if err != nil {
		return 0, err
	}
	assigned := Normalize(requested, Unset, max, ok)
	s, _ := Plan(Unset, At(assigned))
	if err := c.apply(ctx, tx, scope, s, max, ok); err != nil {
		return 0, err
	}
	return assigned, nil
}

// leave closes the slot at position in a scope the record still belongs to.
func (c *Coordinator) leave(ctx context.Context, tx Tx, scope Scope, position int) error {
	max, ok, err := tx.MaxPosition(ctx, scope)
	if err != nil {
		return err
	}
	s, _ := Plan(At(position), Unset)
	return c.apply(ctx, tx, scope, s, max, ok)
}

// apply issues one range update and checks its row count against the
// contiguous group described by max.
func (c *Coordinator) apply(ctx context.Context, tx Tx, scope Scope, s Shift, max int, hasMax bool) error {
	n, err := tx.Shift(ctx, scope, s)
	if err != nil {
		return err
	}
	if want := s.Expected(max, hasMax); n != want {
		return NewConsistencyError(scope, s, want, n)
	}
	c.logger.Debug("shift applied",
		"collection", scope.Collection,
		"group", scope.Group.Encode(),
		"shift", s.String(),
		"rows", n,
	)
	return nil
}
