package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/ordering/internal/items"
	"github.com/roach88/ordering/internal/ordering"
)

// Tx is one open SQLite transaction. It is only valid inside InTx.
type Tx struct {
	tx *sql.Tx
}

var _ items.Tx = (*Tx)(nil)

// MaxPosition implements ordering.Tx.
func (t *Tx) MaxPosition(ctx context.Context, scope ordering.Scope) (int, bool, error) {
	where := scopePredicate(scope)
	var max sql.NullInt64
	err := t.tx.QueryRowContext(ctx,
		`SELECT MAX(position) FROM items WHERE `+where.SQL(),
		where.Params()...,
	).Scan(&max)
	if err != nil {
		return 0, false, fmt.Errorf("max position: %w", err)
	}
	return int(max.Int64), max.Valid, nil
}

// Shift implements ordering.Tx with a single conditional UPDATE.
func (t *Tx) Shift(ctx context.Context, scope ordering.Scope, s ordering.Shift) (int64, error) {
	where := shiftPredicate(scope, s)
	params := append([]any{s.Delta}, where.Params()...)
	result, err := t.tx.ExecContext(ctx,
		`UPDATE items SET position = position + ? WHERE `+where.SQL(),
		params...,
	)
	if err != nil {
		return 0, fmt.Errorf("shift %s: %w", s, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("shift %s: rows affected: %w", s, err)
	}
	return n, nil
}

// Renumber implements ordering.Tx.
// Ranks the group by (position, id) and writes the 0-based rank back in one
// statement; rows already in place are left alone.
func (t *Tx) Renumber(ctx context.Context, scope ordering.Scope) (int64, error) {
	where := scopePredicate(scope)
	params := append(where.Params(), scope.Collection)
	result, err := t.tx.ExecContext(ctx, `
		UPDATE items
		SET position = ranked.rn
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY position ASC, id ASC COLLATE BINARY) - 1 AS rn
			FROM items
			WHERE `+where.SQL()+`
		) AS ranked
		WHERE items.collection = ? AND items.id = ranked.id AND items.position <> ranked.rn
	`, params...)
	if err != nil {
		return 0, fmt.Errorf("renumber: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("renumber: rows affected: %w", err)
	}
	return n, nil
}

// Get implements items.Tx.
func (t *Tx) Get(ctx context.Context, collection, id string) (items.Item, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id, group_key, position, fields
		FROM items
		WHERE collection = ? AND id = ?
	`, collection, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return items.Item{}, ordering.NewNotFoundError(collection, id)
	}
	if err != nil {
		return items.Item{}, fmt.Errorf("get item: %w", err)
	}
	return items.FromEntry(collection, e), nil
}

// Insert implements items.Tx.
func (t *Tx) Insert(ctx context.Context, item items.Item) error {
	fieldsJSON, err := marshalFields(item.Fields)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO items (collection, id, group_key, position, fields)
		VALUES (?, ?, ?, ?, ?)
	`,
		item.Collection,
		item.ID,
		item.Group.Encode(),
		item.Position,
		fieldsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// Save implements items.Tx.
func (t *Tx) Save(ctx context.Context, item items.Item) error {
	fieldsJSON, err := marshalFields(item.Fields)
	if err != nil {
		return fmt.Errorf("save item: %w", err)
	}
	result, err := t.tx.ExecContext(ctx, `
		UPDATE items
		SET group_key = ?, position = ?, fields = ?
		WHERE collection = ? AND id = ?
	`,
		item.Group.Encode(),
		item.Position,
		fieldsJSON,
		item.Collection,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("save item: %w", err)
	}
	return requireRow(result, item.Collection, item.ID)
}

// Delete implements items.Tx.
func (t *Tx) Delete(ctx context.Context, collection, id string) error {
	result, err := t.tx.ExecContext(ctx,
		`DELETE FROM items WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireRow(result, collection, id)
}

// requireRow turns a zero-row write into a not-found error.
func requireRow(result sql.Result, collection, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ordering.NewNotFoundError(collection, id)
	}
	return nil
}
