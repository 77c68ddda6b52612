package store

import (
	"context"
	"fmt"

	"github.com/roach88/ordering/internal/ordering"
)

// ListOrdered implements ordering.Lister.
// Results are ordered deterministically: ORDER BY position ASC, id ASC COLLATE BINARY.
// The single SELECT reads one consistent snapshot.
//
// Returns an empty slice (not nil) for an empty group.
func (s *Store) ListOrdered(ctx context.Context, scope ordering.Scope) ([]ordering.Entry, error) {
	where := scopePredicate(scope)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_key, position, fields
		FROM items
		WHERE `+where.SQL()+`
		ORDER BY position ASC, id ASC COLLATE BINARY
	`, where.Params()...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	entries := []ordering.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return entries, nil
}

// Groups implements ordering.Lister.
func (s *Store) Groups(ctx context.Context, collection string) ([]ordering.GroupKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT group_key
		FROM items
		WHERE collection = ?
		ORDER BY group_key ASC COLLATE BINARY
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var groups []ordering.GroupKey
	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		key, err := ordering.ParseGroupKey(encoded)
		if err != nil {
			return nil, err
		}
		groups = append(groups, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}
