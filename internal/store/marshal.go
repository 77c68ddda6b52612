package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/ordering/internal/ordering"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// marshalFields converts item fields to JSON TEXT for storage.
// HTML escaping is disabled so stored labels read back byte-for-byte.
func marshalFields(fields map[string]string) (string, error) {
	if len(fields) == 0 {
		return "{}", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalFields parses JSON TEXT into item fields.
func unmarshalFields(data string) (map[string]string, error) {
	fields := map[string]string{}
	if data == "" || data == "{}" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return fields, nil
}

// scanEntry reads one (id, group_key, position, fields) row.
func scanEntry(row scanner) (ordering.Entry, error) {
	var (
		e          ordering.Entry
		groupKey   string
		fieldsJSON string
	)
	if err := row.Scan(&e.ID, &groupKey, &e.Position, &fieldsJSON); err != nil {
		return ordering.Entry{}, err
	}
	group, err := ordering.ParseGroupKey(groupKey)
	if err != nil {
		return ordering.Entry{}, err
	}
	fields, err := unmarshalFields(fieldsJSON)
	if err != nil {
		return ordering.Entry{}, err
	}
	e.Group = group
	e.Fields = fields
	return e, nil
}
