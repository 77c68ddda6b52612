package items

import "github.com/google/uuid"

// IDGenerator produces item IDs for items created without one.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 item IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
