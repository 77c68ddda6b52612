// Package testutil holds deterministic helpers for tests and scenarios.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// SequentialIDs generates item IDs "<prefix>-1", "<prefix>-2", ...
//
// The same scenario run with a fresh SequentialIDs produces the same IDs,
// which keeps golden traces byte-identical.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewSequentialIDs creates a generator. An empty prefix defaults to "id".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next ID.
//
// Implements items.IDGenerator interface.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Reset restarts the sequence. After Reset(), Generate returns "<prefix>-1".
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
