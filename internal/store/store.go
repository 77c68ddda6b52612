package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/ordering/internal/items"
)

//go:embed schema.sql
var schemaSQL string

// DefaultBusyTimeout is how long a statement waits for a lock held by
// another process before failing with SQLITE_BUSY.
const DefaultBusyTimeout = 5 * time.Second

// migration upgrades a database to version.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations run in order for every version above the stored user_version.
// schema.sql always describes the latest version, so on a new database the
// statements are no-ops.
var migrations = []migration{
	{
		version: 1,
		name:    "group position index",
		stmt: `CREATE INDEX IF NOT EXISTS idx_items_group_position
			ON items(collection, group_key, position)`,
	},
}

// Store is the SQLite items.Backend.
type Store struct {
	db          *sql.DB
	busyTimeout time.Duration
	logger      *slog.Logger
}

var _ items.Backend = (*Store)(nil)

// Option configures Open.
type Option func(*Store)

// WithBusyTimeout overrides DefaultBusyTimeout. Non-positive values are ignored.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithLogger sets the logger migrations are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open creates or opens the SQLite database at path, applies the pragmas and
// brings the schema up to date. ":memory:" opens a private in-memory database.
//
// Opening an existing database again is safe.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{busyTimeout: DefaultBusyTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time. A single connection also
	// keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	s.db = db

	if err := s.applyPragmas(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InTx implements items.Backend.
// The transaction is rolled back unless fn returns nil and the commit succeeds.
func (s *Store) InTx(ctx context.Context, fn func(tx items.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback() // No-op if committed

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) applyPragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds()),
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// migrate creates missing tables, then runs the migrations newer than the
// stored user_version, each in its own transaction.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
		// PRAGMA does not take bound parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("set user_version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		s.logger.Debug("schema migrated", "version", m.version, "migration", m.name)
	}
	return nil
}

// SchemaVersion returns the stored user_version.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
