// Package store provides SQLite-backed durable storage for ordered items.
//
// One table holds the items of every collection. A group is addressed by
// (collection, group_key), where group_key is the canonical encoding of the
// item's group fields (see ordering.GroupKey.Encode).
//
// # Critical Patterns
//
// Atomic hooks:
//   - Every write runs inside one transaction opened by InTx
//   - The ordering hooks and the row write share that transaction
//   - Rollback on error or cancellation leaves the group untouched
//
// Deterministic ordering:
//   - All reads ORDER BY position ASC, id ASC COLLATE BINARY
//   - Renumbering uses the same key, so ties resolve identically everywhere
//
// Parameterized SQL:
//   - Values are always bound with ? placeholders, never interpolated
//   - Predicates are assembled by the predicate builder in predicate.go
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout: Wait for locks up to 5 seconds unless WithBusyTimeout
//     says otherwise
//   - one open connection: SQLite has a single writer, and readers queue
//     behind an open transaction instead of seeing it half done
package store
