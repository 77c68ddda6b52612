// Package ordering keeps a gap-free position attribute over grouped records.
//
// A group is the set of records of one collection whose group-key fields are
// all equal. Inside every group the positions form exactly 0..N-1. The
// package never talks to storage directly: the host opens a transaction,
// calls the lifecycle hooks of a Coordinator with it, and persists the record
// itself.
//
// Hooks and their effects:
//
//	BeforeCreate  normalize the requested position, shift [p, ∞) by +1
//	BeforeUpdate  move inside a group (shift the range between old and new
//	              position), or leave the old group and enter the new one
//	AfterUpdate   renumber source and destination group after a transfer
//	AfterDelete   shift (p, ∞) by -1
//
// A blank requested position means "front" and an unset one means "end".
// The two are deliberately different.
//
// Every shift reports how many rows it touched. A count that disagrees with
// a contiguous group is reported as a consistency violation and the caller
// must roll back its transaction.
package ordering
