// Package harness runs ordering scenarios and records their traces.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: b_insert_shifts_tail
//	description: "Inserting at 1 shifts the records at 1 and 2"
//	collection:
//	  name: tasks
//	  position: position
//	  group: [project]
//	setup:
//	  - {op: create, id: a, group: {project: p1}}
//	flow:
//	  - op: create
//	    id: n
//	    group: {project: p1}
//	    position: 1
//	    expect: {position: 1}
//	assertions:
//	  - type: positions
//	    group: {project: p1}
//	    expect: {a: 0, n: 1}
//
// A step's position is a YAML scalar: an integer, "" for blank, or null
// (or absent) for unset.
//
// # Operations
//
//   - create: insert a record (id, group, position, fields)
//   - move: change a record's position inside its group
//   - transfer: move a record into another group
//   - update: change fields, group or position in one call
//   - delete: remove a record
//   - list: build the presentation list of a group (language)
//   - renumber: compact a group
//
// # Assertion Types
//
//   - positions: the group holds exactly the given id => position pairs
//   - group_size: the group holds count records
//   - contiguous: every group of the collection is 0..N-1
//
// # Traces
//
// Setup steps establish state and are not traced. Each flow step adds one
// TraceEvent with the position assigned, the error code if it failed, and
// the resulting state of every group it touched. Runs are deterministic:
// a fresh store per run and sequential IDs for records created without one,
// so traces compare byte for byte against golden files.
package harness
