// Package stack implements the data stack: an expandable store of cells
// with mark/restore discipline (spec §4.D). No other package in core uses
// it; refinement pickups in core/action collect into a local slice.
//
// The mark/restore discipline is grounded on hive/tx's Begin/Commit
// protocol: tx.Manager snapshots a sequence number before a batch of writes
// and can tell, after the fact, whether everything between Begin and
// Commit completed; stack.Stack snapshots the top index the same way, and
// DropTo is the rollback.
package stack
