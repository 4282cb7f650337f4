// Package trap implements the non-local exit protocol spec §7 describes:
// push_trap/fail for error unwinding, and throw/catch for first-class
// control-flow values that are distinct from errors and travel through
// the same frame stack without being caught by error trap handlers.
//
// Grounded on hive/tx's Begin/Commit snapshot-and-restore protocol: Begin
// snapshots a sequence counter before a transaction and Commit advances it
// on success; PushTrap snapshots the evaluator's depth counters before a
// risky span and Fail carries them to the catcher, which restores them on
// failure, in the same spirit but
// rolling back instead of committing.
package trap
