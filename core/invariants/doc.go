// Package invariants holds assertion helpers the testable-properties scenarios
// lean on directly: stack balance across a call, the cell preservation mask a
// Copy must honor, and the hold/freeze discipline a series must never violate.
// These are not runtime checks the evaluator itself performs — they are the
// post-hoc structural validation a test reaches for, the way hive/verify
// checks a built hive's invariants after the fact rather than while building
// it.
package invariants
