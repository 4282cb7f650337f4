// Package feed implements the uniform value cursor the evaluator pulls one
// cell at a time from, whether the source is an in-memory array or a
// C-variadic-style list of mixed pointer kinds (spec §4.E).
//
// The one-step lookahead and single-step advance are grounded on
// hive/walker/core.go: an iterative, single-function traversal cursor
// chosen explicitly over recursion so the caller (here, the evaluator
// core) can suspend and resume between steps. The variadic branch that
// splices a freshly scanned sub-array into the cursor is grounded on
// internal/regtext, which turns an external text fragment into in-memory
// structure spliced back into the surrounding traversal.
package feed
