// Package action implements Action Dispatch (spec §4.I) and Path Dispatch
// (spec §4.J): pushing a callee frame, fulfilling its parameters from a
// feed according to each parameter's quoting class, refinement pickups,
// and the pick/poke operations a path step performs.
//
// core/action never imports core/eval even though fulfilling a Normal or
// Tight parameter requires running the full evaluator recursively on a
// sub-frame: callers inject an EvalStep callback (the evaluator core's own
// Step/Run function) instead, exactly as the spec's note on avoiding the
// mutually-recursive Core<->Dispatch import cycle requires. Action identity
// is a noderef.Ref resolved through this package's own Registry rather
// than an arena node, so core/frame (which stores that Ref) need not
// import this package either.
//
// Grounded on hive/subkeys (ordered lookup of named children by key) and
// hive/merge (reconciling entries supplied in a different order than the
// list's canonical order) — the shape pickups reuse: refinement arguments
// arrive in call-site order but must be filed into paramlist order.
package action
