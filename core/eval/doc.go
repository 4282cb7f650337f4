// Package eval implements the Evaluator Core (spec §4.G): a single
// resumable state machine — LOOKAHEAD_START, DISPATCH, LOOKAHEAD, FINISH —
// that drives one step (or a run to end) of evaluation over a Feed,
// writing into a Frame's out cell.
//
// Grounded on hive/walker/core.go's WalkerCore: one iterative traversal
// function carrying an explicit StackEntry.state (stateInitial,
// stateSubkeysDone, stateValuesDone, ...) rather than a family of mutually
// recursive functions, chosen there to bound Go stack growth while walking
// an arbitrarily deep hive tree. The Evaluator Core borrows the same
// shape for the same reason the spec wants one resumable function: nested
// evaluation (an action argument that is itself a call) has to recurse
// through Action Dispatch without the two packages importing each other.
//
// core/eval is the *only* package that imports both core/action and
// supplies core/action.EvalStep: this Engine's own Step method is injected
// into every action.Fulfiller it builds, closing the Core<->Dispatch loop
// without a Go import cycle (core/action never imports core/eval).
package eval
