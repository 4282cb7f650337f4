// Package natives supplies the fixed set of built-in actions needed to
// execute every end-to-end scenario a minimal interpreter core must prove
// out: arithmetic (+, *), conditional dispatch (if/else), an invisible
// (comment), and a mutating series op (append). The full native library
// remains out of scope (spec.md §1 treats it as an external collaborator);
// this is the narrow slice SPEC_FULL.md supplements so the Evaluator Core
// and Action Dispatch machinery are exercised by something runnable.
//
// Grounded on the Action Dispatch contract (core/action) itself: each
// native here is the simplest possible Dispatch function exercising one
// combination the spec calls out — tight binary arithmetic, an invisible
// result, a manually-driven branch gather, and a frozen-series access
// error. This package imports both core/action and core/eval directly,
// since a Dispatch closure needs to recursively run a chosen branch block.
package natives
