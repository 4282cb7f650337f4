/*
Package corevm provides a high-level, ergonomic API for running programs
against the interpreter core: the node arena, action registry, evaluator,
and minimal native library wired up behind a handful of entry points.

# Quick Start

Run a source string to completion and get its final value:

	eng := corevm.New()
	out, err := eng.Do("1 + 2 * 3")

# Features

  - Single-call source evaluation (Do)
  - Variadic, C-API-style evaluation splicing live cells and source
    fragments together (DoVariadic)
  - A fixed native library (+, *, if/else, comment, append) sufficient to
    exercise every corner of the evaluator core
  - Deterministic, injectable recursion limits and cooperative cancellation

# Basic Usage

	eng := corevm.New()
	out, err := eng.Do("if true [1] else [2]")
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(out.Int64())

# Error Handling

Every entry point returns the underlying core/eval, core/action, or
core/bind sentinel error unwrapped, so callers can use errors.Is against
(for example) eval.ErrExpressionBarrier or bind.ErrUnbound.
*/
package corevm
