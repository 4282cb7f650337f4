// Package frame implements the per-call evaluator state described in spec
// §4.F: feed cursor, output cell, argument-fulfillment slots, and the link
// back to the calling frame.
//
// Frames are caller-owned (typically stack-allocated in the calling Go
// function) and chained through Prior; a package-level TopFrame pointer
// identifies the innermost frame, exactly as hive/builder threads a parent
// link through nested in-progress construction state as an object tree is
// built bottom-up.
package frame
