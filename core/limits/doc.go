// Package limits guards recursion and nesting depth so a runaway or
// maliciously deep program raises a Resource error instead of overflowing
// the Go stack (spec §7 "Resource: out of memory/recursion").
//
// Grounded on pkg/ast/limits.go's Limits struct and ValidationError: that
// package checks structural bounds (subkey count, tree depth, name
// length) against configurable ceilings and returns a typed error naming
// which limit was exceeded and by how much; Guard does the same for
// evaluator/scanner call depth.
package limits
