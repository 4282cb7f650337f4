// Package scan implements the feed.Scanner contract with a minimal
// concrete tokenizer: integers, words, set-words, get-words, strings, and
// nested blocks/groups. The full dialect lexer (paths, refinements,
// decimals, binaries, tags, ...) is out of scope per spec.md §1 — a
// variadic feed spliced fragment only needs enough of the grammar to
// exercise the splice-and-resume contract end to end (spec §8.8).
//
// Grounded on internal/regtext's lexer: that package decodes a possibly
// non-UTF-8 external text format into in-memory structures one token at a
// time, normalizing encoding up front (BOM/UTF-16LE detection) before
// tokenizing; Scan normalizes with golang.org/x/text the same way before
// its own tokenizing pass.
package scan
