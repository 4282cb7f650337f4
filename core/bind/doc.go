// Package bind resolves relative words (words bound to an action paramlist
// rather than a concrete context) against a Specifier, and implements the
// Context type used for object! varlists and frame varlists alike (spec §3
// "Binding/Specifier", "Context").
//
// Symbol interning is grounded on hive/namecache: hivekit caches
// name-to-object resolutions to avoid repeated key-name comparisons during
// traversal; corevm interns word text to a small integer Symbol for the
// same reason (cheap equality, cheap hashing, stable identity across
// copies).
package bind
