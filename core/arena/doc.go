// Package arena implements the fixed-size node slot allocator backing every
// series header and cell pairing in the runtime (spec §4.A).
//
// A node is a fixed-width slot, identified by its index (a noderef.Ref)
// rather than its address, per the "Arena + indices" design note in spec
// §9: indexing keeps node identity stable across a GC cycle instead of
// entangling lifetimes with raw pointers.
//
// The allocator itself is grounded on hive/alloc/bump.go: pool growth is an
// append onto a single growable slice of slots, and a per-slot free bit (not a
// secondary free-list walk) lets the GC sweep distinguish live from free
// nodes in a single linear pass, exactly as hive/alloc/fastalloc.go tracks
// is_free alongside is_node.
package arena
