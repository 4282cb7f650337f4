// Package series implements the variable-width vector underlying arrays,
// strings, binaries, and contexts (spec §3, §4.B).
//
// Storage is either embedded (bytes live inside the node's SeriesSlot) or
// dynamic (the node holds a growable buffer with bias/used/rest
// accounting), the way hive/hbin.go tracks free space inside a bin and
// hive/alloc rounds allocation requests to a pool size class. Growth is
// amortized via the same size-class table hive/alloc/size_classes.go uses
// for cell allocation, adapted here from "cell classes" (NK/VK/...) to
// "width classes" (byte-width of one element).
package series
