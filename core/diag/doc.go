// Package diag produces best-effort diagnostic dumps when the engine
// recovers from an internal panic, rather than surfacing a bare Go stack
// trace to the host (spec §7 "If no handler is active, the runtime
// terminates with a diagnostic dump").
//
// Grounded on internal/repair's Diagnostic/EngineResult reporting: that
// package inspects a possibly-corrupt structure and produces a structured
// report rather than failing silently; diag does the same for an
// in-flight frame stack and the cell that triggered the panic.
package diag
