// Package signals provides the cooperative-cancellation bitset consulted
// by the evaluator core between expressions, rather than relying on
// preemptive interruption (spec §5, §7). The arena's allocator does not
// consult it.
package signals
