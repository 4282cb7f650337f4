package invariants

import (
	"fmt"

	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/series"
	"github.com/relang/corevm/core/stack"
)

// ValidationError reports which invariant failed and why, mirroring
// hivekit's verify.ValidationError shape.
type ValidationError struct {
	Type    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// StackBalance checks that st's depth after a call matches its depth
// before, the invariant spec §4.D requires of every normal action return
// ("on normal function return, stack top must equal its value on entry").
func StackBalance(st *stack.Stack, before int) error {
	after := st.Depth()
	if after != before {
		return &ValidationError{
			Type:    "StackBalance",
			Message: fmt.Sprintf("depth %d before call, %d after (expected balanced)", before, after),
		}
	}
	return nil
}

// CellPreservation checks that dst, produced by src.Copy(), satisfies the
// preservation mask spec §3 and §8 both name: kind, quote_depth, const, and
// newline-before survive; enfixed, unevaluated, and the engine-private mark
// bits do not.
func CellPreservation(src, dst cell.Cell) error {
	if dst.Header.Kind != src.Header.Kind {
		return &ValidationError{Type: "CellPreservation", Message: "kind did not survive Copy"}
	}
	if dst.Header.QuoteDepth != src.Header.QuoteDepth {
		return &ValidationError{Type: "CellPreservation", Message: "quote_depth did not survive Copy"}
	}
	if src.HasFlag(cell.FlagConst) && !src.HasFlag(cell.FlagExplicitlyMutable) && !dst.HasFlag(cell.FlagConst) {
		return &ValidationError{Type: "CellPreservation", Message: "const did not survive Copy"}
	}
	if src.HasFlag(cell.FlagNewlineBefore) && !dst.HasFlag(cell.FlagNewlineBefore) {
		return &ValidationError{Type: "CellPreservation", Message: "newline-before did not survive Copy"}
	}
	if dst.HasFlag(cell.FlagEnfixed) {
		return &ValidationError{Type: "CellPreservation", Message: "enfixed leaked across Copy"}
	}
	if dst.HasFlag(cell.FlagUnevaluated) {
		return &ValidationError{Type: "CellPreservation", Message: "unevaluated leaked across Copy"}
	}
	if dst.HasFlag(cell.FlagArgMarkedChecked) || dst.HasFlag(cell.FlagOutMarkedStale) {
		return &ValidationError{Type: "CellPreservation", Message: "engine-private mark bit leaked across Copy"}
	}
	return nil
}

// SeriesHoldDiscipline checks that s carries no outstanding hold (its
// frozen and protected bits are not examined) — the state a series must be in before a
// test considers an enumeration or evaluation cleanly finished (spec §4.B:
// holds "permit nested evaluations of the same array" and must be
// symmetric; a leaked hold means some enumerator never released).
func SeriesHoldDiscipline(s series.Series) error {
	if s.Held() {
		return &ValidationError{Type: "SeriesHoldDiscipline", Message: "series still held after use"}
	}
	return nil
}

// SeriesMutable checks that s is not frozen (the protected bit is not
// examined) — the inverse assertion, used by tests that expect
// a series to still be writable at a given point.
func SeriesMutable(s series.Series) error {
	if s.Frozen() {
		return &ValidationError{Type: "SeriesMutable", Message: "series unexpectedly frozen"}
	}
	return nil
}
