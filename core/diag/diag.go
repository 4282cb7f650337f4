package diag

import (
	"fmt"
	"strings"

	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/frame"
)

// FrameSnapshot is a best-effort, read-only capture of one frame at the
// moment of a panic. Fields are copied rather than referenced so the
// report stays valid after the frame chain it was taken from unwinds.
type FrameSnapshot struct {
	Label        string
	ExprIndex    int
	Param        int
	Flags        frame.Flags
	HasParamlist bool
}

// Report is the diagnostic dump produced when the engine recovers from an
// internal panic it cannot otherwise attribute to Fail or Throw.
type Report struct {
	Recovered any
	Frames    []FrameSnapshot
	OutKind   string
}

// DumpFrames walks the Prior chain from fr outward, capturing a
// best-effort snapshot of each frame. It never panics itself: a nil fr
// simply yields an empty slice.
func DumpFrames(fr *frame.Frame) []FrameSnapshot {
	var out []FrameSnapshot
	for f := fr; f != nil; f = f.Prior {
		label := f.OptLabel
		if label == "" {
			label = "<anonymous>"
		}
		out = append(out, FrameSnapshot{
			Label:        label,
			ExprIndex:    f.ExprIndex,
			Param:        f.Param,
			Flags:        f.Flags,
			HasParamlist: f.OriginalParamlist.Valid(),
		})
	}
	return out
}

// DumpCell renders a one-line best-effort description of c, used when a
// panic's proximate cause is a specific cell rather than a whole frame.
func DumpCell(c *cell.Cell) string {
	if c == nil {
		return "<nil cell>"
	}
	if c.IsEnd() {
		return "<end>"
	}
	return fmt.Sprintf("kind=%s quote=%d", c.Kind(), c.QuoteDepth())
}

// Recover builds a Report from a just-recovered panic value and the
// innermost live frame. corevm.Engine calls this from a deferred recover()
// in the run helper behind Do and DoVariadic, never deeper in the call
// chain, so exactly one report is produced per escaping panic.
func Recover(recovered any, fr *frame.Frame) *Report {
	return &Report{
		Recovered: recovered,
		Frames:    DumpFrames(fr),
	}
}

// String renders the report as a multi-line human-readable dump,
// innermost frame first.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "internal error: %v\n", r.Recovered)
	for i, f := range r.Frames {
		fmt.Fprintf(&b, "  #%d %s expr=%d param=%d flags=%#x paramlist=%v\n",
			i, f.Label, f.ExprIndex, f.Param, f.Flags, f.HasParamlist)
	}
	if len(r.Frames) == 0 {
		b.WriteString("  (no active frames)\n")
	}
	return b.String()
}
