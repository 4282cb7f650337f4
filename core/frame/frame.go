package frame

import (
	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/feed"
	"github.com/relang/corevm/core/noderef"
)

// Flags track per-frame engine-private state.
type Flags uint32

const (
	// FlagRunningEnfix marks a frame currently dispatching an enfix
	// action (spec §4.G LOOKAHEAD: "running_enfix").
	FlagRunningEnfix Flags = 1 << iota
	// FlagDoingPickups marks the refinement pickup phase, which extends
	// GC protection across all argument slots (spec §4.I).
	FlagDoingPickups
	// FlagPathMode marks a frame evaluating a path rather than a plain
	// expression (spec §4.J).
	FlagPathMode
	// FlagNoPathGroups suppresses group evaluation inside path steps
	// (spec §4.J "no_path_groups").
	FlagNoPathGroups
	// FlagPushPathRefines causes encountered refinement words to push a
	// refinement record on the data stack instead of being consumed
	// immediately (spec §4.J "push_path_refines").
	FlagPushPathRefines
	// FlagPreserveStale suppresses the FINISH-state clearing of the
	// stale mark on Out (spec §4.G FINISH).
	FlagPreserveStale
	// FlagToEnd requests Run rather than a single Step (spec §4.G).
	FlagToEnd
	// FlagBarrierHit is the sticky marker set by an expression barrier
	// mid-argument-gathering (spec §4.G "Expression barrier").
	FlagBarrierHit
	// FlagNoLookahead marks a sub-frame fulfilling a `tight` parameter:
	// its Step must not run the LOOKAHEAD phase, so a trailing enfix
	// action is left for the *caller's* lookahead instead of being
	// consumed here (spec §4.I "tight: ... so no enfix consumes beyond
	// this arg").
	FlagNoLookahead
)

// Frame packs the per-call state spec §4.F enumerates.
type Frame struct {
	Out   *cell.Cell
	Feed  *feed.Feed
	Prior *Frame

	DSPOrig   int // data-stack mark at entry
	ExprIndex int // feed index at the start of the current expression

	// OriginalParamlist names the archetype action being invoked, or
	// noderef.Nil if this frame is not dispatching an action. Kept as a
	// raw node reference (rather than a typed *action.Action) so this
	// package never needs to import core/action, which itself imports
	// frame — core/action owns interpreting the reference.
	OriginalParamlist noderef.Ref
	OptLabel          string

	Varlist bind.Context // frame-style context holding the archetype + args
	Rootvar *cell.Cell   // cached varlist[0]

	Param   int // current parameter index (1-based, into Varlist keylist)
	Arg     *cell.Cell
	Special int // specialization source index, -1 if unspecialized

	Requotes uint8 // pending quote level to reapply to the result

	Flags Flags
	Spare cell.Cell // GC-safe scratch cell for in-progress work
}

// topFrame is the innermost frame on the global frame stack.
var topFrame *Frame

// Top returns the innermost currently-pushed frame, or nil if none.
func Top() *Frame { return topFrame }

// Push links fr under the current top frame and makes it the new top. fr's
// Spare is reset to an "unreadable blank" per spec §4.F ("spare must be
// prepared to a safe unreadable blank on push").
func Push(fr *Frame) {
	fr.Prior = topFrame
	fr.Spare = cell.Blank()
	topFrame = fr
}

// Pop restores the previous top frame. It is a programmer error to call
// Pop when fr is not the current top; callers always push/pop in strict
// LIFO order via defer.
func Pop(fr *Frame) {
	if topFrame == fr {
		topFrame = fr.Prior
	}
}

// HasFlag reports whether all bits in want are set.
func (fr *Frame) HasFlag(want Flags) bool { return fr.Flags&want == want }

// SetFlag sets flag bits.
func (fr *Frame) SetFlag(set Flags) { fr.Flags |= set }

// ClearFlag clears flag bits.
func (fr *Frame) ClearFlag(clear Flags) { fr.Flags &^= clear }

// Depth returns the number of frames between fr and the outermost frame,
// inclusive — used by diagnostics and by invariants checks.
func (fr *Frame) Depth() int {
	n := 0
	for f := fr; f != nil; f = f.Prior {
		n++
	}
	return n
}
