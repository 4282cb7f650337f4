package eval

import (
	"context"
	"errors"
	"fmt"

	"github.com/relang/corevm/core/action"
	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/feed"
	"github.com/relang/corevm/core/frame"
	"github.com/relang/corevm/core/kind"
	"github.com/relang/corevm/core/limits"
	"github.com/relang/corevm/core/noderef"
	"github.com/relang/corevm/core/series"
	"github.com/relang/corevm/core/signals"
)

// Sentinel errors for the failure modes spec §4.G names explicitly.
var (
	// ErrExpressionBarrier indicates an enfix-marked word was reached at
	// the very start of an expression, with no left argument pending
	// (spec §4.G LOOKAHEAD_START, word case).
	ErrExpressionBarrier = errors.New("eval: enfix action at expression start (expression barrier)")
	// ErrNoLeftArgument indicates a bare enfix action value was reached
	// directly (not through a word), which can never have a left
	// argument (spec §4.G LOOKAHEAD_START, "action literal" case).
	ErrNoLeftArgument = errors.New("eval: enfix action has no left argument")
	// ErrEmptySetWord indicates a set-word was the final token of its
	// feed, leaving no expression to evaluate and assign.
	ErrEmptySetWord = errors.New("eval: set-word with no following expression")
	// ErrHalted indicates a cooperative-cancellation Halt signal was
	// observed at a safe point.
	ErrHalted = errors.New("eval: halted")
)

// Engine owns everything a Step needs to drive the Evaluator Core:
// the arena backing every series/context the feed touches, the action
// registry Dispatch resolves against, and the optional recursion guard
// and cancellation bitset consulted at each safe point.
type Engine struct {
	Arena    *arena.Arena
	Registry *action.Registry
	Limits   *limits.Guard
	Signals  *signals.Set
}

// New creates an Engine. Limits and Signals may be left nil to disable
// recursion guarding and cooperative cancellation respectively (only
// appropriate for tests exercising a handful of expressions).
func New(a *arena.Arena, reg *action.Registry) *Engine {
	return &Engine{Arena: a, Registry: reg}
}

// Fulfiller returns a Fulfiller wired to recurse back into this Engine's
// own Step — the injection this package's doc comment describes, closing
// the Core<->Dispatch loop without core/action importing core/eval.
func (e *Engine) Fulfiller() *action.Fulfiller {
	return action.NewFulfiller(e.Registry, e.Step)
}

// Run drives fr.Feed to its end, running one expression after another
// (spec §4.G: "run-to-end" as well as one-step). The final expression's
// result remains in fr.Out (spec's "single, resumable state machine...
// drives both... with one-token lookahead").
func (e *Engine) Run(ctx context.Context, fr *frame.Frame) error {
	for !fr.Feed.AtEnd() {
		if e.Signals != nil {
			e.Signals.FromContext(ctx)
			if e.Signals.Has(signals.Halt) {
				return ErrHalted
			}
		}
		if err := e.Step(fr); err != nil {
			return err
		}
	}
	return nil
}

// Step runs exactly one LOOKAHEAD_START / DISPATCH / LOOKAHEAD / FINISH
// cycle (spec §4.G): it produces one expression's value into fr.Out,
// skipping over (but not losing the stale marking of) any leading
// invisible actions, then performs one-step enfix lookahead before
// returning. An invisible action after the expression is left in the feed
// for the next Step.
func (e *Engine) Step(fr *frame.Frame) error {
	if e.Signals != nil && e.Signals.Has(signals.Halt) {
		return ErrHalted
	}
	if e.Limits != nil {
		if err := e.Limits.EnterEval(); err != nil {
			return err
		}
		defer e.Limits.LeaveEval()
	}

	fd := fr.Feed
	processedInvisible := false

	// LOOKAHEAD_START, looping past any leading invisibles.
	for {
		if fd.AtEnd() {
			if !processedInvisible {
				*fr.Out = cell.End()
			}
			return nil
		}

		val := fd.Value()
		invisible, err := e.step1(fr, fd, val)
		if err != nil {
			return err
		}
		if invisible {
			processedInvisible = true
			continue
		}
		break
	}

	// LOOKAHEAD: one-token enfix peek, possibly chaining. A `tight`
	// parameter's sub-frame carries FlagNoLookahead so it stops here,
	// leaving any trailing enfix action for the caller's own lookahead
	// (spec §4.I).
	for !fr.HasFlag(frame.FlagNoLookahead) && !fd.AtEnd() {
		pend := fd.Value()
		if pend.Kind() != kind.KindWord {
			break
		}
		resolved, err := bind.Resolve(e.Arena, &pend, fd.Specifier())
		if err != nil {
			// An unresolved word ahead is not this step's problem; it
			// is left for the next Step call to fail on.
			break
		}
		if resolved.Kind() != kind.KindAction {
			break
		}
		act, ref, ok := e.actionFor(*resolved)
		if !ok || !act.Enfix {
			break
		}

		fd.FetchNext() // consume the enfix word
		fr.SetFlag(frame.FlagRunningEnfix)
		err = e.dispatchEnfix(fr, fd, act, ref, nil)
		fr.ClearFlag(frame.FlagRunningEnfix)
		if err != nil {
			return err
		}
		if act.Invisible {
			// An invisible cannot consume a left argument in practice
			// (spec §4.G: "invisibles are forbidden from being
			// enfix-left-consumers"); treated defensively as a no-op
			// continuation rather than a panic.
			continue
		}
	}

	// FINISH
	if !fr.HasFlag(frame.FlagPreserveStale) {
		fr.Out.ClearFlag(cell.FlagOutMarkedStale)
	}
	if fr.Requotes > 0 {
		if !fr.Out.IsNull() {
			*fr.Out = fr.Out.Requote(fr.Requotes)
		}
		fr.Requotes = 0
	}
	return nil
}

// step1 runs the LOOKAHEAD_START dispatch for one non-invisible-skipping
// value and reports whether it turned out to be an invisible action
// (meaning the caller should loop rather than proceed to LOOKAHEAD).
func (e *Engine) step1(fr *frame.Frame, fd *feed.Feed, val cell.Cell) (invisible bool, err error) {
	switch {
	case val.Kind().IsInert():
		prior := fd.FetchNext()
		cp := prior.Copy()
		cp.SetFlag(cell.FlagUnevaluated)
		*fr.Out = cp
		return false, nil

	case val.Kind() == kind.KindWord:
		resolved, rerr := bind.Resolve(e.Arena, &val, fd.Specifier())
		if rerr != nil {
			return false, rerr
		}
		if resolved.Kind() == kind.KindAction {
			act, ref, ok := e.actionFor(*resolved)
			if !ok {
				return false, action.ErrUnknownAction
			}
			if act.Enfix {
				return false, ErrExpressionBarrier
			}
			fd.FetchNext()
			if derr := e.dispatchAction(fr, fd, act, ref, nil); derr != nil {
				return false, derr
			}
			return act.Invisible, nil
		}
		fd.FetchNext()
		*fr.Out = resolved.Copy()
		return false, nil

	case val.Kind() == kind.KindGetWord:
		resolved, rerr := bind.Resolve(e.Arena, &val, fd.Specifier())
		if rerr != nil {
			return false, rerr
		}
		fd.FetchNext()
		*fr.Out = resolved.Copy()
		return false, nil

	case val.Kind() == kind.KindSetWord:
		wordCell := val
		fd.FetchNext()
		if fd.AtEnd() {
			return false, ErrEmptySetWord
		}
		sub := &frame.Frame{Out: fr.Out, Feed: fd}
		frame.Push(sub)
		serr := e.Step(sub)
		frame.Pop(sub)
		if serr != nil {
			return false, serr
		}
		target, terr := bind.Resolve(e.Arena, &wordCell, fd.Specifier())
		if terr != nil {
			return false, terr
		}
		*target = fr.Out.Copy()
		return false, nil

	case val.Kind() == kind.KindGroup:
		ref, ok := val.Node(0)
		if !ok {
			fd.FetchNext()
			*fr.Out = cell.Blank()
			return false, nil
		}
		arr := series.New(e.Arena, ref)
		inner := feed.NewArray(arr, 0, fd.Specifier())
		sub := &frame.Frame{Out: fr.Out, Feed: inner}
		frame.Push(sub)
		rerr := e.Run(context.Background(), sub)
		frame.Pop(sub)
		fd.FetchNext()
		if rerr != nil {
			return false, rerr
		}
		return false, nil

	case val.Kind() == kind.KindAction:
		act, ref, ok := e.actionFor(val)
		if !ok {
			return false, action.ErrUnknownAction
		}
		if act.Enfix {
			return false, ErrNoLeftArgument
		}
		fd.FetchNext()
		if derr := e.dispatchAction(fr, fd, act, ref, nil); derr != nil {
			return false, derr
		}
		return act.Invisible, nil

	case val.Kind() == kind.KindPath:
		return e.stepPath(fr, fd, val)

	case val.Kind() == kind.KindGetPath:
		v, perr := e.pickPath(fd, val)
		if perr != nil {
			return false, perr
		}
		fd.FetchNext()
		*fr.Out = v.Copy()
		return false, nil

	case val.Kind() == kind.KindSetPath:
		fd.FetchNext()
		if fd.AtEnd() {
			return false, ErrEmptySetWord
		}
		sub := &frame.Frame{Out: fr.Out, Feed: fd}
		frame.Push(sub)
		serr := e.Step(sub)
		frame.Pop(sub)
		if serr != nil {
			return false, serr
		}
		if perr := e.pokePath(fd, val, *fr.Out); perr != nil {
			return false, perr
		}
		return false, nil

	default:
		prior := fd.FetchNext()
		*fr.Out = prior.Copy()
		return false, nil
	}
}

// stepPath implements the path-dispatch branch of LOOKAHEAD_START (spec
// §4.G: "If path: path dispatch... Result may be an action to DISPATCH, a
// fetched value, or a trigger for set-path").
func (e *Engine) stepPath(fr *frame.Frame, fd *feed.Feed, val cell.Cell) (invisible bool, err error) {
	pathRef, ok := val.Node(0)
	if !ok {
		return false, action.ErrNotPickable
	}
	arr := series.New(e.Arena, pathRef)
	head, herr := arr.At(0)
	if herr != nil {
		return false, herr
	}
	resolved, rerr := bind.Resolve(e.Arena, head, fd.Specifier())
	if rerr != nil {
		return false, rerr
	}

	if resolved.Kind() == kind.KindAction {
		act, ref, ok := e.actionFor(*resolved)
		if !ok {
			return false, action.ErrUnknownAction
		}
		_, refinements, cerr := action.CollectRefinements(e.Arena, val, fr.HasFlag(frame.FlagNoPathGroups))
		if cerr != nil {
			return false, cerr
		}
		fd.FetchNext()
		if derr := e.dispatchAction(fr, fd, act, ref, refinements); derr != nil {
			return false, derr
		}
		return act.Invisible, nil
	}

	v := *resolved
	for i := 1; i < arr.Len(); i++ {
		step, serr := arr.At(i)
		if serr != nil {
			return false, serr
		}
		v, err = action.Pick(e.Arena, v, *step)
		if err != nil {
			return false, err
		}
	}
	fd.FetchNext()
	*fr.Out = v.Copy()
	return false, nil
}

// pickPath walks a get-path's steps without ever invoking an action
// (spec §4.G's get-word treatment, extended to paths).
func (e *Engine) pickPath(fd *feed.Feed, val cell.Cell) (cell.Cell, error) {
	ref, ok := val.Node(0)
	if !ok {
		return cell.Cell{}, action.ErrNotPickable
	}
	arr := series.New(e.Arena, ref)
	head, err := arr.At(0)
	if err != nil {
		return cell.Cell{}, err
	}
	v, err := bind.Resolve(e.Arena, head, fd.Specifier())
	if err != nil {
		return cell.Cell{}, err
	}
	out := *v
	for i := 1; i < arr.Len(); i++ {
		step, serr := arr.At(i)
		if serr != nil {
			return cell.Cell{}, serr
		}
		out, err = action.Pick(e.Arena, out, *step)
		if err != nil {
			return cell.Cell{}, err
		}
	}
	return out, nil
}

// pokePath walks a set-path down to its final step and Pokes value there.
func (e *Engine) pokePath(fd *feed.Feed, val cell.Cell, value cell.Cell) error {
	ref, ok := val.Node(0)
	if !ok {
		return action.ErrNotPickable
	}
	arr := series.New(e.Arena, ref)
	if arr.Len() < 2 {
		return fmt.Errorf("eval: set-path needs at least one selector step")
	}
	head, err := arr.At(0)
	if err != nil {
		return err
	}
	target, err := bind.Resolve(e.Arena, head, fd.Specifier())
	if err != nil {
		return err
	}
	cur := *target
	for i := 1; i < arr.Len()-1; i++ {
		step, serr := arr.At(i)
		if serr != nil {
			return serr
		}
		cur, err = action.Pick(e.Arena, cur, *step)
		if err != nil {
			return err
		}
	}
	last, err := arr.At(arr.Len() - 1)
	if err != nil {
		return err
	}
	return action.Poke(e.Arena, cur, *last, value)
}

// actionFor resolves an action!-kind cell back to its Registry entry.
func (e *Engine) actionFor(c cell.Cell) (*action.Action, noderef.Ref, bool) {
	ref, ok := c.Node(0)
	if !ok {
		return nil, noderef.Nil, false
	}
	act, ok := e.Registry.Get(ref)
	return act, ref, ok
}

// dispatchAction runs act, routing its result to a scratch cell (never
// fr.Out) when the action is invisible.
func (e *Engine) dispatchAction(fr *frame.Frame, fd *feed.Feed, act *action.Action, ref noderef.Ref, requested []bind.Symbol) error {
	ful := e.Fulfiller()
	dst := fr.Out
	if act.Invisible {
		dst = &fr.Spare
	}
	if err := ful.Dispatch(e.Arena, ref, fd, fd.Specifier(), dst, requested); err != nil {
		return err
	}
	if act.Invisible {
		fr.Out.SetFlag(cell.FlagOutMarkedStale)
	}
	return nil
}

// dispatchEnfix runs act with fr.Out pre-seeded as its left argument
// (spec §4.G LOOKAHEAD).
func (e *Engine) dispatchEnfix(fr *frame.Frame, fd *feed.Feed, act *action.Action, ref noderef.Ref, requested []bind.Symbol) error {
	ful := e.Fulfiller()
	left := *fr.Out
	dst := fr.Out
	if act.Invisible {
		dst = &fr.Spare
	}
	if err := ful.DispatchEnfix(e.Arena, ref, fd, fd.Specifier(), dst, requested, left); err != nil {
		return err
	}
	if act.Invisible {
		fr.Out.SetFlag(cell.FlagOutMarkedStale)
	}
	return nil
}
