package action

import (
	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/feed"
	"github.com/relang/corevm/core/frame"
	"github.com/relang/corevm/core/kind"
	"github.com/relang/corevm/core/noderef"
)

// EvalStep runs one full evaluator step, writing its result into
// sub.Out and advancing sub.Feed. core/eval supplies this; core/action
// never imports core/eval directly (see doc.go).
type EvalStep func(sub *frame.Frame) error

// Call is the fulfilled-argument view a native Dispatch function receives.
type Call struct {
	Frame *frame.Frame
	Arena *arena.Arena
}

// Arg returns the value bound to sym in the callee's varlist.
func (c *Call) Arg(sym bind.Symbol) (*cell.Cell, error) {
	return c.Frame.Varlist.Get(sym)
}

// Out returns the cell Dispatch must write its result into.
func (c *Call) Out() *cell.Cell { return c.Frame.Out }

// Fulfiller drives Action Dispatch: pushing a callee frame, fulfilling its
// parameters, running Dispatch, and popping the frame (spec §4.I
// Push_Action / fulfillment loop / Drop_Action).
type Fulfiller struct {
	Registry *Registry
	Eval     EvalStep
}

// NewFulfiller creates a Fulfiller. eval may be nil; every evaluating
// parameter then takes the next feed value literally instead of recursing
// into the evaluator.
func NewFulfiller(reg *Registry, eval EvalStep) *Fulfiller {
	return &Fulfiller{Registry: reg, Eval: eval}
}

// Dispatch resolves ref to an Action, pushes a callee frame bound to out,
// fulfills every parameter by pulling from fd (honoring each parameter's
// quoting class and, for refinements named in requested, the deferred
// pickup phase), then invokes the Action's native body. requested is the
// ordered set of refinement symbols a path step named (spec §4.J
// push_path_refines); pass nil for a plain (non-path) call.
func (f *Fulfiller) Dispatch(a *arena.Arena, ref noderef.Ref, fd *feed.Feed, sp bind.Specifier, out *cell.Cell, requested []bind.Symbol) error {
	return f.dispatchCore(a, ref, fd, sp, out, requested, nil)
}

// DispatchEnfix is Dispatch's enfix counterpart: left seeds the action's
// first input-consuming parameter directly instead of being pulled from
// fd (spec §4.G LOOKAHEAD: "out becomes the left argument").
func (f *Fulfiller) DispatchEnfix(a *arena.Arena, ref noderef.Ref, fd *feed.Feed, sp bind.Specifier, out *cell.Cell, requested []bind.Symbol, left cell.Cell) error {
	return f.dispatchCore(a, ref, fd, sp, out, requested, &left)
}

func (f *Fulfiller) dispatchCore(a *arena.Arena, ref noderef.Ref, fd *feed.Feed, sp bind.Specifier, out *cell.Cell, requested []bind.Symbol, left *cell.Cell) error {
	act, ok := f.Registry.Get(ref)
	if !ok {
		return ErrUnknownAction
	}

	declared := make(map[bind.Symbol]bool, len(act.Params))
	for _, p := range act.Params {
		if p.Refinement {
			declared[p.Sym] = true
		}
	}
	requestedSet := make(map[bind.Symbol]bool, len(requested))
	for _, s := range requested {
		if !declared[s] {
			return ErrUnknownRefinement
		}
		requestedSet[s] = true
	}

	varlist := bind.NewContext(a, len(act.Params))
	fieldIdx := make([]int, len(act.Params))
	for i, p := range act.Params {
		idx, err := varlist.AddField(p.Sym)
		if err != nil {
			return err
		}
		fieldIdx[i] = idx
	}

	sub := &frame.Frame{Out: out, Feed: fd, OriginalParamlist: ref, OptLabel: act.Name, Varlist: varlist}
	frame.Push(sub)
	defer frame.Pop(sub)

	var deferred []int
	refActive := false
	leftFilled := false
	for i, p := range act.Params {
		sub.Param = i + 1
		vc, err := varlist.Varlist.At(fieldIdx[i])
		if err != nil {
			return err
		}

		switch {
		case p.Refinement:
			present := requestedSet[p.Sym]
			refActive = present
			vc.SetLogic(present)
		case p.UnderRef:
			if refActive {
				deferred = append(deferred, i)
			} else {
				*vc = cell.Null()
			}
		case left != nil && !leftFilled && p.Class.consumesInput():
			*vc = left.Copy()
			leftFilled = true
		default:
			if err := f.fulfillOne(sub, p, vc); err != nil {
				return err
			}
		}
	}

	sub.SetFlag(frame.FlagDoingPickups)
	for _, i := range deferred {
		vc, err := varlist.Varlist.At(fieldIdx[i])
		if err != nil {
			return err
		}
		if err := f.fulfillOne(sub, act.Params[i], vc); err != nil {
			return err
		}
	}
	sub.ClearFlag(frame.FlagDoingPickups)

	return act.Dispatch(&Call{Frame: sub, Arena: a})
}

// fulfillOne fills dst according to p's parameter class, consuming from
// sub.Feed as needed.
func (f *Fulfiller) fulfillOne(sub *frame.Frame, p Param, dst *cell.Cell) error {
	switch p.Class {
	case ParamReturn, ParamLocal:
		*dst = cell.Blank()
		return nil

	case ParamHardQuote:
		if sub.Feed.AtEnd() {
			return ErrNotEnoughArgs
		}
		*dst = sub.Feed.FetchNext()
		return nil

	case ParamSoftQuote:
		if sub.Feed.AtEnd() {
			*dst = cell.Null()
			return nil
		}
		if sub.Feed.Value().Kind() == kind.KindGroup {
			return f.evalInto(sub, dst, false)
		}
		*dst = sub.Feed.FetchNext()
		return nil

	case ParamEndable, ParamSkippable:
		if sub.Feed.AtEnd() {
			*dst = cell.Null()
			return nil
		}
		return f.evalInto(sub, dst, false)

	case ParamTight:
		if sub.Feed.AtEnd() {
			return ErrNotEnoughArgs
		}
		return f.evalInto(sub, dst, true)

	default: // ParamNormal
		if sub.Feed.AtEnd() {
			return ErrNotEnoughArgs
		}
		return f.evalInto(sub, dst, false)
	}
}

// evalInto recursively invokes the evaluator core (via the injected
// EvalStep) on a child frame chained under sub, writing its result into
// dst. tight marks the child with FlagNoLookahead, so a `tight`
// parameter's sub-evaluation never consumes a trailing enfix action that
// belongs to the caller's own lookahead (spec §4.I). With no EvalStep
// configured, the raw next feed value is taken literally — sufficient for
// tests exercising only quote-class parameters.
func (f *Fulfiller) evalInto(sub *frame.Frame, dst *cell.Cell, tight bool) error {
	if f.Eval == nil {
		*dst = sub.Feed.FetchNext()
		return nil
	}
	child := &frame.Frame{Out: dst, Feed: sub.Feed}
	if tight {
		child.SetFlag(frame.FlagNoLookahead)
	}
	frame.Push(child)
	defer frame.Pop(child)
	return f.Eval(child)
}
