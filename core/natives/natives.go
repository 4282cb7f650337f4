package natives

import (
	"context"
	"errors"
	"fmt"

	"github.com/relang/corevm/core/action"
	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/eval"
	"github.com/relang/corevm/core/feed"
	"github.com/relang/corevm/core/frame"
	"github.com/relang/corevm/core/kind"
	"github.com/relang/corevm/core/series"
)

// ErrNotABlock indicates a native that requires a block! argument (if's
// branch, append's target) received something else.
var ErrNotABlock = errors.New("natives: expected a block!")

// ErrDanglingElse indicates an `else` keyword with nothing following it.
var ErrDanglingElse = errors.New("natives: else with no branch")

// bind1 interns name in tab and registers act into ctx under that name.
func bind1(a *arena.Arena, reg *action.Registry, tab *bind.Table, ctx bind.Context, name string, act *action.Action) error {
	ref := reg.Define(act)
	sym := tab.Intern(name)
	idx, err := ctx.AddField(sym)
	if err != nil {
		return err
	}
	fv, err := ctx.Varlist.At(idx)
	if err != nil {
		return err
	}
	fv.Header.Kind = kind.KindAction
	fv.SetNode(0, ref)
	return nil
}

// bindLogic interns name and registers it as a constant logic value.
func bindLogic(tab *bind.Table, ctx bind.Context, name string, v bool) error {
	sym := tab.Intern(name)
	idx, err := ctx.AddField(sym)
	if err != nil {
		return err
	}
	fv, err := ctx.Varlist.At(idx)
	if err != nil {
		return err
	}
	fv.SetLogic(v)
	return nil
}

// Register defines every native action and binds each (plus the true/false
// constants) as a field of ctx, the way a root/lib context supplies every
// word a freshly scanned program can resolve without further setup.
// e is the Evaluator Core natives like `if` recurse back into to run a
// chosen branch block.
func Register(a *arena.Arena, reg *action.Registry, tab *bind.Table, e *eval.Engine, ctx bind.Context) error {
	if err := bindLogic(tab, ctx, "true", true); err != nil {
		return err
	}
	if err := bindLogic(tab, ctx, "false", false); err != nil {
		return err
	}

	if err := registerArith(a, reg, tab, ctx, "+", func(l, r int64) int64 { return l + r }); err != nil {
		return err
	}
	if err := registerArith(a, reg, tab, ctx, "*", func(l, r int64) int64 { return l * r }); err != nil {
		return err
	}
	if err := registerComment(a, reg, tab, ctx); err != nil {
		return err
	}
	if err := registerAppend(a, reg, tab, ctx); err != nil {
		return err
	}
	if err := registerIf(a, reg, tab, e, ctx); err != nil {
		return err
	}
	return nil
}

// registerArith defines an enfix, tight-right binary integer op: both `+`
// and `*` are tight on both sides (spec §8 scenario 1: "both tight,
// left-to-right"), so `1 + 2 * 3` groups as `(1 + 2) * 3` rather than
// `1 + (2 * 3)`.
func registerArith(a *arena.Arena, reg *action.Registry, tab *bind.Table, ctx bind.Context, name string, op func(l, r int64) int64) error {
	symLeft := tab.Intern(name + "-left")
	symRight := tab.Intern(name + "-right")

	act := &action.Action{
		Name:  name,
		Enfix: true,
		Params: []action.Param{
			{Sym: symLeft, Class: action.ParamTight},
			{Sym: symRight, Class: action.ParamTight},
		},
		Dispatch: func(c *action.Call) error {
			l, err := c.Arg(symLeft)
			if err != nil {
				return err
			}
			r, err := c.Arg(symRight)
			if err != nil {
				return err
			}
			c.Out().SetInt64(op(l.Int64(), r.Int64()))
			return nil
		},
	}
	return bind1(a, reg, tab, ctx, name, act)
}

// registerComment defines an invisible action: it hard-quotes (takes
// literally, never evaluates) the following value and never touches its
// output cell (spec §8 scenario 3, §4.G "Invisibles").
func registerComment(a *arena.Arena, reg *action.Registry, tab *bind.Table, ctx bind.Context) error {
	symText := tab.Intern("comment-text")
	act := &action.Action{
		Name:      "comment",
		Invisible: true,
		Params:    []action.Param{{Sym: symText, Class: action.ParamHardQuote}},
		Dispatch: func(c *action.Call) error {
			return nil
		},
	}
	return bind1(a, reg, tab, ctx, "comment", act)
}

// registerAppend defines the mutating series op (spec §8 scenario 6):
// growing a frozen target's series surfaces series.ErrFrozen through
// ExpandTail unchanged, giving append's caller the same "access error of
// kind frozen" any other series mutation would.
func registerAppend(a *arena.Arena, reg *action.Registry, tab *bind.Table, ctx bind.Context) error {
	symTarget := tab.Intern("append-target")
	symValue := tab.Intern("append-value")

	act := &action.Action{
		Name: "append",
		Params: []action.Param{
			{Sym: symTarget, Class: action.ParamNormal},
			{Sym: symValue, Class: action.ParamNormal},
		},
		Dispatch: func(c *action.Call) error {
			target, err := c.Arg(symTarget)
			if err != nil {
				return err
			}
			value, err := c.Arg(symValue)
			if err != nil {
				return err
			}
			if target.Kind() != kind.KindBlock {
				return ErrNotABlock
			}
			ref, ok := target.Node(0)
			if !ok {
				return fmt.Errorf("natives: append target has no backing series")
			}
			arr := series.New(a, ref)
			idx, err := arr.ExpandTail(1)
			if err != nil {
				return err
			}
			dst, err := arr.At(idx)
			if err != nil {
				return err
			}
			*dst = value.Copy()
			if err := arr.Term(); err != nil {
				return err
			}
			*c.Out() = *target
			return nil
		},
	}
	return bind1(a, reg, tab, ctx, "append", act)
}

// registerIf defines `if cond branch [else branch2]` by manually driving
// the call frame's feed past an optional bare `else` keyword, rather than
// relying on the general deferred-enfix machinery: spec §9's open
// questions flag `post_switch` semantics for this exact shape as
// ambiguous in the source and direct the implementer to "define this from
// the observable laws" (spec §8 scenario 2) instead of mimicking the
// original branching. Hard-quoting both branch blocks means neither one's
// fulfillment can be swallowed by a stray trailing enfix action the way a
// normally-evaluated argument could.
func registerIf(a *arena.Arena, reg *action.Registry, tab *bind.Table, e *eval.Engine, ctx bind.Context) error {
	symCond := tab.Intern("if-cond")
	symBranch := tab.Intern("if-branch")
	elseSym := tab.Intern("else")

	act := &action.Action{
		Name: "if",
		Params: []action.Param{
			{Sym: symCond, Class: action.ParamNormal},
			{Sym: symBranch, Class: action.ParamHardQuote},
		},
		Dispatch: func(c *action.Call) error {
			cond, err := c.Arg(symCond)
			if err != nil {
				return err
			}
			branch1, err := c.Arg(symBranch)
			if err != nil {
				return err
			}

			fd := c.Frame.Feed
			var branch2 *cell.Cell
			if !fd.AtEnd() {
				pend := fd.Value()
				if pend.Kind() == kind.KindWord && bind.Symbol(pend.Payload[0]) == elseSym {
					fd.FetchNext() // consume else
					if fd.AtEnd() {
						return ErrDanglingElse
					}
					b2 := fd.FetchNext()
					branch2 = &b2
				}
			}

			var chosen *cell.Cell
			switch {
			case cond.Logic():
				chosen = branch1
			case branch2 != nil:
				chosen = branch2
			default:
				*c.Out() = cell.Null()
				return nil
			}
			if chosen.Kind() != kind.KindBlock {
				return ErrNotABlock
			}

			ref, ok := chosen.Node(0)
			if !ok {
				*c.Out() = cell.Blank()
				return nil
			}
			arr := series.New(a, ref)
			inner := feed.NewArray(arr, 0, fd.Specifier())
			sub := &frame.Frame{Out: c.Out(), Feed: inner}
			frame.Push(sub)
			defer frame.Pop(sub)
			return e.Run(context.Background(), sub)
		},
	}
	return bind1(a, reg, tab, ctx, "if", act)
}
