package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/corevm/core/action"
	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/feed"
	"github.com/relang/corevm/core/series"
)

func intFeed(t *testing.T, a *arena.Arena, vals ...int64) *feed.Feed {
	t.Helper()
	s := series.Make(a, len(vals), 0, 0)
	_, err := s.ExpandTail(len(vals))
	require.NoError(t, err)
	for i, v := range vals {
		c, err := s.At(i)
		require.NoError(t, err)
		c.SetInt64(v)
	}
	return feed.NewArray(s, 0, bind.Unbound)
}

func TestDispatch_SimpleTwoArgAdd(t *testing.T) {
	a := arena.New()
	reg := action.NewRegistry()
	binder := bind.NewTable()

	symA := binder.Intern("a")
	symB := binder.Intern("b")

	add := &action.Action{
		Name: "add",
		Params: []action.Param{
			{Sym: symA, Class: action.ParamNormal},
			{Sym: symB, Class: action.ParamNormal},
		},
		Dispatch: func(c *action.Call) error {
			av, err := c.Arg(symA)
			require.NoError(t, err)
			bv, err := c.Arg(symB)
			require.NoError(t, err)
			c.Out().SetInt64(av.Int64() + bv.Int64())
			return nil
		},
	}
	ref := reg.Define(add)

	f := intFeed(t, a, 3, 4)
	ful := action.NewFulfiller(reg, nil)

	var out cell.Cell
	err := ful.Dispatch(a, ref, f, bind.Unbound, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.Int64())
}

func TestDispatch_NotEnoughArgs(t *testing.T) {
	a := arena.New()
	reg := action.NewRegistry()
	binder := bind.NewTable()
	symA := binder.Intern("a")

	act := &action.Action{
		Name:   "needs-one",
		Params: []action.Param{{Sym: symA, Class: action.ParamNormal}},
		Dispatch: func(c *action.Call) error {
			return nil
		},
	}
	ref := reg.Define(act)

	f := intFeed(t, a) // empty
	ful := action.NewFulfiller(reg, nil)

	var out cell.Cell
	err := ful.Dispatch(a, ref, f, bind.Unbound, &out, nil)
	assert.ErrorIs(t, err, action.ErrNotEnoughArgs)
}

func TestDispatch_HardQuoteTakesLiteral(t *testing.T) {
	a := arena.New()
	reg := action.NewRegistry()
	binder := bind.NewTable()
	symX := binder.Intern("x")

	act := &action.Action{
		Name:   "quoted",
		Params: []action.Param{{Sym: symX, Class: action.ParamHardQuote}},
		Dispatch: func(c *action.Call) error {
			v, err := c.Arg(symX)
			require.NoError(t, err)
			*c.Out() = *v
			return nil
		},
	}
	ref := reg.Define(act)

	f := intFeed(t, a, 99)
	ful := action.NewFulfiller(reg, nil)

	var out cell.Cell
	err := ful.Dispatch(a, ref, f, bind.Unbound, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(99), out.Int64())
}

func TestDispatch_RefinementPickupsRunInParamlistOrder(t *testing.T) {
	a := arena.New()
	reg := action.NewRegistry()
	binder := bind.NewTable()

	symValue := binder.Intern("value")
	symRef1 := binder.Intern("ref1")
	symA := binder.Intern("a")
	symRef2 := binder.Intern("ref2")
	symB := binder.Intern("b")

	act := &action.Action{
		Name: "foo",
		Params: []action.Param{
			{Sym: symValue, Class: action.ParamNormal},
			{Sym: symRef1, Refinement: true},
			{Sym: symA, Class: action.ParamNormal, UnderRef: true},
			{Sym: symRef2, Refinement: true},
			{Sym: symB, Class: action.ParamNormal, UnderRef: true},
		},
		Dispatch: func(c *action.Call) error {
			value, _ := c.Arg(symValue)
			ref1, _ := c.Arg(symRef1)
			argA, _ := c.Arg(symA)
			ref2, _ := c.Arg(symRef2)
			argB, _ := c.Arg(symB)

			sum := value.Int64()
			if ref1.Logic() {
				sum += argA.Int64()
			}
			if ref2.Logic() {
				sum += argB.Int64()
			}
			c.Out().SetInt64(sum)
			return nil
		},
	}
	ref := reg.Define(act)

	// Call site named refinements out of paramlist order (/ref2 /ref1);
	// the args themselves still arrive after the main arg, and Dispatch's
	// pickup phase must pull them in PARAMLIST order (a, then b) rather
	// than requested order.
	f := intFeed(t, a, 10, 1, 2) // value=10, a=1, b=2
	ful := action.NewFulfiller(reg, nil)

	var out cell.Cell
	err := ful.Dispatch(a, ref, f, bind.Unbound, &out, []bind.Symbol{symRef2, symRef1})
	require.NoError(t, err)
	assert.Equal(t, int64(13), out.Int64())
}

func TestDispatch_UnrequestedRefinementArgIsNull(t *testing.T) {
	a := arena.New()
	reg := action.NewRegistry()
	binder := bind.NewTable()

	symValue := binder.Intern("value")
	symRef1 := binder.Intern("ref1")
	symA := binder.Intern("a")

	var sawNull bool
	act := &action.Action{
		Name: "maybe",
		Params: []action.Param{
			{Sym: symValue, Class: action.ParamNormal},
			{Sym: symRef1, Refinement: true},
			{Sym: symA, Class: action.ParamNormal, UnderRef: true},
		},
		Dispatch: func(c *action.Call) error {
			argA, _ := c.Arg(symA)
			sawNull = argA.IsNull()
			c.Out().SetInt64(1)
			return nil
		},
	}
	ref := reg.Define(act)

	f := intFeed(t, a, 5)
	ful := action.NewFulfiller(reg, nil)

	var out cell.Cell
	err := ful.Dispatch(a, ref, f, bind.Unbound, &out, nil)
	require.NoError(t, err)
	assert.True(t, sawNull)
}

func TestDispatch_UnknownRefinement(t *testing.T) {
	a := arena.New()
	reg := action.NewRegistry()
	binder := bind.NewTable()
	symValue := binder.Intern("value")

	act := &action.Action{
		Name:     "plain",
		Params:   []action.Param{{Sym: symValue, Class: action.ParamNormal}},
		Dispatch: func(c *action.Call) error { return nil },
	}
	ref := reg.Define(act)

	f := intFeed(t, a, 1)
	ful := action.NewFulfiller(reg, nil)

	var out cell.Cell
	err := ful.Dispatch(a, ref, f, bind.Unbound, &out, []bind.Symbol{binder.Intern("nope")})
	assert.ErrorIs(t, err, action.ErrUnknownRefinement)
}

func TestDispatch_UnknownAction(t *testing.T) {
	a := arena.New()
	reg := action.NewRegistry()
	f := intFeed(t, a)
	ful := action.NewFulfiller(reg, nil)
	var out cell.Cell
	err := ful.Dispatch(a, 999, f, bind.Unbound, &out, nil)
	assert.ErrorIs(t, err, action.ErrUnknownAction)
}
