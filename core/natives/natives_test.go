package natives_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/corevm/core/action"
	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/eval"
	"github.com/relang/corevm/core/feed"
	"github.com/relang/corevm/core/frame"
	"github.com/relang/corevm/core/kind"
	"github.com/relang/corevm/core/natives"
	"github.com/relang/corevm/core/series"
)

type testEnv struct {
	a    *arena.Arena
	tab  *bind.Table
	ctx  bind.Context
	eng  *eval.Engine
	reg  *action.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	a := arena.New()
	tab := bind.NewTable()
	reg := action.NewRegistry()
	ctx := bind.NewContext(a, 0)
	require.NoError(t, ctx.LinkKeylist())
	eng := eval.New(a, reg)

	require.NoError(t, natives.Register(a, reg, tab, eng, ctx))
	return &testEnv{a: a, tab: tab, ctx: ctx, eng: eng, reg: reg}
}

func (env *testEnv) word(name string) cell.Cell {
	var c cell.Cell
	c.Header.Kind = kind.KindWord
	c.Payload[0] = uint64(env.tab.Intern(name))
	bind.BindSpecific(&c, env.ctx.Ref())
	return c
}

func intCell(v int64) cell.Cell {
	var c cell.Cell
	c.SetInt64(v)
	return c
}

func textCell(a *arena.Arena, s string) cell.Cell {
	buf := series.Make(a, len(s), 1, 0)
	_, _ = buf.ExpandTail(len(s))
	for i := 0; i < len(s); i++ {
		_ = buf.SetByteAt(i, s[i])
	}
	var c cell.Cell
	c.Header.Kind = kind.KindText
	c.SetNode(0, buf.Ref())
	return c
}

func blockCell(t *testing.T, a *arena.Arena, vals ...int64) (cell.Cell, series.Series) {
	t.Helper()
	s := series.Make(a, len(vals), 0, 0)
	_, err := s.ExpandTail(len(vals))
	require.NoError(t, err)
	for i, v := range vals {
		c, err := s.At(i)
		require.NoError(t, err)
		c.SetInt64(v)
	}
	var blk cell.Cell
	blk.Header.Kind = kind.KindBlock
	blk.SetNode(0, s.Ref())
	return blk, s
}

func runFeed(t *testing.T, env *testEnv, cells ...cell.Cell) cell.Cell {
	t.Helper()
	s := series.Make(env.a, len(cells), 0, 0)
	_, err := s.ExpandTail(len(cells))
	require.NoError(t, err)
	for i, c := range cells {
		dst, err := s.At(i)
		require.NoError(t, err)
		*dst = c
	}
	fd := feed.NewArray(s, 0, bind.Unbound)
	var out cell.Cell
	fr := &frame.Frame{Out: &out, Feed: fd}
	require.NoError(t, env.eng.Step(fr))
	return out
}

func TestArith_BothTightLeftToRight(t *testing.T) {
	env := newTestEnv(t)
	out := runFeed(t, env, intCell(1), env.word("+"), intCell(2), env.word("*"), intCell(3))
	assert.Equal(t, int64(9), out.Int64())
}

func TestIf_TrueBranch(t *testing.T) {
	env := newTestEnv(t)
	b1, _ := blockCell(t, env.a, 10)
	b2, _ := blockCell(t, env.a, 20)
	out := runFeed(t, env, env.word("if"), env.word("true"), b1, env.word("else"), b2)
	assert.Equal(t, int64(10), out.Int64())
}

func TestIf_FalseBranchTakesElse(t *testing.T) {
	env := newTestEnv(t)
	b1, _ := blockCell(t, env.a, 10)
	b2, _ := blockCell(t, env.a, 20)
	out := runFeed(t, env, env.word("if"), env.word("false"), b1, env.word("else"), b2)
	assert.Equal(t, int64(20), out.Int64())
}

func TestComment_InvisibleThenTightAdd(t *testing.T) {
	env := newTestEnv(t)
	s := series.Make(env.a, 5, 0, 0)
	_, err := s.ExpandTail(5)
	require.NoError(t, err)
	cells := []cell.Cell{env.word("comment"), textCell(env.a, "x"), intCell(1), env.word("+"), intCell(2)}
	for i, c := range cells {
		dst, err := s.At(i)
		require.NoError(t, err)
		*dst = c
	}
	fd := feed.NewArray(s, 0, bind.Unbound)
	var out cell.Cell
	fr := &frame.Frame{Out: &out, Feed: fd}
	require.NoError(t, env.eng.Run(nil, fr))
	assert.Equal(t, int64(3), out.Int64())
}

func TestAppend_GrowsBlock(t *testing.T) {
	env := newTestEnv(t)
	blk, _ := blockCell(t, env.a, 1, 2)
	out := runFeed(t, env, env.word("append"), blk, intCell(3))

	ref, ok := out.Node(0)
	require.True(t, ok)
	arr := series.New(env.a, ref)
	require.Equal(t, 3, arr.Len())
	last, err := arr.At(2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), last.Int64())
}

func TestAppend_FrozenBlockFails(t *testing.T) {
	env := newTestEnv(t)
	blk, s := blockCell(t, env.a, 1, 2)
	require.NoError(t, s.Freeze())

	sFeed := series.Make(env.a, 3, 0, 0)
	_, err := sFeed.ExpandTail(3)
	require.NoError(t, err)
	cells := []cell.Cell{env.word("append"), blk, intCell(3)}
	for i, c := range cells {
		dst, derr := sFeed.At(i)
		require.NoError(t, derr)
		*dst = c
	}
	fd := feed.NewArray(sFeed, 0, bind.Unbound)
	var out cell.Cell
	fr := &frame.Frame{Out: &out, Feed: fd}
	err = env.eng.Step(fr)
	assert.ErrorIs(t, err, series.ErrFrozen)
}
