package bind_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/kind"
	"github.com/relang/corevm/core/series"
)

func TestDeep_BindsNestedWords(t *testing.T) {
	a := arena.New()
	tab := bind.NewTable()
	ctx := bind.NewContext(a, 1)
	require.NoError(t, ctx.LinkKeylist())
	sym := tab.Intern("x")
	_, err := ctx.AddField(sym)
	require.NoError(t, err)

	inner := series.Make(a, 1, 0, 0)
	_, err = inner.ExpandTail(1)
	require.NoError(t, err)
	innerWord, err := inner.At(0)
	require.NoError(t, err)
	innerWord.Header.Kind = kind.KindWord
	innerWord.Payload[0] = uint64(sym)

	outer := series.Make(a, 2, 0, 0)
	_, err = outer.ExpandTail(2)
	require.NoError(t, err)
	topWord, err := outer.At(0)
	require.NoError(t, err)
	topWord.Header.Kind = kind.KindWord
	topWord.Payload[0] = uint64(sym)

	blk, err := outer.At(1)
	require.NoError(t, err)
	blk.Header.Kind = kind.KindBlock
	blk.SetNode(0, inner.Ref())

	require.NoError(t, bind.Deep(a, outer, ctx.Ref()))

	assert.True(t, bind.IsBound(topWord))
	assert.True(t, bind.IsBound(innerWord))

	resolved, err := bind.Resolve(a, innerWord, bind.Unbound)
	require.NoError(t, err)

	want, err := ctx.Get(sym)
	require.NoError(t, err)
	assert.Equal(t, want, resolved)
}

func TestDeep_SkipsAlreadyBoundWords(t *testing.T) {
	a := arena.New()
	tab := bind.NewTable()
	ctxA := bind.NewContext(a, 1)
	require.NoError(t, ctxA.LinkKeylist())
	ctxB := bind.NewContext(a, 1)
	require.NoError(t, ctxB.LinkKeylist())
	sym := tab.Intern("y")
	_, err := ctxA.AddField(sym)
	require.NoError(t, err)
	_, err = ctxB.AddField(sym)
	require.NoError(t, err)

	arr := series.Make(a, 1, 0, 0)
	_, err = arr.ExpandTail(1)
	require.NoError(t, err)
	w, err := arr.At(0)
	require.NoError(t, err)
	w.Header.Kind = kind.KindWord
	w.Payload[0] = uint64(sym)
	bind.BindSpecific(w, ctxA.Ref())

	require.NoError(t, bind.Deep(a, arr, ctxB.Ref()))

	resolved, err := bind.Resolve(a, w, bind.Unbound)
	require.NoError(t, err)
	wantA, err := ctxA.Get(sym)
	require.NoError(t, err)
	assert.Equal(t, wantA, resolved)
}
