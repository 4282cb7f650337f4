package cell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/kind"
	"github.com/relang/corevm/core/noderef"
)

func TestEnd_IsZeroValue(t *testing.T) {
	var c cell.Cell
	assert.True(t, c.IsEnd())
	assert.Equal(t, cell.End(), c)
}

func TestCopy_PreservationMask(t *testing.T) {
	var src cell.Cell
	src.Header.Kind = kind.KindInteger
	src.Header.QuoteDepth = 3
	src.SetFlag(cell.FlagConst | cell.FlagProtected | cell.FlagEnfixed |
		cell.FlagUnevaluated | cell.FlagArgMarkedChecked | cell.FlagOutMarkedStale)

	dst := src.Copy()

	require.Equal(t, kind.KindInteger, dst.Header.Kind)
	require.EqualValues(t, 3, dst.Header.QuoteDepth)
	assert.True(t, dst.HasFlag(cell.FlagConst), "const must survive copy")
	assert.False(t, dst.HasFlag(cell.FlagProtected), "protected is target-state, not source-copied")
	assert.False(t, dst.HasFlag(cell.FlagEnfixed), "enfixed must not be copied")
	assert.False(t, dst.HasFlag(cell.FlagUnevaluated), "unevaluated must not be copied")
	assert.False(t, dst.HasFlag(cell.FlagArgMarkedChecked), "mark bits must not be copied")
	assert.False(t, dst.HasFlag(cell.FlagOutMarkedStale), "mark bits must not be copied")
}

func TestConstWave_RespectsExplicitMutable(t *testing.T) {
	var c cell.Cell
	c.Mutable()
	c.ConstWave()
	assert.False(t, c.Const(), "explicitly_mutable suppresses the constness wave")
}

func TestConstWave_AppliesNormally(t *testing.T) {
	var c cell.Cell
	c.ConstWave()
	assert.True(t, c.Const())
}

func TestQuoteRoundTrip(t *testing.T) {
	var c cell.Cell
	c.SetInt64(42)

	q := c.Quote().Quote()
	require.EqualValues(t, 2, q.QuoteDepth())

	u := q.Unquote().Unquote()
	assert.EqualValues(t, 0, u.QuoteDepth())
	assert.Equal(t, c.Int64(), u.Int64())
}

func TestRequote_AddsDepth(t *testing.T) {
	var y cell.Cell
	y.SetInt64(9)

	requoted := y.Requote(2)
	assert.EqualValues(t, 2, requoted.QuoteDepth())
	assert.Equal(t, int64(9), requoted.Int64())
}

func TestNodePayload(t *testing.T) {
	var c cell.Cell
	ref := noderef.Ref(7)
	c.SetNode(0, ref)

	got, ok := c.Node(0)
	require.True(t, ok)
	assert.Equal(t, ref, got)

	_, ok = c.Node(1)
	assert.False(t, ok, "slot 1 was never marked as a node")
}

func TestBlankAndNull(t *testing.T) {
	assert.True(t, cell.Blank().IsBlank())
	assert.True(t, cell.Null().IsNull())
	assert.False(t, cell.Blank().IsNull())
}
