package invariants_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/invariants"
	"github.com/relang/corevm/core/series"
	"github.com/relang/corevm/core/stack"
)

func TestStackBalance_OK(t *testing.T) {
	st := stack.New()
	before := st.Mark()
	st.Push(cell.Blank())
	require.NoError(t, st.DropTo(before))
	assert.NoError(t, invariants.StackBalance(st, before))
}

func TestStackBalance_Leak(t *testing.T) {
	st := stack.New()
	before := st.Mark()
	st.Push(cell.Blank())
	err := invariants.StackBalance(st, before)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StackBalance")
}

func TestCellPreservation_SurvivesCopy(t *testing.T) {
	var src cell.Cell
	src.SetInt64(42)
	src.SetFlag(cell.FlagConst)
	src.SetFlag(cell.FlagUnevaluated)
	dst := src.Copy()
	assert.NoError(t, invariants.CellPreservation(src, dst))
}

func TestCellPreservation_CatchesLeakedMarkBit(t *testing.T) {
	var src cell.Cell
	src.SetInt64(1)
	dst := src.Copy()
	dst.SetFlag(cell.FlagOutMarkedStale) // simulate a bug that forgot to clear it
	err := invariants.CellPreservation(src, dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaked")
}

func TestSeriesHoldDiscipline(t *testing.T) {
	a := arena.New()
	s := series.Make(a, 4, 0, 0)
	assert.NoError(t, invariants.SeriesHoldDiscipline(s))

	require.NoError(t, s.Hold())
	err := invariants.SeriesHoldDiscipline(s)
	require.Error(t, err)

	require.NoError(t, s.ReleaseHold())
	assert.NoError(t, invariants.SeriesHoldDiscipline(s))
}

func TestSeriesMutable(t *testing.T) {
	a := arena.New()
	s := series.Make(a, 4, 0, 0)
	assert.NoError(t, invariants.SeriesMutable(s))

	require.NoError(t, s.Freeze())
	assert.Error(t, invariants.SeriesMutable(s))
}
