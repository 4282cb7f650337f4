package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/corevm/core/arena"
)

func TestAllocFree_RoundTrip(t *testing.T) {
	a := arena.New()
	ref := a.AllocNode(&arena.SeriesSlot{Width: 0})
	require.Equal(t, 1, a.Live())

	p, err := a.Payload(ref)
	require.NoError(t, err)
	ss, ok := p.(*arena.SeriesSlot)
	require.True(t, ok)
	assert.Zero(t, ss.Width)

	require.NoError(t, a.FreeNode(ref))
	assert.Equal(t, 0, a.Live())
}

func TestFreeNode_RejectsManaged(t *testing.T) {
	a := arena.New()
	ref := a.AllocNode(&arena.SeriesSlot{})
	require.NoError(t, a.Manage(ref))

	err := a.FreeNode(ref)
	assert.ErrorIs(t, err, arena.ErrFreeManaged)
}

func TestBadRef(t *testing.T) {
	a := arena.New()
	_, err := a.Payload(9999)
	assert.ErrorIs(t, err, arena.ErrBadRef)
}

func TestFreeListReuse(t *testing.T) {
	a := arena.New()
	ref1 := a.AllocNode(&arena.SeriesSlot{Width: 1})
	require.NoError(t, a.FreeNode(ref1))

	ref2 := a.AllocNode(&arena.SeriesSlot{Width: 2})
	assert.Equal(t, ref1, ref2, "freed slot should be recycled before growing the pool")
}

func TestSweep_FreesUnreachableManagedNodes(t *testing.T) {
	a := arena.New()
	reachable := a.AllocNode(&arena.SeriesSlot{})
	unreachable := a.AllocNode(&arena.SeriesSlot{})
	guarded := a.AllocNode(&arena.SeriesSlot{})
	manual := a.AllocNode(&arena.SeriesSlot{})

	require.NoError(t, a.Manage(reachable))
	require.NoError(t, a.Manage(unreachable))
	require.NoError(t, a.Manage(guarded))
	require.NoError(t, a.Guard(guarded))
	// manual is deliberately left unmanaged.

	a.Mark(reachable)
	freed := a.Sweep()

	assert.Equal(t, 1, freed)
	_, err := a.Payload(unreachable)
	assert.Error(t, err, "unreachable managed node should have been swept")

	_, err = a.Payload(reachable)
	assert.NoError(t, err)
	_, err = a.Payload(guarded)
	assert.NoError(t, err, "guarded node survives sweep regardless of reachability")
	_, err = a.Payload(manual)
	assert.NoError(t, err, "manual nodes are never swept by the GC")
}

func TestNeedsRecycle(t *testing.T) {
	a := arena.New()
	assert.False(t, a.NeedsRecycle())
}
