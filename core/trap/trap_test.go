package trap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/trap"
)

func TestCatch_NormalCompletion(t *testing.T) {
	failErr, thrown := trap.Catch(trap.Snapshot{DataStackDepth: 3}, func() {})
	assert.Nil(t, failErr)
	assert.Nil(t, thrown)
	assert.Equal(t, 0, trap.Depth())
}

func TestCatch_RecoversFail(t *testing.T) {
	snap := trap.Snapshot{DataStackDepth: 5, FrameDepth: 2}
	failErr, thrown := trap.Catch(trap.Snapshot{}, func() {
		trap.Fail(errors.New("boom"), snap)
	})
	require.NotNil(t, failErr)
	assert.Nil(t, thrown)
	assert.Equal(t, "boom", failErr.Error())
	assert.Equal(t, snap, failErr.Snap)
	assert.Equal(t, 0, trap.Depth(), "trap boundary must be dropped even on failure")
}

func TestCatch_RecoversThrow(t *testing.T) {
	var v cell.Cell
	v.SetInt64(42)

	failErr, thrown := trap.Catch(trap.Snapshot{}, func() {
		trap.Throw("break", v)
	})
	assert.Nil(t, failErr)
	require.NotNil(t, thrown)
	assert.Equal(t, "break", thrown.Name)
	assert.Equal(t, int64(42), thrown.Value.Int64())
}

func TestCatchNamed_MatchingName(t *testing.T) {
	var v cell.Cell
	v.SetInt64(7)

	failErr, value := trap.CatchNamed(trap.Snapshot{}, "continue", func() {
		trap.Throw("continue", v)
	})
	assert.Nil(t, failErr)
	require.NotNil(t, value)
	assert.Equal(t, int64(7), value.Int64())
}

func TestCatchNamed_PropagatesMismatch(t *testing.T) {
	var v cell.Cell
	v.SetInt64(1)

	assert.Panics(t, func() {
		trap.CatchNamed(trap.Snapshot{}, "continue", func() {
			trap.Throw("break", v)
		})
	})
}

func TestCatch_RepanicsUnknownValue(t *testing.T) {
	assert.Panics(t, func() {
		trap.Catch(trap.Snapshot{}, func() {
			panic("not a trap signal")
		})
	})
}

func TestPushDropTrap_Depth(t *testing.T) {
	assert.Equal(t, 0, trap.Depth())
	trap.PushTrap(trap.Snapshot{})
	trap.PushTrap(trap.Snapshot{})
	assert.Equal(t, 2, trap.Depth())
	trap.DropTrap()
	trap.DropTrap()
	assert.Equal(t, 0, trap.Depth())
}
