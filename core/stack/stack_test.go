package stack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/stack"
)

func TestPushPeekDrop(t *testing.T) {
	s := stack.New()
	var v cell.Cell
	v.SetInt64(7)
	s.Push(v)

	top, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, int64(7), top.Int64())

	require.NoError(t, s.Drop())
	assert.Equal(t, 0, s.Depth())
}

func TestMarkAndDropTo(t *testing.T) {
	s := stack.New()
	mark := s.Mark()

	for i := 0; i < 5; i++ {
		var v cell.Cell
		v.SetInt64(int64(i))
		s.Push(v)
	}
	assert.Equal(t, 5, s.Depth())

	require.NoError(t, s.DropTo(mark))
	assert.True(t, s.Balanced(mark))
}

func TestPopToArray(t *testing.T) {
	s := stack.New()
	mark := s.Mark()
	for i := 0; i < 3; i++ {
		var v cell.Cell
		v.SetInt64(int64(i))
		s.Push(v)
	}

	arr, err := s.PopToArray(mark)
	require.NoError(t, err)
	require.Len(t, arr, 3)
	assert.Equal(t, int64(0), arr[0].Int64())
	assert.Equal(t, int64(2), arr[2].Int64())
	assert.True(t, s.Balanced(mark))
}

func TestGrowthBeyondBlock(t *testing.T) {
	s := stack.New()
	for i := 0; i < 500; i++ {
		s.Push(cell.Blank())
	}
	assert.Equal(t, 500, s.Depth())
}
