package feed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/feed"
	"github.com/relang/corevm/core/series"
)

func makeArray(t *testing.T, vals ...int64) series.Series {
	t.Helper()
	a := arena.New()
	s := series.Make(a, len(vals), 0, 0)
	_, err := s.ExpandTail(len(vals))
	require.NoError(t, err)
	for i, v := range vals {
		c, err := s.At(i)
		require.NoError(t, err)
		c.SetInt64(v)
	}
	return s
}

func TestArrayFeed_StepsAndEnds(t *testing.T) {
	arr := makeArray(t, 1, 2, 3)
	f := feed.NewArray(arr, 0, bind.Unbound)

	assert.Equal(t, int64(1), f.Value().Int64())
	assert.Equal(t, int64(2), f.Pending().Int64())

	prior := f.FetchNext()
	assert.Equal(t, int64(1), prior.Int64())
	assert.Equal(t, int64(2), f.Value().Int64())

	f.FetchNext()
	assert.Equal(t, int64(3), f.Value().Int64())
	assert.True(t, f.Pending().IsEnd())

	f.FetchNext()
	assert.True(t, f.AtEnd())
}

func TestVariadicFeed_CellItems(t *testing.T) {
	var a, b cell.Cell
	a.SetInt64(10)
	b.SetInt64(20)

	f := feed.NewVariadic([]any{a, b}, nil, nil, bind.Unbound)
	assert.Equal(t, int64(10), f.Value().Int64())
	f.FetchNext()
	assert.Equal(t, int64(20), f.Value().Int64())
	f.FetchNext()
	assert.True(t, f.AtEnd())
}

type stubScanner struct {
	arr series.Series
}

func (s stubScanner) Scan(src []byte, line int, binder *bind.Table) (series.Series, error) {
	return s.arr, nil
}

func TestVariadicFeed_SplicesScannedString(t *testing.T) {
	spliced := makeArray(t, 100, 200)
	var before, after cell.Cell
	before.SetInt64(1)
	after.SetInt64(999)

	f := feed.NewVariadic([]any{before, "+ 2", after}, stubScanner{arr: spliced}, bind.NewTable(), bind.Unbound)

	assert.Equal(t, int64(1), f.Value().Int64())
	f.FetchNext()
	assert.Equal(t, int64(100), f.Value().Int64(), "should have entered the spliced sub-array")
	f.FetchNext()
	assert.Equal(t, int64(200), f.Value().Int64())
	f.FetchNext()
	assert.Equal(t, int64(999), f.Value().Int64(), "should resume the outer variadic list after the splice drains")
}

func TestGotten_InvalidatedOnAdvance(t *testing.T) {
	arr := makeArray(t, 1, 2)
	f := feed.NewArray(arr, 0, bind.Unbound)

	var cached cell.Cell
	cached.SetInt64(42)
	f.SetGotten(cached)

	got, ok := f.Gotten()
	require.True(t, ok)
	assert.Equal(t, int64(42), got.Int64())

	f.FetchNext()
	_, ok = f.Gotten()
	assert.False(t, ok, "gotten cache must be invalidated by any advance")
}
