package signals_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relang/corevm/core/signals"
)

func TestRaiseClearHas(t *testing.T) {
	var s signals.Set
	assert.False(t, s.Any())

	s.Raise(signals.Recycle)
	assert.True(t, s.Has(signals.Recycle))
	assert.False(t, s.Has(signals.Halt))
	assert.True(t, s.Any())

	s.Raise(signals.Halt)
	assert.True(t, s.Has(signals.Recycle|signals.Halt))

	s.Clear(signals.Recycle)
	assert.False(t, s.Has(signals.Recycle))
	assert.True(t, s.Has(signals.Halt))
}

func TestFromContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var s signals.Set
	s.FromContext(ctx)
	assert.True(t, s.Has(signals.Halt))
}

func TestFromContext_Live(t *testing.T) {
	var s signals.Set
	s.FromContext(context.Background())
	assert.False(t, s.Has(signals.Halt))
}

func TestFromContext_Nil(t *testing.T) {
	var s signals.Set
	s.FromContext(nil)
	assert.False(t, s.Any())
}
