package diag_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/diag"
	"github.com/relang/corevm/core/frame"
)

func TestDumpFrames_WalksPriorChain(t *testing.T) {
	outer := &frame.Frame{OptLabel: "outer", ExprIndex: 1}
	inner := &frame.Frame{OptLabel: "inner", ExprIndex: 2, Prior: outer}

	snaps := diag.DumpFrames(inner)
	require.Len(t, snaps, 2)
	assert.Equal(t, "inner", snaps[0].Label)
	assert.Equal(t, "outer", snaps[1].Label)
}

func TestDumpFrames_Nil(t *testing.T) {
	assert.Empty(t, diag.DumpFrames(nil))
}

func TestDumpCell(t *testing.T) {
	assert.Equal(t, "<nil cell>", diag.DumpCell(nil))

	end := cell.End()
	assert.Equal(t, "<end>", diag.DumpCell(&end))

	var c cell.Cell
	c.SetInt64(5)
	assert.Contains(t, diag.DumpCell(&c), "kind=")
}

func TestRecover_BuildsReport(t *testing.T) {
	fr := &frame.Frame{OptLabel: "top"}
	report := diag.Recover(errors.New("panic cause"), fr)
	require.NotNil(t, report)
	assert.Contains(t, report.String(), "panic cause")
	assert.Contains(t, report.String(), "top")
}

func TestRecover_NoFrames(t *testing.T) {
	report := diag.Recover("boom", nil)
	assert.Contains(t, report.String(), "no active frames")
}
