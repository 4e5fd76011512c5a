package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vb "visionbridge/pkg/visionbridge"
)

func TestSummarizeFlow(t *testing.T) {
	t.Parallel()
	res := vb.FlowResult{
		Previous: []vb.Point2f{{}, {}, {}, {X: 5, Y: 5}},
		Results: []vb.PointStatus{
			{Point: vb.Point2f{X: 3, Y: 4}, Status: true},
			{Point: vb.Point2f{X: 0, Y: 1}, Status: true},
			{Point: vb.Point2f{X: 6, Y: 8}, Status: true},
			{Point: vb.Point2f{X: 50, Y: 50}, Status: false},
		},
	}
	s := summarizeFlow(3, res)
	assert.Equal(t, 3, s.Frame)
	assert.Equal(t, 3, s.Tracked)
	assert.Equal(t, 1, s.Lost)
	assert.InDelta(t, 16.0/3, s.Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(61.0/3), s.StdDev, 1e-9)
	assert.InDelta(t, 5, s.Median, 1e-9)
	assert.InDelta(t, 10, s.Max, 1e-9)
}

func TestSummarizeFlow_SinglePoint(t *testing.T) {
	t.Parallel()
	s := summarizeFlow(1, vb.FlowResult{
		Previous: []vb.Point2f{{X: 1, Y: 1}},
		Results:  []vb.PointStatus{{Point: vb.Point2f{X: 4, Y: 5}, Status: true}},
	})
	assert.InDelta(t, 5, s.Mean, 1e-9)
	assert.Zero(t, s.StdDev)
	assert.InDelta(t, 5, s.Max, 1e-9)
}

func TestSummarizeFlow_AllLost(t *testing.T) {
	t.Parallel()
	s := summarizeFlow(2, vb.FlowResult{
		Previous: []vb.Point2f{{X: 1, Y: 1}},
		Results:  []vb.PointStatus{{Status: false}},
	})
	assert.Equal(t, stepStats{Frame: 2, Lost: 1}, s)
}

func TestPlotFlow(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "flow.png")
	steps := []stepStats{
		{Frame: 1, Tracked: 4, Mean: 1.5, Max: 3},
		{Frame: 2, Tracked: 0},
		{Frame: 3, Tracked: 3, Mean: 2, Max: 2.5},
	}
	require.NoError(t, plotFlow(steps, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPlotFlow_NothingTracked(t *testing.T) {
	t.Parallel()
	err := plotFlow([]stepStats{{Frame: 1}}, filepath.Join(t.TempDir(), "flow.png"))
	assert.ErrorContains(t, err, "no tracked points")
}
