package track

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevationByDistance(t *testing.T) {
	tr := equatorTrack(3)
	tr.Points[0].Altitude = 100
	tr.Points[1].Altitude = 200
	tr.Points[2].Altitude = 300

	out := tr.ElevationByDistance(10)
	require.Len(t, out, 10)

	// Chunk centers run from 5% to 95% of the length; the elevation is
	// linear in distance, so values must increase monotonically from
	// ~110 to ~290.
	assert.InDelta(t, 110, out[0], 2)
	assert.InDelta(t, 290, out[9], 2)
	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i], out[i-1])
	}
}

func TestElevationByDistanceGap(t *testing.T) {
	tr := equatorTrack(3)
	tr.Points[0].Altitude = 100
	// Middle altitude missing.
	tr.Points[2].Altitude = 300

	out := tr.ElevationByDistance(4)
	require.Len(t, out, 4)
	// Every chunk is bracketed by the missing middle sample.
	for i, v := range out {
		assert.True(t, math.IsNaN(v), "chunk %d should be NaN, got %f", i, v)
	}
}

func TestElevationByTime(t *testing.T) {
	tr := New("ebt")
	for i, ts := range []int64{0, 10, 20} {
		tp := timedPoint(0, float64(i)*0.001, ts)
		tp.Altitude = float64(100 * (i + 1))
		tr.AddPoint(tp, true)
	}

	out := tr.ElevationByTime(4)
	require.Len(t, out, 4)
	// Centers at 2.5, 7.5, 12.5, 17.5 seconds.
	assert.InDelta(t, 125, out[0], 1e-6)
	assert.InDelta(t, 175, out[1], 1e-6)
	assert.InDelta(t, 225, out[2], 1e-6)
	assert.InDelta(t, 275, out[3], 1e-6)
}

func TestSpeedByTimeSegmentGap(t *testing.T) {
	tr := New("sbt")
	tr.AddPoint(timedPoint(0, 0, 0), true)
	tr.AddPoint(timedPoint(0, 0.001, 10), true)
	gap := timedPoint(0, 0.002, 90)
	gap.NewSegment = true
	tr.AddPoint(gap, true)
	tr.AddPoint(timedPoint(0, 0.003, 100), true)

	out := tr.SpeedByTime(10)
	require.Len(t, out, 10)

	// Chunks in the middle of the between-segment interval are gaps.
	sawNaN := false
	for _, v := range out[2:8] {
		if math.IsNaN(v) {
			sawNaN = true
		}
	}
	assert.True(t, sawNaN, "expected NaN chunks inside the segment gap")
}

func TestDistanceByTime(t *testing.T) {
	tr := New("dbt")
	for i, ts := range []int64{0, 10, 20} {
		tr.AddPoint(timedPoint(0, float64(i)*0.001, ts), true)
	}

	out := tr.DistanceByTime(4)
	require.Len(t, out, 4)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i], out[i-1])
	}
	assert.InDelta(t, tr.Length()*0.875, out[3], 1.0)
}

func TestGradientByDistance(t *testing.T) {
	tr := equatorTrack(3)
	tr.Points[0].Altitude = 0
	tr.Points[1].Altitude = 10
	tr.Points[2].Altitude = 20

	out := tr.GradientByDistance(5)
	require.Len(t, out, 5)
	// Constant climb of 20m over ~222.6m is a ~9% gradient.
	for i, v := range out {
		assert.InDelta(t, 9.0, v, 1.0, "chunk %d", i)
	}
}

func TestProfileEmptyTrack(t *testing.T) {
	tr := New("empty")
	out := tr.ElevationByDistance(8)
	require.Len(t, out, 8)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}
