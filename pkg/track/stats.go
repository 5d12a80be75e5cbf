package track

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Statistics is the per-track summary backing the statistics view.
// Speed fields are m/s, elevation fields metres. NaN marks values the
// track carries no data for.
type Statistics struct {
	Points   int
	Segments int

	Length             float64
	LengthExcludingGaps float64

	DurationSeconds int64

	MaxSpeed    float64
	AvgSpeed    float64
	MovingSpeed float64
	MedianSpeed float64

	ElevationUp   float64
	ElevationDown float64
	MinAltitude   float64
	MaxAltitude   float64
	MeanAltitude  float64
	StdevAltitude float64
}

// ComputeStatistics reduces the track to its summary statistics.
// stopLengthSeconds is the pause threshold used for the moving average
// speed.
func (t *Track) ComputeStatistics(stopLengthSeconds int64) Statistics {
	s := Statistics{
		Points:              t.PointCount(),
		Segments:            t.SegmentCount(),
		Length:              t.Length(),
		LengthExcludingGaps: t.LengthExcludingGaps(),
		DurationSeconds:     t.Duration(true),
		MaxSpeed:            math.NaN(),
		AvgSpeed:            math.NaN(),
		MovingSpeed:         math.NaN(),
		MedianSpeed:         math.NaN(),
		MinAltitude:         math.NaN(),
		MaxAltitude:         math.NaN(),
		MeanAltitude:        math.NaN(),
		StdevAltitude:       math.NaN(),
	}

	if v, ok := t.MaxSpeed(); ok {
		s.MaxSpeed = v
	}
	if v, ok := t.AverageSpeed(); ok {
		s.AvgSpeed = v
	}
	if v, ok := t.AverageSpeedMoving(stopLengthSeconds); ok {
		s.MovingSpeed = v
	}
	s.ElevationUp, s.ElevationDown = t.ElevationGain()
	if min, max, ok := t.MinMaxAltitude(); ok {
		s.MinAltitude = min
		s.MaxAltitude = max
	}

	var altitudes []float64
	for _, tp := range t.Points {
		if tp.HasAltitude() {
			altitudes = append(altitudes, tp.Altitude)
		}
	}
	if len(altitudes) > 0 {
		mean, std := stat.MeanStdDev(altitudes, nil)
		s.MeanAltitude = mean
		if len(altitudes) > 1 {
			s.StdevAltitude = std
		} else {
			s.StdevAltitude = 0
		}
	}

	var speeds []float64
	for i := range t.Points {
		if v := t.speedAt(i); !math.IsNaN(v) {
			speeds = append(speeds, v)
		}
	}
	if len(speeds) > 0 {
		sort.Float64s(speeds)
		s.MedianSpeed = stat.Quantile(0.5, stat.Empirical, speeds, nil)
	}

	return s
}
