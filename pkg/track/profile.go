package track

import (
	"math"
)

// The profile maps resample a track property over a chosen domain
// (cumulative distance or time) into a fixed number of chunks. Index i
// of the result corresponds to the domain value (i+0.5)/numChunks of
// the full extent. Gaps in the data yield NaN, never zero.

// sample is one source point in domain/value space. A NaN value marks
// a gap.
type sample struct {
	x float64
	y float64
}

// resample linearly interpolates the samples onto numChunks chunk
// centers spanning [0, extent]. Chunk centers bracketed by a gap sample
// come out NaN.
func resample(samples []sample, extent float64, numChunks int) []float64 {
	out := make([]float64, numChunks)
	for i := range out {
		out[i] = math.NaN()
	}
	if len(samples) == 0 || extent <= 0 || numChunks == 0 {
		return out
	}

	j := 0
	for i := 0; i < numChunks; i++ {
		c := (float64(i) + 0.5) / float64(numChunks) * extent
		for j+1 < len(samples) && samples[j+1].x < c {
			j++
		}
		if j+1 >= len(samples) {
			// Beyond the last sample; extend its value.
			out[i] = samples[len(samples)-1].y
			continue
		}
		a, b := samples[j], samples[j+1]
		if c < a.x {
			// Before the first sample.
			out[i] = a.y
			continue
		}
		if math.IsNaN(a.y) || math.IsNaN(b.y) {
			continue
		}
		if b.x == a.x {
			out[i] = b.y
			continue
		}
		frac := (c - a.x) / (b.x - a.x)
		out[i] = a.y + frac*(b.y-a.y)
	}
	return out
}

// distanceSamples returns (cumulative distance, altitude) samples.
func (t *Track) distanceSamples() []sample {
	samples := make([]sample, 0, len(t.Points))
	cum := 0.0
	for i, tp := range t.Points {
		if i > 0 {
			cum += t.Points[i-1].Coord.Distance(tp.Coord)
		}
		y := math.NaN()
		if tp.HasAltitude() {
			y = tp.Altitude
		}
		samples = append(samples, sample{x: cum, y: y})
	}
	return samples
}

// timeSamples returns (seconds since first timestamp, value) samples
// computed by valueAt. Pairs crossing a segment break are separated by
// a gap sample so the interval between segments resamples to NaN.
func (t *Track) timeSamples(valueAt func(i int) float64) []sample {
	var first int64
	found := false
	for _, tp := range t.Points {
		if tp.HasTimestamp {
			first = tp.Timestamp
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	var samples []sample
	for i, tp := range t.Points {
		if !tp.HasTimestamp {
			continue
		}
		x := float64(tp.Timestamp - first)
		if t.segmentStart(i) && len(samples) > 0 {
			// A zero-width gap marker; resampling refuses to bridge it.
			samples = append(samples, sample{x: samples[len(samples)-1].x, y: math.NaN()})
		}
		samples = append(samples, sample{x: x, y: valueAt(i)})
	}
	return samples
}

// ElevationByDistance returns numChunks altitudes sampled uniformly
// over the track length.
func (t *Track) ElevationByDistance(numChunks int) []float64 {
	return resample(t.distanceSamples(), t.Length(), numChunks)
}

// ElevationByTime returns numChunks altitudes sampled uniformly over
// the track duration.
func (t *Track) ElevationByTime(numChunks int) []float64 {
	samples := t.timeSamples(func(i int) float64 {
		if t.Points[i].HasAltitude() {
			return t.Points[i].Altitude
		}
		return math.NaN()
	})
	return resample(samples, float64(t.Duration(true)), numChunks)
}

// GradientByDistance returns numChunks gradients (percent) sampled
// uniformly over the track length.
func (t *Track) GradientByDistance(numChunks int) []float64 {
	elev := t.ElevationByDistance(numChunks)
	out := make([]float64, numChunks)
	if numChunks == 0 {
		return out
	}
	chunkLength := t.Length() / float64(numChunks)
	for i := range out {
		if i+1 < numChunks && chunkLength > 0 {
			out[i] = (elev[i+1] - elev[i]) / chunkLength * 100
		} else if i > 0 {
			out[i] = out[i-1]
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// speedAt returns the instantaneous speed at point i computed from the
// preceding same-segment pair, or NaN.
func (t *Track) speedAt(i int) float64 {
	if i == 0 || t.segmentStart(i) {
		return math.NaN()
	}
	prev, cur := t.Points[i-1], t.Points[i]
	if !prev.HasTimestamp || !cur.HasTimestamp {
		return math.NaN()
	}
	dt := cur.Timestamp - prev.Timestamp
	if dt <= 0 {
		return math.NaN()
	}
	return prev.Coord.Distance(cur.Coord) / float64(dt)
}

// SpeedByTime returns numChunks speeds sampled uniformly over the track
// duration.
func (t *Track) SpeedByTime(numChunks int) []float64 {
	samples := t.timeSamples(t.speedAt)
	return resample(samples, float64(t.Duration(true)), numChunks)
}

// SpeedByDistance returns numChunks speeds sampled uniformly over the
// track length.
func (t *Track) SpeedByDistance(numChunks int) []float64 {
	samples := make([]sample, 0, len(t.Points))
	cum := 0.0
	for i := range t.Points {
		if i > 0 {
			cum += t.Points[i-1].Coord.Distance(t.Points[i].Coord)
		}
		samples = append(samples, sample{x: cum, y: t.speedAt(i)})
	}
	return resample(samples, t.Length(), numChunks)
}

// DistanceByTime returns numChunks cumulative distances sampled
// uniformly over the track duration.
func (t *Track) DistanceByTime(numChunks int) []float64 {
	cums := make([]float64, len(t.Points))
	for i := 1; i < len(t.Points); i++ {
		cums[i] = cums[i-1] + t.Points[i-1].Coord.Distance(t.Points[i].Coord)
	}
	samples := t.timeSamples(func(i int) float64 { return cums[i] })
	return resample(samples, float64(t.Duration(true)), numChunks)
}
