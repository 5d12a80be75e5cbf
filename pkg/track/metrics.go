package track

import (
	"math"
)

// Length returns the track length in metres, counting the distance
// across segment breaks.
func (t *Track) Length() float64 {
	var total float64
	for i := 1; i < len(t.Points); i++ {
		total += t.Points[i-1].Coord.Distance(t.Points[i].Coord)
	}
	return total
}

// LengthExcludingGaps sums only within-segment distances.
func (t *Track) LengthExcludingGaps() float64 {
	var total float64
	for i := 1; i < len(t.Points); i++ {
		if t.segmentStart(i) {
			continue
		}
		total += t.Points[i-1].Coord.Distance(t.Points[i].Coord)
	}
	return total
}

// LengthToPoint returns the cumulative length from the start up to the
// point at index.
func (t *Track) LengthToPoint(index int) (float64, error) {
	if index < 0 || index >= len(t.Points) {
		return 0, ErrInvalidIndex
	}
	var total float64
	for i := 1; i <= index; i++ {
		total += t.Points[i-1].Coord.Distance(t.Points[i].Coord)
	}
	return total, nil
}

// Duration returns the total time span in seconds. With includeSegments
// the span runs from the first to the last timestamped point; without
// it only per-segment spans are summed, so gaps between segments do not
// count.
func (t *Track) Duration(includeSegments bool) int64 {
	if includeSegments {
		var first, last int64
		found := false
		for _, tp := range t.Points {
			if !tp.HasTimestamp {
				continue
			}
			if !found {
				first = tp.Timestamp
				found = true
			}
			last = tp.Timestamp
		}
		if !found || last <= first {
			return 0
		}
		return last - first
	}

	var total int64
	segFirst, segLast := int64(0), int64(0)
	haveSeg := false
	flush := func() {
		if haveSeg && segLast > segFirst {
			total += segLast - segFirst
		}
		haveSeg = false
	}
	for i, tp := range t.Points {
		if t.segmentStart(i) {
			flush()
		}
		if !tp.HasTimestamp {
			continue
		}
		if !haveSeg {
			segFirst = tp.Timestamp
			haveSeg = true
		}
		segLast = tp.Timestamp
	}
	flush()
	return total
}

// AverageSpeed returns length over duration in m/s.
func (t *Track) AverageSpeed() (float64, bool) {
	d := t.Duration(true)
	if d == 0 {
		return 0, false
	}
	return t.Length() / float64(d), true
}

// AverageSpeedMoving returns the average speed excluding pauses: any
// in-segment pair of timestamped points at least stopLengthSeconds apart
// in time contributes neither distance nor time.
func (t *Track) AverageSpeedMoving(stopLengthSeconds int64) (float64, bool) {
	var dist float64
	var dur int64
	for i := 1; i < len(t.Points); i++ {
		prev, cur := t.Points[i-1], t.Points[i]
		if t.segmentStart(i) || !prev.HasTimestamp || !cur.HasTimestamp {
			continue
		}
		dt := cur.Timestamp - prev.Timestamp
		if dt <= 0 || dt >= stopLengthSeconds {
			continue
		}
		dist += prev.Coord.Distance(cur.Coord)
		dur += dt
	}
	if dur == 0 {
		return 0, false
	}
	return dist / float64(dur), true
}

// MaxSpeed returns the maximum instantaneous speed over consecutive
// timestamped same-segment pairs.
func (t *Track) MaxSpeed() (float64, bool) {
	idx := t.pointAtMaxSpeed()
	if idx < 0 {
		return 0, false
	}
	prev, cur := t.Points[idx-1], t.Points[idx]
	dt := cur.Timestamp - prev.Timestamp
	return prev.Coord.Distance(cur.Coord) / float64(dt), true
}

// PointAtMaxSpeed returns the later point of the fastest consecutive
// pair, or nil when no pair qualifies.
func (t *Track) PointAtMaxSpeed() *Trackpoint {
	idx := t.pointAtMaxSpeed()
	if idx < 0 {
		return nil
	}
	return t.Points[idx]
}

func (t *Track) pointAtMaxSpeed() int {
	best := -1
	bestSpeed := 0.0
	for i := 1; i < len(t.Points); i++ {
		prev, cur := t.Points[i-1], t.Points[i]
		if t.segmentStart(i) || !prev.HasTimestamp || !cur.HasTimestamp {
			continue
		}
		dt := cur.Timestamp - prev.Timestamp
		if dt <= 0 {
			continue
		}
		speed := prev.Coord.Distance(cur.Coord) / float64(dt)
		if speed > bestSpeed || best < 0 {
			bestSpeed = speed
			best = i
		}
	}
	return best
}

// ElevationGain returns the total climb and descent in metres over
// consecutive points with defined altitudes.
func (t *Track) ElevationGain() (up, down float64) {
	for i := 1; i < len(t.Points); i++ {
		prev, cur := t.Points[i-1], t.Points[i]
		if !prev.HasAltitude() || !cur.HasAltitude() {
			continue
		}
		diff := cur.Altitude - prev.Altitude
		if diff > 0 {
			up += diff
		} else {
			down -= diff
		}
	}
	return up, down
}

// MinMaxAltitude returns the altitude extremes, or false when no point
// carries altitude data.
func (t *Track) MinMaxAltitude() (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, tp := range t.Points {
		if !tp.HasAltitude() {
			continue
		}
		min = math.Min(min, tp.Altitude)
		max = math.Max(max, tp.Altitude)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return min, max, true
}

// PointAtMinAltitude returns the lowest point, or nil.
func (t *Track) PointAtMinAltitude() *Trackpoint {
	var best *Trackpoint
	for _, tp := range t.Points {
		if !tp.HasAltitude() {
			continue
		}
		if best == nil || tp.Altitude < best.Altitude {
			best = tp
		}
	}
	return best
}

// PointAtMaxAltitude returns the highest point, or nil.
func (t *Track) PointAtMaxAltitude() *Trackpoint {
	var best *Trackpoint
	for _, tp := range t.Points {
		if !tp.HasAltitude() {
			continue
		}
		if best == nil || tp.Altitude > best.Altitude {
			best = tp
		}
	}
	return best
}

// SegmentCount returns the number of segments: one more than the number
// of in-body segment flags. Empty tracks have no segments; routes are
// always a single segment.
func (t *Track) SegmentCount() int {
	if len(t.Points) == 0 {
		return 0
	}
	count := 1
	for i := 1; i < len(t.Points); i++ {
		if t.segmentStart(i) {
			count++
		}
	}
	return count
}

// DupPointCount counts points whose coordinate exactly repeats the
// previous point's.
func (t *Track) DupPointCount() int {
	count := 0
	for i := 1; i < len(t.Points); i++ {
		if t.Points[i].Coord.Equal(t.Points[i-1].Coord) {
			count++
		}
	}
	return count
}

// SameTimePointCount counts points carrying the same timestamp as the
// previous point within a segment.
func (t *Track) SameTimePointCount() int {
	count := 0
	for i := 1; i < len(t.Points); i++ {
		prev, cur := t.Points[i-1], t.Points[i]
		if t.segmentStart(i) || !prev.HasTimestamp || !cur.HasTimestamp {
			continue
		}
		if prev.Timestamp == cur.Timestamp {
			count++
		}
	}
	return count
}

// PointAtDistance returns the index of the trackpoint at or around the
// requested cumulative distance from the start, together with that
// point's own distance from the start. When the requested value falls
// between two points the next one is chosen if getNext is set, the
// previous otherwise; an exact hit always wins.
func (t *Track) PointAtDistance(metres float64, getNext bool) (index int, metresFromStart float64, ok bool) {
	if len(t.Points) == 0 || metres < 0 {
		return 0, 0, false
	}
	cum := 0.0
	prevCum := 0.0
	for i := range t.Points {
		if i > 0 {
			prevCum = cum
			cum += t.Points[i-1].Coord.Distance(t.Points[i].Coord)
		}
		if cum == metres {
			return i, cum, true
		}
		if cum > metres {
			if getNext {
				return i, cum, true
			}
			return i - 1, prevCum, true
		}
	}
	// Beyond the end: the last point.
	return len(t.Points) - 1, cum, true
}

// ClosestPointByPercentageDistance returns the trackpoint closest to
// the given fraction of total length, ties breaking to the earlier
// point.
func (t *Track) ClosestPointByPercentageDistance(fraction float64) (index int, metresFromStart float64, ok bool) {
	if len(t.Points) == 0 || fraction < 0 || fraction > 1 {
		return 0, 0, false
	}
	target := fraction * t.Length()

	cum := 0.0
	bestIdx, bestDist, bestDelta := 0, 0.0, math.Inf(1)
	for i := range t.Points {
		if i > 0 {
			cum += t.Points[i-1].Coord.Distance(t.Points[i].Coord)
		}
		delta := math.Abs(cum - target)
		if delta < bestDelta {
			bestDelta = delta
			bestIdx = i
			bestDist = cum
		}
	}
	return bestIdx, bestDist, true
}

// ClosestPointByPercentageTime returns the trackpoint closest to the
// given fraction of total duration.
func (t *Track) ClosestPointByPercentageTime(fraction float64) (index int, secondsFromStart int64, ok bool) {
	if len(t.Points) == 0 || fraction < 0 || fraction > 1 {
		return 0, 0, false
	}
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
		return 0, 0, false
	}
	target := float64(first) + fraction*float64(t.Duration(true))

	bestIdx := -1
	bestDelta := math.Inf(1)
	var bestSecs int64
	for i, tp := range t.Points {
		if !tp.HasTimestamp {
			continue
		}
		delta := math.Abs(float64(tp.Timestamp) - target)
		if delta < bestDelta {
			bestDelta = delta
			bestIdx = i
			bestSecs = tp.Timestamp - first
		}
	}
	if bestIdx < 0 {
		return 0, 0, false
	}
	return bestIdx, bestSecs, true
}
