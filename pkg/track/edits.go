package track

import (
	"math"
	"sort"

	"github.com/acerion/slavgps-core/pkg/geo"
)

// Reverse reverses the point order in place. Segment flags are moved so
// that what were segment starts remain segment starts of the reversed
// traversal. Applying Reverse twice restores the original track.
func (t *Track) Reverse() {
	n := len(t.Points)
	if n < 2 {
		return
	}

	oldFlags := make([]bool, n)
	for i, tp := range t.Points {
		oldFlags[i] = tp.NewSegment
	}

	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		t.Points[i], t.Points[j] = t.Points[j], t.Points[i]
	}

	// A boundary between old points i-1 and i lands between reversed
	// positions n-i and n-1-i, so its flag moves to index n-i.
	t.Points[0].NewSegment = oldFlags[0]
	for j := 1; j < n; j++ {
		t.Points[j].NewSegment = oldFlags[n-j]
	}
}

// MergeSegments clears every in-body segment flag and returns how many
// were cleared.
func (t *Track) MergeSegments() int {
	cleared := 0
	for i := 1; i < len(t.Points); i++ {
		if t.Points[i].NewSegment {
			t.Points[i].NewSegment = false
			cleared++
		}
	}
	return cleared
}

// takeChunks moves the track's points into new tracks sliced at the
// given boundary indexes (each boundary starts a new chunk). The source
// track is left empty; the caller disposes of it.
func (t *Track) takeChunks(boundaries []int) []*Track {
	chunks := make([]*Track, 0, len(boundaries)+1)
	start := 0
	cut := func(end int) {
		if end == start {
			return
		}
		chunk := t.emptyLike()
		chunk.Points = t.Points[start:end:end]
		chunk.RecalculateBBox()
		chunks = append(chunks, chunk)
		start = end
	}
	for _, b := range boundaries {
		cut(b)
	}
	cut(len(t.Points))

	t.Points = nil
	t.BBox = geo.NewBBox()
	return chunks
}

// SplitIntoSegments returns one track per maximal segment. The source
// track is emptied; the caller is expected to dispose of it. Segment
// flags travel with the points, so appending the results in order
// reconstructs the original.
func (t *Track) SplitIntoSegments() []*Track {
	if len(t.Points) == 0 {
		return []*Track{t.emptyLike()}
	}
	var boundaries []int
	for i := 1; i < len(t.Points); i++ {
		if t.segmentStart(i) {
			boundaries = append(boundaries, i)
		}
	}
	return t.takeChunks(boundaries)
}

// SplitByTime splits the track wherever consecutive timestamped points
// are further apart than thresholdSeconds. Out-of-order timestamps
// abort with an OrderingError before any mutation.
func (t *Track) SplitByTime(thresholdSeconds int64) ([]*Track, error) {
	if len(t.Points) == 0 {
		return []*Track{t.emptyLike()}, nil
	}

	var boundaries []int
	for i := 1; i < len(t.Points); i++ {
		prev, cur := t.Points[i-1], t.Points[i]
		if !prev.HasTimestamp || !cur.HasTimestamp {
			continue
		}
		if cur.Timestamp < prev.Timestamp {
			return nil, &OrderingError{
				Index:     i,
				Timestamp: cur.Timestamp,
				Previous:  prev.Timestamp,
			}
		}
		if cur.Timestamp-prev.Timestamp > thresholdSeconds {
			boundaries = append(boundaries, i)
		}
	}
	return t.takeChunks(boundaries), nil
}

// SplitEveryNPoints splits the track into consecutive chunks of n
// points; the last chunk may be shorter. n must be at least 2.
func (t *Track) SplitEveryNPoints(n int) ([]*Track, error) {
	if n < 2 {
		return nil, ErrInvalidArgument
	}
	if len(t.Points) == 0 {
		return []*Track{t.emptyLike()}, nil
	}
	var boundaries []int
	for b := n; b < len(t.Points); b += n {
		boundaries = append(boundaries, b)
	}
	return t.takeChunks(boundaries), nil
}

// SplitAt splits the track at the given point index. The selected point
// is duplicated so both halves retain it. The source track is emptied.
func (t *Track) SplitAt(index int) (*Track, *Track, error) {
	if len(t.Points) == 0 {
		return nil, nil, ErrEmptyTrack
	}
	if index < 0 || index >= len(t.Points) {
		return nil, nil, ErrInvalidIndex
	}

	left := t.emptyLike()
	left.Points = append(left.Points, t.Points[:index+1]...)
	left.RecalculateBBox()

	right := t.emptyLike()
	right.Points = append(right.Points, t.Points[index].Copy())
	right.Points = append(right.Points, t.Points[index+1:]...)
	right.RecalculateBBox()

	t.Points = nil
	t.BBox = geo.NewBBox()
	return left, right, nil
}

// StealAndAppend moves every point of other to the end of this track,
// preserving segment flags. The other track becomes empty.
func (t *Track) StealAndAppend(other *Track) {
	t.Points = append(t.Points, other.Points...)
	other.Points = nil
	other.BBox = geo.NewBBox()
	t.RecalculateBBox()
}

// ToRoutePoints strips the time-bearing fields from every point:
// timestamps, speeds, dilution values and segment flags. Used when
// converting a track into a route.
func (t *Track) ToRoutePoints() {
	for _, tp := range t.Points {
		tp.HasTimestamp = false
		tp.Timestamp = 0
		tp.Speed = math.NaN()
		tp.HDOP = math.NaN()
		tp.VDOP = math.NaN()
		tp.PDOP = math.NaN()
		tp.NewSegment = false
	}
}

// RemoveDupPoints drops each point whose coordinate exactly equals the
// previous point's and returns how many were removed.
func (t *Track) RemoveDupPoints() int {
	if len(t.Points) < 2 {
		return 0
	}
	kept := t.Points[:1]
	removed := 0
	for i := 1; i < len(t.Points); i++ {
		if t.Points[i].Coord.Equal(kept[len(kept)-1].Coord) {
			removed++
			continue
		}
		kept = append(kept, t.Points[i])
	}
	t.Points = kept
	if removed > 0 {
		t.RecalculateBBox()
	}
	return removed
}

// RemoveSameTimePoints drops each point whose timestamp equals the
// previous point's within the same segment and returns how many were
// removed.
func (t *Track) RemoveSameTimePoints() int {
	if len(t.Points) < 2 {
		return 0
	}
	kept := t.Points[:1]
	removed := 0
	for i := 1; i < len(t.Points); i++ {
		prev := kept[len(kept)-1]
		cur := t.Points[i]
		if !t.segmentStart(i) && prev.HasTimestamp && cur.HasTimestamp &&
			prev.Timestamp == cur.Timestamp {
			removed++
			continue
		}
		kept = append(kept, cur)
	}
	t.Points = kept
	if removed > 0 {
		t.RecalculateBBox()
	}
	return removed
}

// AnonymizeTimes clears every timestamp while preserving point order.
// Running it twice is a no-op.
func (t *Track) AnonymizeTimes() {
	for _, tp := range t.Points {
		tp.HasTimestamp = false
		tp.Timestamp = 0
	}
}

// InterpolateTimes fills missing interior timestamps by linear
// interpolation between the nearest timestamped neighbors within the
// same segment. Runs touching a segment end are left unchanged.
func (t *Track) InterpolateTimes() {
	segEnd := 0
	for segStart := 0; segStart < len(t.Points); segStart = segEnd {
		segEnd = segStart + 1
		for segEnd < len(t.Points) && !t.segmentStart(segEnd) {
			segEnd++
		}
		t.interpolateTimesInSegment(segStart, segEnd)
	}
}

func (t *Track) interpolateTimesInSegment(start, end int) {
	left := -1
	for i := start; i < end; i++ {
		if !t.Points[i].HasTimestamp {
			continue
		}
		if left >= 0 && i-left > 1 {
			t0 := float64(t.Points[left].Timestamp)
			t1 := float64(t.Points[i].Timestamp)
			for j := left + 1; j < i; j++ {
				frac := float64(j-left) / float64(i-left)
				t.Points[j].Timestamp = int64(math.Round(t0 + frac*(t1-t0)))
				t.Points[j].HasTimestamp = true
			}
		}
		left = i
	}
}

// SortByTimestamp reorders points by timestamp, the explicit repair for
// out-of-order tracks. Points without timestamps keep their relative
// position at the end. The sort is stable.
func (t *Track) SortByTimestamp() {
	sort.SliceStable(t.Points, func(i, j int) bool {
		a, b := t.Points[i], t.Points[j]
		if a.HasTimestamp != b.HasTimestamp {
			return a.HasTimestamp
		}
		if !a.HasTimestamp {
			return false
		}
		return a.Timestamp < b.Timestamp
	})
}

// CutBackToDoublePoint truncates the track back to the most recent pair
// of consecutive points sharing a coordinate, dropping everything after
// the pair, and returns that coordinate. Used to trim a realtime track
// back to its last marker. Returns false when no such pair exists.
func (t *Track) CutBackToDoublePoint() (geo.Coord, bool) {
	for i := len(t.Points) - 1; i >= 1; i-- {
		if t.Points[i].Coord.Equal(t.Points[i-1].Coord) {
			coord := t.Points[i].Coord
			t.Points = t.Points[:i+1]
			t.RecalculateBBox()
			return coord, true
		}
	}
	return geo.Coord{}, false
}
