// Package track implements the track and route data model and the
// algorithms that operate on trackpoint sequences: metrics, profile
// resampling, structural edits and DEM enrichment.
//
// A route is a track with IsRoute set and no time-bearing fields;
// segment flags are meaningful only for tracks.
package track

import (
	"math"

	"github.com/acerion/slavgps-core/pkg/geo"
)

// FixMode is the GPS fix quality reported for a trackpoint.
type FixMode int

const (
	FixNotSeen FixMode = iota // mode update not seen yet
	FixNone
	Fix2D
	Fix3D
	FixDGPS
	FixPPS // military signal used
)

// RGB is a track display color.
type RGB struct {
	R, G, B uint8
}

// Trackpoint is one sample in a track. Float fields use NaN as the
// "data unavailable" sentinel; timestamps carry an explicit flag.
type Trackpoint struct {
	Name  string
	Coord geo.Coord

	NewSegment   bool
	HasTimestamp bool
	Timestamp    int64 // UTC seconds

	Altitude float64 // metres, NaN if unavailable
	Speed    float64 // m/s, NaN if unavailable
	Course   float64 // degrees, NaN if unavailable

	NSats   uint8 // 0 if unavailable
	FixMode FixMode

	HDOP float64
	VDOP float64
	PDOP float64
}

// NewTrackpoint returns a trackpoint at the given coordinate with every
// optional field marked unavailable.
func NewTrackpoint(coord geo.Coord) *Trackpoint {
	return &Trackpoint{
		Coord:    coord,
		Altitude: math.NaN(),
		Speed:    math.NaN(),
		Course:   math.NaN(),
		HDOP:     math.NaN(),
		VDOP:     math.NaN(),
		PDOP:     math.NaN(),
	}
}

// HasAltitude reports whether the altitude field carries data.
func (tp *Trackpoint) HasAltitude() bool {
	return !math.IsNaN(tp.Altitude)
}

// Copy returns a deep copy of the trackpoint.
func (tp *Trackpoint) Copy() *Trackpoint {
	cp := *tp
	return &cp
}

// Track is an ordered sequence of trackpoints, possibly segmented.
// The UID is assigned by the owning container and stays stable across
// edits.
type Track struct {
	UID int64

	Name        string
	Comment     string
	Description string
	Source      string
	Type        string

	HasColor bool
	Color    RGB

	Visible bool
	IsRoute bool

	Points []*Trackpoint
	BBox   geo.LatLonBBox
}

// New returns an empty visible track.
func New(name string) *Track {
	return &Track{
		Name:    name,
		Visible: true,
		BBox:    geo.NewBBox(),
	}
}

// NewRoute returns an empty visible route.
func NewRoute(name string) *Track {
	t := New(name)
	t.IsRoute = true
	return t
}

// Copy duplicates the track; points are deep-copied only when
// copyPoints is set.
func (t *Track) Copy(copyPoints bool) *Track {
	cp := *t
	cp.Points = nil
	if copyPoints {
		cp.Points = make([]*Trackpoint, 0, len(t.Points))
		for _, tp := range t.Points {
			cp.Points = append(cp.Points, tp.Copy())
		}
	}
	return &cp
}

// emptyLike returns a pointless copy of the track's metadata, used by
// the split operations.
func (t *Track) emptyLike() *Track {
	cp := *t
	cp.Points = nil
	cp.BBox = geo.NewBBox()
	return &cp
}

// IsEmpty reports whether the track has no points.
func (t *Track) IsEmpty() bool {
	return len(t.Points) == 0
}

// PointCount returns the number of trackpoints.
func (t *Track) PointCount() int {
	return len(t.Points)
}

// First returns the first trackpoint, or nil for an empty track.
func (t *Track) First() *Trackpoint {
	if len(t.Points) == 0 {
		return nil
	}
	return t.Points[0]
}

// Last returns the last trackpoint, or nil for an empty track.
func (t *Track) Last() *Trackpoint {
	if len(t.Points) == 0 {
		return nil
	}
	return t.Points[len(t.Points)-1]
}

// AddPoint appends a trackpoint. With recalculate set the bounding box
// is extended incrementally; bulk loaders pass false and call
// RecalculateBBox once at the end.
func (t *Track) AddPoint(tp *Trackpoint, recalculate bool) {
	t.Points = append(t.Points, tp)
	if recalculate {
		if len(t.Points) == 1 {
			t.BBox = geo.NewBBox()
		}
		t.BBox.Extend(tp.Coord.LatLon())
	}
}

// RecalculateBBox recomputes the bounding box from scratch. Must be
// called after any structural edit.
func (t *Track) RecalculateBBox() {
	bbox := geo.NewBBox()
	for _, tp := range t.Points {
		bbox.Extend(tp.Coord.LatLon())
	}
	t.BBox = bbox
}

// Convert rewrites every point coordinate into the given mode.
func (t *Track) Convert(mode geo.CoordMode) {
	for _, tp := range t.Points {
		tp.Coord = tp.Coord.Convert(mode)
	}
}

// segmentStart reports whether index i begins a new segment when
// traversing the track. Routes are a single segment regardless of
// flags, and the first point never counts as a break.
func (t *Track) segmentStart(i int) bool {
	if t.IsRoute || i == 0 {
		return false
	}
	return t.Points[i].NewSegment
}

// Timestamp returns the earliest timestamp carried by any point.
func (t *Track) Timestamp() (int64, bool) {
	best := int64(0)
	found := false
	for _, tp := range t.Points {
		if !tp.HasTimestamp {
			continue
		}
		if !found || tp.Timestamp < best {
			best = tp.Timestamp
			found = true
		}
	}
	return best, found
}
