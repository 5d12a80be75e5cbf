// Package waypoint implements the waypoint entity and the per-container
// indexed collection, including the unique-name and auto-name
// generators and the pixel-space click search.
package waypoint

import (
	"math"
	"time"

	"github.com/acerion/slavgps-core/pkg/geo"
)

// Waypoint is a named point of interest, independent of any track.
type Waypoint struct {
	UID int64

	Name        string
	Comment     string
	Description string
	Source      string
	URL         string

	// ImagePath is an opaque identifier; the external loader
	// canonicalizes before add.
	ImagePath string
	Symbol    string

	Coord geo.Coord

	Altitude     float64 // metres, NaN if unavailable
	HasTimestamp bool
	Timestamp    int64 // UTC seconds

	Visible bool

	// Cached thumbnail dimensions, display only.
	ImageWidth  int
	ImageHeight int
}

// New returns a visible waypoint at the given coordinate.
func New(name string, coord geo.Coord) *Waypoint {
	return &Waypoint{
		Name:     name,
		Coord:    coord,
		Altitude: math.NaN(),
		Visible:  true,
	}
}

// HasAltitude reports whether the altitude field carries data.
func (w *Waypoint) HasAltitude() bool {
	return !math.IsNaN(w.Altitude)
}

// Copy returns a deep copy of the waypoint.
func (w *Waypoint) Copy() *Waypoint {
	cp := *w
	return &cp
}

// DateMatches reports whether the waypoint's timestamp falls on the
// given yyyy-mm-dd day, in UTC.
func (w *Waypoint) DateMatches(date string) bool {
	if !w.HasTimestamp {
		return false
	}
	return time.Unix(w.Timestamp, 0).UTC().Format(time.DateOnly) == date
}
