// Package dem provides the digital elevation model: immutable raster
// tiles loaded from disk, elevation queries with several interpolation
// methods, and a reference-counted tile cache shared between the DEM
// layer and track enrichment.
package dem

import (
	"math"

	"github.com/acerion/slavgps-core/pkg/geo"
)

// InvalidElevation is the no-data sentinel stored in tile samples.
const InvalidElevation int16 = math.MinInt16

// HorizUnit identifies the horizontal unit of a tile's grid.
type HorizUnit int

const (
	LatLonArcSeconds HorizUnit = iota
	UTMMetres
)

// Interpolation selects the method used by elevation queries.
type Interpolation int

const (
	// InterpolationNone returns the nearest sample.
	InterpolationNone Interpolation = iota
	// InterpolationBilinear interpolates over the four enclosing samples.
	InterpolationBilinear
	// InterpolationShepard uses inverse-distance weighting over a small
	// neighborhood, tolerating scattered no-data samples.
	InterpolationShepard
)

// String returns the method name, used as a metric label.
func (i Interpolation) String() string {
	switch i {
	case InterpolationNone:
		return "none"
	case InterpolationBilinear:
		return "bilinear"
	case InterpolationShepard:
		return "shepard"
	default:
		return "unknown"
	}
}

// Tile is one immutable DEM raster. Samples are stored in columns
// ordered west to east; within a column samples run south to north.
// East/north extents are expressed in the tile's horizontal unit
// (arc-seconds or metres).
type Tile struct {
	HorizUnit   HorizUnit
	UTMZone     int
	UTMNorthern bool

	MinEast  float64
	MaxEast  float64
	MinNorth float64
	MaxNorth float64

	EastSpacing  float64
	NorthSpacing float64

	columns [][]int16
}

// Columns returns the number of sample columns (east-west extent).
func (t *Tile) Columns() int {
	return len(t.columns)
}

// Rows returns the number of samples per column (south-north extent).
func (t *Tile) Rows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0])
}

// Resolution returns the east spacing in the tile's horizontal unit.
// Smaller is finer.
func (t *Tile) Resolution() float64 {
	return t.EastSpacing
}

// sample returns the raw sample at a column/row index, or the invalid
// sentinel when the index is out of bounds.
func (t *Tile) sample(col, row int) int16 {
	if col < 0 || col >= len(t.columns) {
		return InvalidElevation
	}
	if row < 0 || row >= len(t.columns[col]) {
		return InvalidElevation
	}
	return t.columns[col][row]
}

// gridPosition maps a coordinate into fractional column/row indexes.
// The second return is false when the coordinate cannot be expressed in
// the tile's grid at all (wrong UTM zone).
func (t *Tile) gridPosition(coord geo.Coord) (fx, fy float64, ok bool) {
	var east, north float64

	switch t.HorizUnit {
	case LatLonArcSeconds:
		ll := coord.LatLon()
		east = ll.Lon * 3600
		north = ll.Lat * 3600
	case UTMMetres:
		u := coord.UTM()
		if u.Zone != t.UTMZone || u.IsNorthern() != t.UTMNorthern {
			return 0, 0, false
		}
		east = u.Easting
		north = u.Northing
	default:
		return 0, 0, false
	}

	fx = (east - t.MinEast) / t.EastSpacing
	fy = (north - t.MinNorth) / t.NorthSpacing
	return fx, fy, true
}

// ElevationAt returns the elevation in metres at the given coordinate,
// or false when the coordinate is outside the tile, hits no-data
// samples, or (for UTM tiles) lies in a different zone.
func (t *Tile) ElevationAt(coord geo.Coord, method Interpolation) (float64, bool) {
	fx, fy, ok := t.gridPosition(coord)
	if !ok {
		return 0, false
	}

	switch method {
	case InterpolationBilinear:
		return t.bilinear(fx, fy)
	case InterpolationShepard:
		return t.shepard(fx, fy)
	default:
		return t.nearest(fx, fy)
	}
}

func (t *Tile) nearest(fx, fy float64) (float64, bool) {
	col := int(math.Round(fx))
	row := int(math.Round(fy))
	if col < 0 || col >= t.Columns() || row < 0 || row >= t.Rows() {
		return 0, false
	}
	s := t.sample(col, row)
	if s == InvalidElevation {
		return 0, false
	}
	return float64(s), true
}

func (t *Tile) bilinear(fx, fy float64) (float64, bool) {
	col := int(math.Floor(fx))
	row := int(math.Floor(fy))
	if col < 0 || col+1 >= t.Columns() || row < 0 || row+1 >= t.Rows() {
		// Fall back to the nearest sample along the outermost edge.
		return t.nearest(fx, fy)
	}

	s00 := t.sample(col, row)
	s10 := t.sample(col+1, row)
	s01 := t.sample(col, row+1)
	s11 := t.sample(col+1, row+1)
	if s00 == InvalidElevation || s10 == InvalidElevation ||
		s01 == InvalidElevation || s11 == InvalidElevation {
		return 0, false
	}

	dx := fx - float64(col)
	dy := fy - float64(row)

	bottom := float64(s00)*(1-dx) + float64(s10)*dx
	top := float64(s01)*(1-dx) + float64(s11)*dx
	return bottom*(1-dy) + top*dy, true
}

// shepardRadius is the neighborhood half-width, in samples.
const shepardRadius = 2

func (t *Tile) shepard(fx, fy float64) (float64, bool) {
	centerCol := int(math.Round(fx))
	centerRow := int(math.Round(fy))
	if centerCol < 0 || centerCol >= t.Columns() || centerRow < 0 || centerRow >= t.Rows() {
		return 0, false
	}

	var sum, weightSum float64
	valid := 0
	for col := centerCol - shepardRadius; col <= centerCol+shepardRadius; col++ {
		for row := centerRow - shepardRadius; row <= centerRow+shepardRadius; row++ {
			s := t.sample(col, row)
			if s == InvalidElevation {
				continue
			}
			dx := fx - float64(col)
			dy := fy - float64(row)
			d2 := dx*dx + dy*dy
			if d2 == 0 {
				// Exact sample hit.
				return float64(s), true
			}
			w := 1 / d2
			sum += w * float64(s)
			weightSum += w
			valid++
		}
	}
	if valid < 3 {
		return 0, false
	}
	return sum / weightSum, true
}
