package dem

import (
	"math"
	"testing"

	"github.com/acerion/slavgps-core/pkg/geo"
)

// testTile builds a small arc-second tile covering one degree square at
// the given south-west corner, with a constant base elevation plus a
// gradient so interpolation results are distinguishable.
func testTile(latSW, lonSW int, base int16) *Tile {
	const dim = 11
	columns := make([][]int16, dim)
	for col := range columns {
		columns[col] = make([]int16, dim)
		for row := range columns[col] {
			columns[col][row] = base + int16(col*10+row)
		}
	}
	spacing := 3600.0 / float64(dim-1)
	return &Tile{
		HorizUnit:    LatLonArcSeconds,
		MinEast:      float64(lonSW) * 3600,
		MaxEast:      float64(lonSW)*3600 + 3600,
		MinNorth:     float64(latSW) * 3600,
		MaxNorth:     float64(latSW)*3600 + 3600,
		EastSpacing:  spacing,
		NorthSpacing: spacing,
		columns:      columns,
	}
}

func TestElevationAtNearest(t *testing.T) {
	tile := testTile(50, 10, 100)

	// South-west corner sample.
	c := geo.NewCoordLatLon(geo.LatLon{Lat: 50, Lon: 10})
	elev, ok := tile.ElevationAt(c, InterpolationNone)
	if !ok {
		t.Fatal("expected elevation at SW corner")
	}
	if elev != 100 {
		t.Errorf("expected 100, got %f", elev)
	}

	// Outside the tile.
	c = geo.NewCoordLatLon(geo.LatLon{Lat: 52.5, Lon: 10})
	if _, ok := tile.ElevationAt(c, InterpolationNone); ok {
		t.Error("expected no elevation outside the tile")
	}
}

func TestElevationAtNearestInvalidSample(t *testing.T) {
	tile := testTile(50, 10, 100)
	tile.columns[0][0] = InvalidElevation

	c := geo.NewCoordLatLon(geo.LatLon{Lat: 50, Lon: 10})
	if _, ok := tile.ElevationAt(c, InterpolationNone); ok {
		t.Error("expected no elevation on invalid sample")
	}
}

func TestElevationAtBilinearWithinEnvelope(t *testing.T) {
	tile := testTile(50, 10, 100)

	// A point in the middle of the tile. The bilinear result must stay
	// within the envelope of the four enclosing samples.
	c := geo.NewCoordLatLon(geo.LatLon{Lat: 50.55, Lon: 10.55})
	elev, ok := tile.ElevationAt(c, InterpolationBilinear)
	if !ok {
		t.Fatal("expected bilinear elevation")
	}

	fx, fy, _ := tile.gridPosition(c)
	col := int(math.Floor(fx))
	row := int(math.Floor(fy))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range []int16{
		tile.sample(col, row), tile.sample(col+1, row),
		tile.sample(col, row+1), tile.sample(col+1, row+1),
	} {
		lo = math.Min(lo, float64(s))
		hi = math.Max(hi, float64(s))
	}
	if elev < lo || elev > hi {
		t.Errorf("bilinear %f outside sample envelope [%f, %f]", elev, lo, hi)
	}
}

func TestElevationAtBilinearInvalidNeighbor(t *testing.T) {
	tile := testTile(50, 10, 100)
	fx, fy, _ := tile.gridPosition(geo.NewCoordLatLon(geo.LatLon{Lat: 50.55, Lon: 10.55}))
	tile.columns[int(fx)][int(fy)] = InvalidElevation

	c := geo.NewCoordLatLon(geo.LatLon{Lat: 50.55, Lon: 10.55})
	if _, ok := tile.ElevationAt(c, InterpolationBilinear); ok {
		t.Error("expected bilinear to refuse an invalid neighbor")
	}
}

func TestElevationAtShepard(t *testing.T) {
	tile := testTile(50, 10, 100)

	c := geo.NewCoordLatLon(geo.LatLon{Lat: 50.52, Lon: 10.47})
	elev, ok := tile.ElevationAt(c, InterpolationShepard)
	if !ok {
		t.Fatal("expected shepard elevation")
	}
	if elev < 100 || elev > 100+110 {
		t.Errorf("shepard elevation %f outside tile range", elev)
	}
}

func TestElevationAtShepardTooFewNeighbors(t *testing.T) {
	tile := testTile(50, 10, 100)
	// Invalidate everything around the SW corner.
	for col := 0; col <= shepardRadius*2; col++ {
		for row := 0; row <= shepardRadius*2; row++ {
			tile.columns[col][row] = InvalidElevation
		}
	}

	c := geo.NewCoordLatLon(geo.LatLon{Lat: 50, Lon: 10})
	if _, ok := tile.ElevationAt(c, InterpolationShepard); ok {
		t.Error("expected shepard to give up with fewer than three valid neighbors")
	}
}

func TestElevationAtUTMZoneMismatch(t *testing.T) {
	tile := &Tile{
		HorizUnit:    UTMMetres,
		UTMZone:      32,
		UTMNorthern:  true,
		MinEast:      400000,
		MaxEast:      410000,
		MinNorth:     5600000,
		MaxNorth:     5610000,
		EastSpacing:  1000,
		NorthSpacing: 1000,
		columns:      [][]int16{{1, 2}, {3, 4}},
	}

	other := geo.NewCoordUTM(geo.UTM{Easting: 405000, Northing: 5605000, Zone: 33, Letter: 'U'})
	if _, ok := tile.ElevationAt(other, InterpolationNone); ok {
		t.Error("expected no elevation for a different UTM zone")
	}
}
