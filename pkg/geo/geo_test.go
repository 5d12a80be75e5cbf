package geo

import (
	"math"
	"testing"
)

func TestHaversineDistanceEquator(t *testing.T) {
	// One millidegree of longitude at the equator is roughly 111.32m.
	a := LatLon{Lat: 0, Lon: 0}
	b := LatLon{Lat: 0, Lon: 0.001}

	d := a.Distance(b)
	if math.Abs(d-111.32) > 0.5 {
		t.Errorf("expected ~111.32m, got %f", d)
	}
}

func TestHaversineDistanceZero(t *testing.T) {
	a := LatLon{Lat: 51.5, Lon: -0.12}
	if d := a.Distance(a); d != 0 {
		t.Errorf("expected zero distance, got %f", d)
	}
}

func TestBBoxExtend(t *testing.T) {
	bbox := NewBBox()
	if !bbox.IsEmpty() {
		t.Fatal("new bbox should be empty")
	}

	bbox.Extend(LatLon{Lat: 10, Lon: 20})
	bbox.Extend(LatLon{Lat: -5, Lon: 25})

	if bbox.North != 10 || bbox.South != -5 || bbox.East != 25 || bbox.West != 20 {
		t.Errorf("unexpected bbox: %+v", bbox)
	}
}

func TestBBoxIntersects(t *testing.T) {
	a := LatLonBBox{North: 10, South: 0, East: 10, West: 0}
	b := LatLonBBox{North: 15, South: 5, East: 15, West: 5}
	c := LatLonBBox{North: 30, South: 20, East: 30, West: 20}

	if !a.Intersects(b) {
		t.Error("expected a and b to intersect")
	}
	if a.Intersects(c) {
		t.Error("expected a and c not to intersect")
	}

	empty := NewBBox()
	if a.Intersects(empty) {
		t.Error("empty bbox must not intersect anything")
	}
}

func TestLatLonUTMRoundTrip(t *testing.T) {
	cases := []LatLon{
		{Lat: 51.1788, Lon: -1.8262},  // Stonehenge
		{Lat: -33.8688, Lon: 151.2093}, // Sydney
		{Lat: 0.5, Lon: 0.5},
		{Lat: 63.4305, Lon: 10.3951}, // Trondheim, Norway zone exception
	}

	for _, ll := range cases {
		u := LatLonToUTM(ll)
		back := UTMToLatLon(u)

		if math.Abs(back.Lat-ll.Lat) > 1e-5 || math.Abs(back.Lon-ll.Lon) > 1e-5 {
			t.Errorf("round trip of %v gave %v via %v", ll, back, u)
		}
	}
}

func TestZoneForLatLonNorway(t *testing.T) {
	// West Norway falls in the widened zone 32.
	if z := ZoneForLatLon(LatLon{Lat: 60, Lon: 5}); z != 32 {
		t.Errorf("expected zone 32, got %d", z)
	}
	// Just south of the exception the regular formula applies.
	if z := ZoneForLatLon(LatLon{Lat: 55, Lon: 5}); z != 31 {
		t.Errorf("expected zone 31, got %d", z)
	}
}

func TestBandLetter(t *testing.T) {
	cases := []struct {
		lat  float64
		want byte
	}{
		{51.5, 'U'},
		{-33.9, 'H'},
		{0, 'N'},
		{83.9, 'X'},
		{-79.9, 'C'},
	}
	for _, tc := range cases {
		if got := BandLetter(tc.lat); got != tc.want {
			t.Errorf("BandLetter(%f) = %c, want %c", tc.lat, got, tc.want)
		}
	}
}

func TestCoordDistanceMixedModes(t *testing.T) {
	ll := LatLon{Lat: 0, Lon: 0.001}
	a := NewCoordLatLon(LatLon{Lat: 0, Lon: 0})
	b := NewCoordUTM(LatLonToUTM(ll))

	d := a.Distance(b)
	if math.Abs(d-111.32) > 0.5 {
		t.Errorf("expected ~111.32m across modes, got %f", d)
	}
}

func TestCoordDistanceSameZoneUTM(t *testing.T) {
	a := NewCoordUTM(UTM{Easting: 500000, Northing: 0, Zone: 31, Letter: 'N'})
	b := NewCoordUTM(UTM{Easting: 500300, Northing: 400, Zone: 31, Letter: 'N'})

	if d := a.Distance(b); math.Abs(d-500) > 1e-9 {
		t.Errorf("expected planar 500m, got %f", d)
	}
}

func TestCoordConvertReversible(t *testing.T) {
	orig := NewCoordLatLon(LatLon{Lat: 47.1, Lon: 8.5})
	back := orig.Convert(ModeUTM).Convert(ModeLatLon)

	if math.Abs(back.LatLon().Lat-47.1) > 1e-5 || math.Abs(back.LatLon().Lon-8.5) > 1e-5 {
		t.Errorf("convert round trip drifted: %v", back)
	}
}
