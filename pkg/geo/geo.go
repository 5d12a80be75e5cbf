// Package geo provides the coordinate primitives shared by every layer of
// the application: WGS-84 lat/lon values, UTM values, a tagged coordinate
// union, great-circle distance and lat/lon bounding boxes.
package geo

import (
	"fmt"
	"math"
)

// EarthRadius is the mean Earth radius in metres, as used by the
// haversine great-circle distance.
const EarthRadius = 6371000.0

// LatLon is a WGS-84 geographic coordinate in decimal degrees.
// Latitude is in [-90, 90], longitude in (-180, 180].
type LatLon struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate is within the WGS-84 domain.
func (ll LatLon) Valid() bool {
	return ll.Lat >= -90 && ll.Lat <= 90 && ll.Lon > -180 && ll.Lon <= 180
}

// String formats the coordinate as "lat,lon" with six decimal places.
func (ll LatLon) String() string {
	return fmt.Sprintf("%.6f,%.6f", ll.Lat, ll.Lon)
}

// Distance returns the great-circle distance to other in metres,
// computed with the haversine formula.
func (ll LatLon) Distance(other LatLon) float64 {
	lat1 := toRadians(ll.Lat)
	lat2 := toRadians(other.Lat)
	dLat := toRadians(other.Lat - ll.Lat)
	dLon := toRadians(other.Lon - ll.Lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func toDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// LatLonBBox is an axis-aligned lat/lon bounding box.
// South <= North always holds; longitude wrap is the caller's problem.
type LatLonBBox struct {
	North float64
	South float64
	East  float64
	West  float64
}

// NewBBox returns an empty bounding box that any Extend call will
// initialize to the extended point.
func NewBBox() LatLonBBox {
	return LatLonBBox{
		North: -91,
		South: 91,
		East:  -181,
		West:  181,
	}
}

// IsEmpty reports whether the box has never been extended.
func (b *LatLonBBox) IsEmpty() bool {
	return b.South > b.North
}

// Extend grows the box to include the given point.
func (b *LatLonBBox) Extend(ll LatLon) {
	if ll.Lat > b.North {
		b.North = ll.Lat
	}
	if ll.Lat < b.South {
		b.South = ll.Lat
	}
	if ll.Lon > b.East {
		b.East = ll.Lon
	}
	if ll.Lon < b.West {
		b.West = ll.Lon
	}
}

// ExtendBBox grows the box to include the other box.
func (b *LatLonBBox) ExtendBBox(other LatLonBBox) {
	if other.IsEmpty() {
		return
	}
	b.Extend(LatLon{Lat: other.South, Lon: other.West})
	b.Extend(LatLon{Lat: other.North, Lon: other.East})
}

// Intersects reports whether the two boxes overlap.
func (b *LatLonBBox) Intersects(other LatLonBBox) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return false
	}
	return b.South <= other.North && b.North >= other.South &&
		b.West <= other.East && b.East >= other.West
}

// Contains reports whether the point lies inside the box.
func (b *LatLonBBox) Contains(ll LatLon) bool {
	return ll.Lat >= b.South && ll.Lat <= b.North &&
		ll.Lon >= b.West && ll.Lon <= b.East
}

// Center returns the midpoint of the box.
func (b *LatLonBBox) Center() LatLon {
	return LatLon{
		Lat: (b.North + b.South) / 2,
		Lon: (b.East + b.West) / 2,
	}
}
