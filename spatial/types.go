// Copyright 2025 The VendorSearch Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"

	"github.com/umahmood/haversine"
)

const (
	// EarthRadiusKm is the mean Earth radius used by every distance computation.
	EarthRadiusKm = 6371.0

	// kmPerMile is the (coarse) conversion used to turn a search radius into kilometers.
	kmPerMile = 1.6

	// below this cos(lat) the longitude span is unbounded.
	minCosLat = 1e-9
)

// Point represents a geographical point with latitude and longitude in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a WKT representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Valid reports whether the point lies within the latitude/longitude domain.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// HaversineKm calculates the great-circle distance between two points in kilometers.
func HaversineKm(a, b Point) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Lat, Lon: a.Lng},
		haversine.Coord{Lat: b.Lat, Lon: b.Lng},
	)

	return km
}

// HaversineDistance is the method form of HaversineKm.
func (p Point) HaversineDistance(other Point) float64 {
	return HaversineKm(p, other)
}

// BoundingBox is an inclusive latitude/longitude rectangle.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p falls inside the box, borders included.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLon && p.Lng <= b.MaxLon
}

// ComputeBoundingBox returns the rectangle enclosing a circle of radiusMiles around center.
//
// The longitude span widens with latitude (cosine correction). When the circle reaches a
// pole every longitude qualifies, so the box spans [-180, 180] and latitudes are clamped to
// [-90, 90]. Boxes crossing the antimeridian are not wrapped.
func ComputeBoundingBox(center Point, radiusMiles float64) BoundingBox {
	radiusKm := radiusMiles / kmPerMile
	deltaLat := degrees(radiusKm / EarthRadiusKm)

	box := BoundingBox{
		MinLat: center.Lat - deltaLat,
		MaxLat: center.Lat + deltaLat,
	}

	cosLat := math.Cos(radians(center.Lat))
	if cosLat < minCosLat || box.MaxLat >= 90 || box.MinLat <= -90 {
		box.MinLat = math.Max(box.MinLat, -90)
		box.MaxLat = math.Min(box.MaxLat, 90)
		box.MinLon = -180
		box.MaxLon = 180

		return box
	}

	deltaLon := degrees(radiusKm / (EarthRadiusKm * cosLat))
	box.MinLon = center.Lng - deltaLon
	box.MaxLon = center.Lng + deltaLon

	return box
}
