// Package geo provides great-circle distances and the town centroid table
// used as a coarse reference point for proximity filtering.
package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

// earthRadiusM is the equatorial radius used for distance calculations.
const earthRadiusM = 6378137.0

// NewPoint returns a WGS84 point. go-geom points are ordered X=longitude,
// Y=latitude.
func NewPoint(lat, lng float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lng, lat}).SetSRID(4326)
}

// ParsePoint parses raw latitude/longitude cells. It reports false for empty,
// non-numeric, non-finite, out-of-range or zero coordinates.
func ParsePoint(lat, lng string) (*geom.Point, bool) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return nil, false
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return nil, false
	}
	if !usable(la, 90) || !usable(lo, 180) {
		return nil, false
	}
	return NewPoint(la, lo), true
}

func usable(v, limit float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) <= limit
}

// DistanceM returns the haversine distance between two points rounded to
// whole metres.
func DistanceM(a, b *geom.Point) float64 {
	lat1, lat2 := radians(a.Y()), radians(b.Y())
	dLat := lat2 - lat1
	dLng := radians(b.X() - a.X())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return math.Round(earthRadiusM * c)
}

// DistanceKM returns DistanceM converted to kilometres.
func DistanceKM(a, b *geom.Point) float64 {
	return DistanceM(a, b) / 1000
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
