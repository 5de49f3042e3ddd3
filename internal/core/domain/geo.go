package domain

import "math"

// CoordinatePrecision is the number of decimal places kept when paths are
// serialized for export (~11 cm of resolution).
const CoordinatePrecision = 6

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within latitude/longitude bounds.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Round returns the point with both components rounded to CoordinatePrecision.
func (p GeoPoint) Round() GeoPoint {
	return GeoPoint{Lat: roundCoord(p.Lat), Lon: roundCoord(p.Lon)}
}

func roundCoord(v float64) float64 {
	const scale = 1e6 // 10^CoordinatePrecision
	return math.Round(v*scale) / scale
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Extend grows the box to include p.
func (b *Bounds) Extend(p GeoPoint) {
	b.MinLat = math.Min(b.MinLat, p.Lat)
	b.MinLon = math.Min(b.MinLon, p.Lon)
	b.MaxLat = math.Max(b.MaxLat, p.Lat)
	b.MaxLon = math.Max(b.MaxLon, p.Lon)
}

// BoundsOf returns the bounding box of the given points and whether any
// point was present.
func BoundsOf(points []GeoPoint) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinLat: points[0].Lat, MinLon: points[0].Lon,
		MaxLat: points[0].Lat, MaxLon: points[0].Lon,
	}
	for _, p := range points[1:] {
		b.Extend(p)
	}
	return b, true
}
