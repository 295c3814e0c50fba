package geo

import "math"

// Bounds is an axis-aligned lat/lng rectangle used to scope cache reads and
// filter aggregation output.
type Bounds struct {
	SWLat float64 `json:"swLat"`
	SWLng float64 `json:"swLng"`
	NELat float64 `json:"neLat"`
	NELng float64 `json:"neLng"`
}

// Contains reports whether the point falls inside the rectangle (inclusive).
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.SWLat && lat <= b.NELat && lng >= b.SWLng && lng <= b.NELng
}

// FromCenter builds bounds around a center point. One degree of latitude is
// ~111.32 km; longitude shrinks with cos(lat).
func FromCenter(lat, lng, radiusKm float64) Bounds {
	latDelta := radiusKm / 111.32
	lngDelta := radiusKm / (111.32 * math.Cos(lat*math.Pi/180))
	return Bounds{
		SWLat: lat - latDelta,
		NELat: lat + latDelta,
		SWLng: lng - lngDelta,
		NELng: lng + lngDelta,
	}
}
