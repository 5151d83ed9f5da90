package geo

import "math"

const earthRadiusMeters = 6371000.0

// Location is a point on the Earth's surface in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether both coordinates are real numbers.
func (l Location) Valid() bool {
	return !math.IsNaN(l.Latitude) && !math.IsNaN(l.Longitude) &&
		!math.IsInf(l.Latitude, 0) && !math.IsInf(l.Longitude, 0)
}

// DistanceMeters returns the great-circle distance between two points
// using the haversine formula. A malformed coordinate on either side
// yields +Inf so that a single bad report sorts itself out of any
// proximity query instead of failing it.
func DistanceMeters(a, b Location) float64 {
	if !a.Valid() || !b.Valid() {
		return math.Inf(1)
	}

	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLng := degreesToRadians(b.Longitude - a.Longitude)

	rLat1 := degreesToRadians(a.Latitude)
	rLat2 := degreesToRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// IsWithinBounds reports whether loc lies within radiusMeters of center.
func IsWithinBounds(loc, center Location, radiusMeters float64) bool {
	return DistanceMeters(loc, center) <= radiusMeters
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
