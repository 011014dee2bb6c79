package db

import "math"

// CoordinateEpsilon is the tolerance, in degrees, under which two coordinates
// are the same spot. 0.0001 degrees is roughly 11 meters.
const CoordinateEpsilon = 0.0001

const earthRadiusKm = 6371.0

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// SameSpot reports whether both coordinates are within CoordinateEpsilon.
func (l Location) SameSpot(o Location) bool {
	return math.Abs(l.Lat-o.Lat) < CoordinateEpsilon && math.Abs(l.Lng-o.Lng) < CoordinateEpsilon
}

// DistanceKm is the haversine distance to o, rounded to 0.1 km.
func (l Location) DistanceKm(o Location) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(o.Lat - l.Lat)
	dLng := rad(o.Lng - l.Lng)
	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(rad(l.Lat))*math.Cos(rad(o.Lat))*math.Pow(math.Sin(dLng/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(earthRadiusKm*c*10) / 10
}
