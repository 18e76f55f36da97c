// Package geo holds pure geometry helpers: great-circle estimation and the
// rounding rules shared by every distance producer in the service.
package geo

import (
	"math"

	"location-distance-service/internal/domain"
)

const (
	earthRadiusKm = 6371
	milesPerKm    = 0.621371
)

func degreesToRadians(deg float64) float64 {
	return math.Pi / 180 * deg
}

// Haversine returns the great-circle distance between two coordinate pairs
// in kilometers. Pure and deterministic; no rounding is applied.
func Haversine(a, b domain.Coordinates) float64 {
	latA := degreesToRadians(a.Lat)
	latB := degreesToRadians(b.Lat)
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLon := degreesToRadians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLon*sinLon
	// Clamp to account for floating point error on antipodal pairs.
	h = math.Max(0, math.Min(1, h))

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Round1 rounds to one decimal place, the precision every stored distance
// uses.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// KmToMiles converts kilometers to statute miles without rounding.
func KmToMiles(km float64) float64 {
	return km * milesPerKm
}

// Estimate returns the straight-line distance between two points as rounded
// kilometers and miles. Miles are derived from the unrounded kilometer value
// so the two figures stay consistent.
func Estimate(a, b domain.Coordinates) (km, miles float64) {
	raw := Haversine(a, b)
	return Round1(raw), Round1(KmToMiles(raw))
}
