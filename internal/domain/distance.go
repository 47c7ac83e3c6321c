package domain

import "math"

const (
	earthRadiusKm = 6371.0

	// RoadDetourFactor approximates road distance from great-circle distance.
	RoadDetourFactor = 1.2
)

// DistanceKm returns the haversine distance scaled by RoadDetourFactor,
// rounded to one decimal place.
func DistanceKm(origin, destination Coordinate) float64 {
	dLat := toRadians(destination.Lat - origin.Lat)
	dLon := toRadians(destination.Lon - origin.Lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(origin.Lat))*math.Cos(toRadians(destination.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return roundTo(earthRadiusKm*c*RoadDetourFactor, 1)
}

// DurationMinutes converts a routing duration in seconds to whole minutes.
func DurationMinutes(seconds float64) int {
	return int(math.Round(seconds / 60))
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
