package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinate in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinate) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Valid reports whether the coordinate is within the legal degree ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Key returns a stable cache key with five decimal places (~1 m).
func (c Coordinate) Key() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon)
}

// Label is the display fallback used when no place name is known.
func (c Coordinate) Label() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lon)
}
