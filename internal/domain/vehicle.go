package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Transport option used to move a load to market.
// Rate is currency per kilometer; Capacity is in quintals.
type Vehicle struct {
	ID       string
	Name     string
	Rate     float64
	Capacity float64
}

// Fleet is the immutable set of vehicles, kept ascending by capacity.
type Fleet struct {
	vehicles []Vehicle
}

func NewFleet(vehicles []Vehicle) (Fleet, error) {
	if len(vehicles) == 0 {
		return Fleet{}, errors.New("new fleet: at least one vehicle is required")
	}

	seen := make(map[string]struct{}, len(vehicles))
	sorted := make([]Vehicle, 0, len(vehicles))
	for i, v := range vehicles {
		id := strings.TrimSpace(v.ID)
		if id == "" {
			return Fleet{}, fmt.Errorf("new fleet: vehicle at index %d has empty id", i)
		}
		if _, ok := seen[id]; ok {
			return Fleet{}, fmt.Errorf("new fleet: duplicate vehicle id %q", id)
		}
		if v.Capacity <= 0 {
			return Fleet{}, fmt.Errorf("new fleet: vehicle %q capacity must be positive", id)
		}
		if v.Rate < 0 {
			return Fleet{}, fmt.Errorf("new fleet: vehicle %q rate must not be negative", id)
		}
		seen[id] = struct{}{}
		v.ID = id
		sorted = append(sorted, v)
	}

	slices.SortStableFunc(sorted, func(a, b Vehicle) int {
		switch {
		case a.Capacity < b.Capacity:
			return -1
		case a.Capacity > b.Capacity:
			return 1
		}
		return 0
	})

	return Fleet{vehicles: sorted}, nil
}

// Vehicles returns a copy of the fleet, smallest capacity first.
func (f Fleet) Vehicles() []Vehicle { return slices.Clone(f.vehicles) }

func (f Fleet) ByID(id string) (Vehicle, bool) {
	for _, v := range f.vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return Vehicle{}, false
}

// SelectVehicle returns the smallest vehicle able to carry quantity in a single
// trip. Missing or non-positive quantities get the smallest vehicle; loads larger
// than every capacity get the largest one.
func (f Fleet) SelectVehicle(quantity float64) Vehicle {
	if len(f.vehicles) == 0 {
		return Vehicle{}
	}
	if math.IsNaN(quantity) || quantity <= 0 {
		return f.vehicles[0]
	}

	for _, v := range f.vehicles {
		if v.Capacity >= quantity {
			return v
		}
	}
	return f.vehicles[len(f.vehicles)-1]
}

// TripsRequired is the number of trips needed to move quantity with v.
func TripsRequired(quantity float64, v Vehicle) int {
	if quantity <= 0 || v.Capacity <= 0 {
		return 1
	}
	return int(math.Ceil(quantity / v.Capacity))
}
