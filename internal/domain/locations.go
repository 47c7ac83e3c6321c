package domain

import (
	"maps"
	"strings"
)

// MarketSuffix is the conventional token some price sources append to market names.
const MarketSuffix = " APMC"

// Result of resolving a market to a coordinate. Approximate is set when only the
// district centroid was known.
type Resolution struct {
	Coordinate  Coordinate
	Approximate bool
}

// LocationTable maps market names, and as a coarser fallback district names,
// to coordinates. It is read-only after construction.
type LocationTable struct {
	markets   map[string]Coordinate
	districts map[string]Coordinate
}

func NewLocationTable(markets, districts map[string]Coordinate) *LocationTable {
	return &LocationTable{
		markets:   maps.Clone(markets),
		districts: maps.Clone(districts),
	}
}

// Resolve looks up marketName, then its suffixed and unsuffixed variants, then
// districtName. ok is false when nothing matches.
func (t *LocationTable) Resolve(marketName, districtName string) (Resolution, bool) {
	if t == nil {
		return Resolution{}, false
	}

	candidates := []string{
		marketName,
		marketName + MarketSuffix,
		strings.Replace(marketName, MarketSuffix, "", 1),
	}
	for _, name := range candidates {
		if c, ok := t.markets[name]; ok {
			return Resolution{Coordinate: c}, true
		}
	}

	if c, ok := t.districts[districtName]; ok {
		return Resolution{Coordinate: c, Approximate: true}, true
	}

	return Resolution{}, false
}

func (t *LocationTable) MarketCount() int   { return len(t.markets) }
func (t *LocationTable) DistrictCount() int { return len(t.districts) }
