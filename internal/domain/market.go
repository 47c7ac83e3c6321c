package domain

import "time"

// One price observation for a commodity at a market, as returned by the price
// source. ModalPrice is currency per quintal.
type MarketPriceRecord struct {
	Market      string
	District    string
	State       string
	Commodity   string
	ModalPrice  float64
	MinPrice    float64
	MaxPrice    float64
	ArrivalDate *time.Time
}

type Tag string

const (
	TagBestProfit Tag = "Best Profit"
	TagNearest    Tag = "Nearest"
	TagBestRate   Tag = "Best Rate"
)

// Role decides which direction of price and cost is better.
type Role string

const (
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "", RoleSeller:
		return RoleSeller, true
	case RoleBuyer:
		return RoleBuyer, true
	}
	return "", false
}

// A price record joined with its resolved location and the logistics and
// economics computed from the caller's origin.
type RankedMarket struct {
	MarketPriceRecord

	Location        Coordinate
	IsApproximate   bool
	DistanceKm      float64
	DurationMinutes int
	Economics
	// Score is what ranking sorts by: NetProfit for sellers, the negated
	// landed cost for buyers.
	Score float64
	Tags  []Tag
}

func (m *RankedMarket) HasTag(t Tag) bool {
	for _, x := range m.Tags {
		if x == t {
			return true
		}
	}
	return false
}
