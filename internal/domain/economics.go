package domain

import "math"

// Revenue, transport cost and net profit for one market, in currency units.
// NetProfit may be negative and is never clamped.
type Economics struct {
	Revenue       float64
	TransportCost float64
	NetProfit     float64
}

// ComputeEconomics prices a load of quantity quintals sold at modalPrice, moved
// distanceKm by v, optionally counting the return leg.
//
//   - revenue = modalPrice * quantity
//   - transportCost = round(distanceKm * rate * (2 if roundTrip))
//   - netProfit = revenue - transportCost
func ComputeEconomics(modalPrice, distanceKm float64, v Vehicle, quantity float64, roundTrip bool) Economics {
	revenue := modalPrice * quantity

	oneWay := distanceKm * v.Rate
	cost := oneWay
	if roundTrip {
		cost = oneWay * 2
	}
	cost = math.Round(cost)

	return Economics{
		Revenue:       revenue,
		TransportCost: cost,
		NetProfit:     revenue - cost,
	}
}

// ScoreFor returns the ranking score of e for role. Buyers pay price plus
// transport, so the closer that landed cost is to zero the better.
func ScoreFor(role Role, e Economics) float64 {
	if role == RoleBuyer {
		return -(e.Revenue + e.TransportCost)
	}
	return e.NetProfit
}
