package services

import (
	"mandi-profit-service/internal/domain"
	"slices"
)

type RankOptions struct {
	Role domain.Role
	// Tagging attaches "Best Profit", "Nearest" and "Best Rate" tags.
	Tagging bool
}

// Evaluate fills distance, duration, economics and score for every candidate.
// durations holds routing seconds in candidate order.
func Evaluate(
	candidates []domain.RankedMarket,
	origin domain.Coordinate,
	durations []float64,
	vehicle domain.Vehicle,
	quantity float64,
	roundTrip bool,
	role domain.Role,
) []domain.RankedMarket {
	out := make([]domain.RankedMarket, len(candidates))
	for i, c := range candidates {
		c.DistanceKm = domain.DistanceKm(origin, c.Location)
		if i < len(durations) {
			c.DurationMinutes = domain.DurationMinutes(durations[i])
		}
		c.Economics = domain.ComputeEconomics(c.ModalPrice, c.DistanceKm, vehicle, quantity, roundTrip)
		c.Score = domain.ScoreFor(role, c.Economics)
		c.Tags = nil
		out[i] = c
	}
	return out
}

// Rank orders candidates by descending score. Equal scores keep input order.
// The input slice is not modified.
func Rank(candidates []domain.RankedMarket, opts RankOptions) []domain.RankedMarket {
	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b domain.RankedMarket) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	if opts.Tagging && len(ranked) > 0 {
		tag(ranked, opts.Role)
	}
	return ranked
}

// tag marks the top entry, the nearest entry and the best-rate entry. Ties go
// to the earlier entry in ranked order.
func tag(ranked []domain.RankedMarket, role domain.Role) {
	for i := range ranked {
		ranked[i].Tags = slices.Clone(ranked[i].Tags)
	}

	ranked[0].Tags = append(ranked[0].Tags, domain.TagBestProfit)

	nearest := 0
	bestRate := 0
	for i := 1; i < len(ranked); i++ {
		if ranked[i].DistanceKm < ranked[nearest].DistanceKm {
			nearest = i
		}
		if betterRate(role, ranked[i].ModalPrice, ranked[bestRate].ModalPrice) {
			bestRate = i
		}
	}

	ranked[nearest].Tags = append(ranked[nearest].Tags, domain.TagNearest)
	ranked[bestRate].Tags = append(ranked[bestRate].Tags, domain.TagBestRate)
}

func betterRate(role domain.Role, price, best float64) bool {
	if role == domain.RoleBuyer {
		return price < best
	}
	return price > best
}
