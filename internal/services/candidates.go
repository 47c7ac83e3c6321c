package services

import (
	"fmt"
	"mandi-profit-service/internal/domain"
	"strings"
)

// BuildCandidates resolves a location for every price record and keeps the
// first resolvable record per market name, in input order. Records that cannot
// be placed are skipped.
//
// An empty result is a NoMarketsFound failure whose message tells apart "the
// source returned nothing" from "nothing could be placed".
func BuildCandidates(
	commodity string,
	records []domain.MarketPriceRecord,
	locations *domain.LocationTable,
) ([]domain.RankedMarket, error) {
	if len(records) == 0 {
		return nil, domain.Fail(
			domain.ErrNoMarketsFound,
			domain.StageFetchingPrices,
			fmt.Sprintf("no market is buying %s today", commodity),
			nil,
		)
	}

	seen := make(map[string]struct{}, len(records))
	candidates := make([]domain.RankedMarket, 0, len(records))
	for _, rec := range records {
		res, ok := locations.Resolve(rec.Market, rec.District)
		if !ok {
			continue
		}
		if _, dup := seen[rec.Market]; dup {
			continue
		}
		seen[rec.Market] = struct{}{}

		candidates = append(candidates, domain.RankedMarket{
			MarketPriceRecord: rec,
			Location:          res.Coordinate,
			IsApproximate:     res.Approximate,
		})
	}

	if len(candidates) == 0 {
		return nil, domain.Fail(
			domain.ErrNoMarketsFound,
			domain.StageResolvingCoordinates,
			fmt.Sprintf("markets found, but no location data available (found: %s)", strings.Join(marketNames(records), ", ")),
			nil,
		)
	}

	return candidates, nil
}

// marketNames lists distinct market names in first-seen order.
func marketNames(records []domain.MarketPriceRecord) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Market]; ok {
			continue
		}
		seen[r.Market] = struct{}{}
		out = append(out, r.Market)
	}
	return out
}
