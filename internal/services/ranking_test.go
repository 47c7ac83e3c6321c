package services

import (
	"mandi-profit-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(name string, score, distance, price float64) domain.RankedMarket {
	m := domain.RankedMarket{
		MarketPriceRecord: domain.MarketPriceRecord{Market: name, ModalPrice: price},
		DistanceKm:        distance,
		Score:             score,
	}
	m.NetProfit = score
	return m
}

func names(ms []domain.RankedMarket) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Market)
	}
	return out
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	in := []domain.RankedMarket{
		scored("A", 500, 10, 100),
		scored("B", 8000, 20, 200),
		scored("C", -100, 30, 300),
	}

	got := Rank(in, RankOptions{})

	assert.Equal(t, []string{"B", "A", "C"}, names(got))
	assert.Equal(t, []float64{8000, 500, -100}, []float64{got[0].NetProfit, got[1].NetProfit, got[2].NetProfit})
	assert.Equal(t, []string{"A", "B", "C"}, names(in), "input must not be reordered")
	for _, m := range got {
		assert.Empty(t, m.Tags)
	}
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	in := []domain.RankedMarket{
		scored("First", 100, 50, 10),
		scored("Second", 200, 40, 10),
		scored("Third", 100, 10, 10),
		scored("Fourth", 100, 5, 10),
	}

	got := Rank(in, RankOptions{})
	assert.Equal(t, []string{"Second", "First", "Third", "Fourth"}, names(got))
}

func TestRankTaggingSeller(t *testing.T) {
	in := []domain.RankedMarket{
		scored("Near", 500, 5, 900),
		scored("Rich", 8000, 40, 1500),
		scored("Far", -100, 90, 1600),
	}

	got := Rank(in, RankOptions{Role: domain.RoleSeller, Tagging: true})
	require.Equal(t, []string{"Rich", "Near", "Far"}, names(got))

	assert.Equal(t, []domain.Tag{domain.TagBestProfit}, got[0].Tags)
	assert.Equal(t, []domain.Tag{domain.TagNearest}, got[1].Tags)
	assert.Equal(t, []domain.Tag{domain.TagBestRate}, got[2].Tags)
}

func TestRankTaggingBuyerPrefersLowPrice(t *testing.T) {
	in := []domain.RankedMarket{
		scored("Cheap", -1000, 30, 80),
		scored("Dear", -3000, 10, 250),
	}

	got := Rank(in, RankOptions{Role: domain.RoleBuyer, Tagging: true})
	require.Equal(t, []string{"Cheap", "Dear"}, names(got))

	assert.Equal(t, []domain.Tag{domain.TagBestProfit, domain.TagBestRate}, got[0].Tags)
	assert.Equal(t, []domain.Tag{domain.TagNearest}, got[1].Tags)
}

func TestRankTaggingSingleMarketCarriesAllTags(t *testing.T) {
	got := Rank([]domain.RankedMarket{scored("Only", 10, 3, 100)}, RankOptions{Tagging: true})

	require.Len(t, got, 1)
	assert.True(t, got[0].HasTag(domain.TagBestProfit))
	assert.True(t, got[0].HasTag(domain.TagNearest))
	assert.True(t, got[0].HasTag(domain.TagBestRate))
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil, RankOptions{Tagging: true}))
}

func TestEvaluate(t *testing.T) {
	pickup := domain.Vehicle{ID: "ace", Rate: 20, Capacity: 10}
	candidates := []domain.RankedMarket{
		{MarketPriceRecord: domain.MarketPriceRecord{Market: "Ernakulam", ModalPrice: 1000}, Location: ernakulam},
		{MarketPriceRecord: domain.MarketPriceRecord{Market: "Here", ModalPrice: 1000}, Location: trivandrum},
	}

	got := Evaluate(candidates, trivandrum, []float64{14400, 0}, pickup, 10, true, domain.RoleSeller)
	require.Len(t, got, 2)

	assert.Equal(t, 211.8, got[0].DistanceKm)
	assert.Equal(t, 240, got[0].DurationMinutes)
	assert.Equal(t, 10000.0, got[0].Revenue)
	assert.Equal(t, 8472.0, got[0].TransportCost)
	assert.Equal(t, 1528.0, got[0].NetProfit)
	assert.Equal(t, got[0].NetProfit, got[0].Score)

	assert.Equal(t, 0.0, got[1].DistanceKm)
	assert.Equal(t, 0.0, got[1].TransportCost)
	assert.Equal(t, 10000.0, got[1].NetProfit)
}
