package ports

import (
	"context"
	"mandi-profit-service/internal/domain"
)

// Port: a boundary for retrieving current commodity prices per market.
type PriceSource interface {
	// Return price records for commodity in state, in source order.
	// An empty slice with a nil error means no price data today.
	FetchPrices(ctx context.Context, state string, commodity string) ([]domain.MarketPriceRecord, error)
}
