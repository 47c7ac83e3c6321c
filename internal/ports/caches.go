package ports

import (
	"context"
	"mandi-profit-service/internal/domain"
)

// Persistent store of origin->destination travel durations, keyed by
// domain.Coordinate.Key.
type RouteCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]float64, error)
	PutMany(ctx context.Context, origin string, results map[string]float64) error
}

// Persistent store of coordinate -> place label.
type LabelCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key string, label string) error
}

// Short-lived store of price records per state and commodity.
type PriceCache interface {
	Get(ctx context.Context, state, commodity string) ([]domain.MarketPriceRecord, bool, error)
	Set(ctx context.Context, state, commodity string, records []domain.MarketPriceRecord) error
}
