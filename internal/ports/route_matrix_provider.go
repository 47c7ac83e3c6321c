package ports

import (
	"context"
	"mandi-profit-service/internal/domain"
)

// Contract for retrieving road travel durations from one origin to many
// destinations in a single batched request.
type RouteMatrixProvider interface {
	// Return one duration in seconds per destination, in input order.
	Durations(ctx context.Context, origin domain.Coordinate, destinations []domain.Coordinate) ([]float64, error)
}
