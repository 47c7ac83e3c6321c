package ports

import (
	"context"
	"mandi-profit-service/internal/domain"
)

// Optional collaborator that turns a coordinate into a display label.
type ReverseGeocoder interface {
	PlaceName(ctx context.Context, c domain.Coordinate) (string, error)
}
