package geocode

import (
	"context"
	"errors"
	"mandi-profit-service/internal/domain"
	"mandi-profit-service/internal/ports"

	"go.uber.org/zap"
)

// CachedGeocoder keeps resolved place labels in a persistent LabelCache.
// Failed lookups are not cached.
type CachedGeocoder struct {
	next   ports.ReverseGeocoder
	cache  ports.LabelCache
	logger *zap.Logger
}

func NewCachedGeocoder(next ports.ReverseGeocoder, cache ports.LabelCache, logger *zap.Logger) (*CachedGeocoder, error) {
	if next == nil {
		return nil, errors.New("new cached geocoder: upstream geocoder is nil")
	}
	if cache == nil {
		return nil, errors.New("new cached geocoder: label cache is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGeocoder{next: next, cache: cache, logger: logger}, nil
}

func (g *CachedGeocoder) PlaceName(ctx context.Context, c domain.Coordinate) (string, error) {
	key := c.Key()

	label, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.Warn("label cache read failed", zap.String("coord", key), zap.Error(err))
	} else if ok {
		return label, nil
	}

	label, err = g.next.PlaceName(ctx, c)
	if err != nil {
		return "", err
	}

	if err := g.cache.Put(ctx, key, label); err != nil {
		g.logger.Warn("label cache write failed", zap.String("coord", key), zap.Error(err))
	}
	return label, nil
}
