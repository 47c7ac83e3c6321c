package routing

import (
	"context"
	"errors"
	"fmt"
	"mandi-profit-service/internal/domain"
	"mandi-profit-service/internal/ports"

	"go.uber.org/zap"
)

// CachedMatrix answers from a persistent route cache and sends only the
// misses upstream, in one batched call. Cache failures are logged and never
// fail the lookup.
type CachedMatrix struct {
	next   ports.RouteMatrixProvider
	cache  ports.RouteCache
	logger *zap.Logger
}

func NewCachedMatrix(next ports.RouteMatrixProvider, cache ports.RouteCache, logger *zap.Logger) (*CachedMatrix, error) {
	if next == nil {
		return nil, errors.New("new cached matrix: upstream provider is nil")
	}
	if cache == nil {
		return nil, errors.New("new cached matrix: route cache is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedMatrix{next: next, cache: cache, logger: logger}, nil
}

func (m *CachedMatrix) Durations(
	ctx context.Context,
	origin domain.Coordinate,
	destinations []domain.Coordinate,
) ([]float64, error) {
	if len(destinations) == 0 {
		return []float64{}, nil
	}

	originKey := origin.Key()
	keys := make([]string, len(destinations))
	for i, d := range destinations {
		keys[i] = d.Key()
	}

	cached, err := m.cache.GetMany(ctx, originKey, keys)
	if err != nil {
		m.logger.Warn("route cache read failed", zap.Error(err))
		cached = nil
	}
	if cached == nil {
		cached = map[string]float64{}
	}

	var missCoords []domain.Coordinate
	missKeys := map[string]struct{}{}
	for i, k := range keys {
		if _, ok := cached[k]; ok {
			continue
		}
		if _, dup := missKeys[k]; dup {
			continue
		}
		missKeys[k] = struct{}{}
		missCoords = append(missCoords, destinations[i])
	}

	if len(missCoords) > 0 {
		fresh, err := m.next.Durations(ctx, origin, missCoords)
		if err != nil {
			return nil, err
		}
		if len(fresh) != len(missCoords) {
			return nil, fmt.Errorf(
				"cached matrix: upstream returned %d durations for %d destinations: %w",
				len(fresh), len(missCoords), domain.ErrRouteCalculationFailed,
			)
		}

		store := make(map[string]float64, len(fresh))
		for i, c := range missCoords {
			store[c.Key()] = fresh[i]
			cached[c.Key()] = fresh[i]
		}
		if err := m.cache.PutMany(ctx, originKey, store); err != nil {
			m.logger.Warn("route cache write failed", zap.Error(err))
		}
	}

	m.logger.Debug("route lookup",
		zap.Int("destinations", len(destinations)),
		zap.Int("upstream", len(missCoords)),
	)

	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = cached[k]
	}
	return out, nil
}
