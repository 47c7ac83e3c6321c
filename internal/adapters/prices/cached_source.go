package prices

import (
	"context"
	"errors"
	"fmt"
	"mandi-profit-service/internal/domain"
	"mandi-profit-service/internal/ports"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedSource serves price records from a PriceCache and falls through to
// the upstream source on a miss. Concurrent misses for the same state and
// commodity share one upstream call. Cache errors degrade to a direct fetch.
type CachedSource struct {
	next   ports.PriceSource
	cache  ports.PriceCache
	logger *zap.Logger
	group  singleflight.Group
}

func NewCachedSource(next ports.PriceSource, cache ports.PriceCache, logger *zap.Logger) (*CachedSource, error) {
	if next == nil {
		return nil, errors.New("new cached price source: upstream source is nil")
	}
	if cache == nil {
		return nil, errors.New("new cached price source: cache is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{next: next, cache: cache, logger: logger}, nil
}

// FetchPrices returns the cached records for state and commodity or fetches
// them. The shared upstream call is detached from any one caller's
// cancellation; each caller stops waiting when its own ctx is done.
func (s *CachedSource) FetchPrices(ctx context.Context, state, commodity string) ([]domain.MarketPriceRecord, error) {
	key := Key(state, commodity)
	if records, ok, err := s.cache.Get(ctx, state, commodity); err != nil {
		s.logger.Warn("price cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return records, nil
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		records, err := s.next.FetchPrices(flightCtx, state, commodity)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(flightCtx, state, commodity, records); err != nil {
			s.logger.Warn("price cache write failed", zap.String("key", key), zap.Error(err))
		}
		return records, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch prices %s: %w", key, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("price fetch shared", zap.String("key", key))
		}
		// Callers sharing a flight must not alias one slice.
		return slices.Clone(res.Val.([]domain.MarketPriceRecord)), nil
	}
}
