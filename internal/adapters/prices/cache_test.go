package prices

import (
	"context"
	"errors"
	"mandi-profit-service/internal/domain"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisPriceCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c, err := NewRedisPriceCache(client, ttl)
	require.NoError(t, err)
	return c, mr
}

func sampleRecords() []domain.MarketPriceRecord {
	day := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	return []domain.MarketPriceRecord{
		{Market: "Kottayam", District: "Kottayam", State: "Kerala", Commodity: "Banana", ModalPrice: 1200, MinPrice: 1100, MaxPrice: 1300, ArrivalDate: &day},
		{Market: "Kollam", District: "Kollam", State: "Kerala", Commodity: "Banana", ModalPrice: 1000},
	}
}

func TestRedisPriceCacheRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, 15*time.Minute)

	_, ok, err := c.Get(ctx, "Kerala", "Banana")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "Kerala", "Banana", sampleRecords()))
	assert.True(t, mr.Exists("prices:Kerala:Banana"))

	got, ok, err := c.Get(ctx, "Kerala", "Banana")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleRecords()[1], got[1])
	assert.Equal(t, sampleRecords()[0].ArrivalDate.Unix(), got[0].ArrivalDate.Unix())

	mr.FastForward(16 * time.Minute)
	_, ok, err = c.Get(ctx, "Kerala", "Banana")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPriceCacheKeysAreCaseSensitive(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, "Kerala", "banana", nil))
	require.NoError(t, c.Set(ctx, "Kerala", "Banana", sampleRecords()))
	assert.True(t, mr.Exists("prices:Kerala:banana"))
	assert.True(t, mr.Exists("prices:Kerala:Banana"))

	got, ok, err := c.Get(ctx, "Kerala", "Banana")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got, 2)

	_, ok, err = c.Get(ctx, "Kerala", "BANANA")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPriceCacheEmptyListIsAHit(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, "Kerala", "Cardamom", nil))
	got, ok, err := c.Get(ctx, "Kerala", "Cardamom")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestNewRedisPriceCacheValidation(t *testing.T) {
	_, err := NewRedisPriceCache(nil, time.Minute)
	assert.Error(t, err)

	_, err = NewRedisPriceCache(redis.NewClient(&redis.Options{}), 0)
	assert.Error(t, err)
}

type countingSource struct {
	records []domain.MarketPriceRecord
	err     error
	gate    chan struct{}
	calls   atomic.Int32

	// only, when set, limits answers to that exact commodity.
	only string

	mu  sync.Mutex
	got []string
}

func (s *countingSource) FetchPrices(ctx context.Context, state, commodity string) ([]domain.MarketPriceRecord, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.got = append(s.got, commodity)
	s.mu.Unlock()

	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.only != "" && commodity != s.only {
		return nil, s.err
	}
	return s.records, s.err
}

func (s *countingSource) requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.got)
}

func TestCachedSourceServesFromCache(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCache(t, time.Minute)
	upstream := &countingSource{records: sampleRecords()}
	s, err := NewCachedSource(upstream, c, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := s.FetchPrices(ctx, "Kerala", "Banana")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}
	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestCachedSourceCollapsesConcurrentMisses(t *testing.T) {
	c, _ := newRedisCache(t, time.Minute)
	upstream := &countingSource{records: sampleRecords(), gate: make(chan struct{})}
	s, err := NewCachedSource(upstream, c, nil)
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			got, err := s.FetchPrices(context.Background(), "Kerala", "Ginger")
			assert.NoError(t, err)
			assert.Len(t, got, 2)
		}()
	}

	require.Eventually(t, func() bool { return upstream.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(upstream.gate)
	wg.Wait()

	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestCachedSourceUpstreamErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, time.Minute)
	upstream := &countingSource{err: errors.New("timeout")}
	s, err := NewCachedSource(upstream, c, nil)
	require.NoError(t, err)

	_, err = s.FetchPrices(ctx, "Kerala", "Banana")
	require.Error(t, err)
	assert.False(t, mr.Exists("prices:Kerala:Banana"))
}

func TestCachedSourceKeepsCommodityCase(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCache(t, time.Minute)
	upstream := &countingSource{records: sampleRecords(), only: "Banana"}
	s, err := NewCachedSource(upstream, c, nil)
	require.NoError(t, err)

	got, err := s.FetchPrices(ctx, "Kerala", "banana")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.FetchPrices(ctx, "Kerala", "Banana")
	require.NoError(t, err)
	assert.Len(t, got, 2, "an empty answer for another spelling must not be served")

	assert.Equal(t, []string{"banana", "Banana"}, upstream.requested())
}

func TestCachedSourceFollowerOutlivesCanceledLeader(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	upstream := &countingSource{records: sampleRecords(), gate: make(chan struct{})}
	s, err := NewCachedSource(upstream, c, nil)
	require.NoError(t, err)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := s.FetchPrices(leaderCtx, "Kerala", "Ginger")
		leaderErr <- err
	}()
	require.Eventually(t, func() bool { return upstream.calls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		records []domain.MarketPriceRecord
		err     error
	}
	follower := make(chan result, 1)
	go func() {
		got, err := s.FetchPrices(context.Background(), "Kerala", "Ginger")
		follower <- result{got, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	require.ErrorIs(t, <-leaderErr, context.Canceled)

	close(upstream.gate)
	res := <-follower
	require.NoError(t, res.err)
	assert.Len(t, res.records, 2)
	assert.Equal(t, int32(1), upstream.calls.Load())
	assert.True(t, mr.Exists("prices:Kerala:Ginger"), "the shared fetch still fills the cache")
}

func TestCachedSourceDegradesWhenRedisIsDown(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	mr.Close()

	upstream := &countingSource{records: sampleRecords()}
	s, err := NewCachedSource(upstream, c, nil)
	require.NoError(t, err)

	got, err := s.FetchPrices(context.Background(), "Kerala", "Banana")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
