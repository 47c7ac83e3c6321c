package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mandi-profit-service/internal/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

type cachedRecord struct {
	Market      string     `json:"market"`
	District    string     `json:"district"`
	State       string     `json:"state"`
	Commodity   string     `json:"commodity"`
	ModalPrice  float64    `json:"modal_price"`
	MinPrice    float64    `json:"min_price"`
	MaxPrice    float64    `json:"max_price"`
	ArrivalDate *time.Time `json:"arrival_date,omitempty"`
}

// RedisPriceCache implements ports.PriceCache. Entries expire after TTL.
type RedisPriceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPriceCache(client *redis.Client, ttl time.Duration) (*RedisPriceCache, error) {
	if client == nil {
		return nil, errors.New("new redis price cache: client is nil")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("new redis price cache: ttl must be positive, got %s", ttl)
	}
	return &RedisPriceCache{client: client, ttl: ttl}, nil
}

// Key is the cache key for one state and commodity. Both are used verbatim:
// the price source matches commodity names exactly, so "banana" and "Banana"
// are different queries.
func Key(state, commodity string) string {
	return "prices:" + state + ":" + commodity
}

func (c *RedisPriceCache) Get(ctx context.Context, state, commodity string) ([]domain.MarketPriceRecord, bool, error) {
	raw, err := c.client.Get(ctx, Key(state, commodity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get price cache: %w", err)
	}

	var stored []cachedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("get price cache: decode: %w", err)
	}

	out := make([]domain.MarketPriceRecord, 0, len(stored))
	for _, r := range stored {
		out = append(out, domain.MarketPriceRecord{
			Market:      r.Market,
			District:    r.District,
			State:       r.State,
			Commodity:   r.Commodity,
			ModalPrice:  r.ModalPrice,
			MinPrice:    r.MinPrice,
			MaxPrice:    r.MaxPrice,
			ArrivalDate: r.ArrivalDate,
		})
	}
	return out, true, nil
}

func (c *RedisPriceCache) Set(ctx context.Context, state, commodity string, records []domain.MarketPriceRecord) error {
	stored := make([]cachedRecord, 0, len(records))
	for _, r := range records {
		stored = append(stored, cachedRecord{
			Market:      r.Market,
			District:    r.District,
			State:       r.State,
			Commodity:   r.Commodity,
			ModalPrice:  r.ModalPrice,
			MinPrice:    r.MinPrice,
			MaxPrice:    r.MaxPrice,
			ArrivalDate: r.ArrivalDate,
		})
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("set price cache: encode: %w", err)
	}
	if err := c.client.Set(ctx, Key(state, commodity), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set price cache: %w", err)
	}
	return nil
}
