package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/application"
	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

const keyPrefix = "price:latest:"

// PriceCache keeps the most recent snapshot per symbol with a TTL, written
// through by the aggregator and read by the price service.
type PriceCache struct {
	Client *redis.Client
	TTL    time.Duration
}

var _ application.PriceCache = (*PriceCache)(nil)

func New(client *redis.Client, ttl time.Duration) *PriceCache {
	return &PriceCache{Client: client, TTL: ttl}
}

type cachedSnapshot struct {
	Symbol    string          `json:"symbol"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"ts"`
}

func (c *PriceCache) Set(ctx context.Context, s domain.PriceSnapshot) error {
	payload, err := json.Marshal(cachedSnapshot{
		Symbol: s.Symbol, Bid: s.Bid, Ask: s.Ask, Source: s.Source, Timestamp: s.Timestamp,
	})
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, keyPrefix+s.Symbol, payload, c.TTL).Err()
}

func (c *PriceCache) Get(ctx context.Context, symbol string) (domain.PriceSnapshot, bool, error) {
	raw, err := c.Client.Get(ctx, keyPrefix+symbol).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.PriceSnapshot{}, false, nil
		}
		return domain.PriceSnapshot{}, false, err
	}
	var cached cachedSnapshot
	if err := json.Unmarshal(raw, &cached); err != nil {
		return domain.PriceSnapshot{}, false, err
	}
	return domain.PriceSnapshot{
		Symbol:    cached.Symbol,
		Bid:       cached.Bid,
		Ask:       cached.Ask,
		Source:    cached.Source,
		Timestamp: cached.Timestamp,
	}, true, nil
}
