// Package cache publishes the latest canonical ticker per (exchange,
// symbol) to Redis so other site services can read current prices without
// holding a feed open. Values expire; this is a cache, not storage.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/richrobo/whyup/internal/schema"
)

type Latest struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewLatest(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Latest {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Latest{rdb: rdb, ttl: ttl, log: log}
}

func key(exchange, symbol string) string {
	return fmt.Sprintf("ticker:%s:%s", exchange, symbol)
}

func (c *Latest) SetTicker(ctx context.Context, exchange string, t schema.Ticker) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(exchange, t.Symbol), payload, c.ttl).Err()
}

func (c *Latest) GetTicker(ctx context.Context, exchange, symbol string) (schema.Ticker, error) {
	raw, err := c.rdb.Get(ctx, key(exchange, symbol)).Bytes()
	if err != nil {
		return schema.Ticker{}, err
	}
	var t schema.Ticker
	if err := json.Unmarshal(raw, &t); err != nil {
		return schema.Ticker{}, err
	}
	return t, nil
}

func (c *Latest) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
