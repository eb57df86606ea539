package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/richrobo/whyup/internal/schema"
)

func testClient(t *testing.T) *Latest {
	t.Helper()
	addr := os.Getenv("KIMP_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	c := NewLatest(rdb, time.Minute, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		t.Skipf("redis unavailable at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return c
}

func TestSetGetTicker(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	want := schema.Ticker{
		Symbol:           "BTC",
		KoreanName:       "비트코인",
		EnglishName:      "Bitcoin",
		Price:            84500000,
		ChangePercent24h: 5,
	}
	require.NoError(t, c.SetTicker(ctx, "upbit", want))

	got, err := c.GetTicker(ctx, "upbit", "BTC")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetMissingTicker(t *testing.T) {
	c := testClient(t)
	_, err := c.GetTicker(context.Background(), "upbit", "NOPE")
	assert.ErrorIs(t, err, redis.Nil)
}
