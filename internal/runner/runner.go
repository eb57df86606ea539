// Package runner composes the engine: fx provider, one stream per
// configured exchange, the snapshot store, the aggregator, the HTTP
// surface, and the optional redis cache and terminal dashboard.
package runner

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/richrobo/whyup/internal/agg"
	"github.com/richrobo/whyup/internal/cache"
	"github.com/richrobo/whyup/internal/config"
	"github.com/richrobo/whyup/internal/exchange"
	"github.com/richrobo/whyup/internal/exchange/binance"
	"github.com/richrobo/whyup/internal/exchange/bithumb"
	"github.com/richrobo/whyup/internal/exchange/bybit"
	"github.com/richrobo/whyup/internal/exchange/mock"
	"github.com/richrobo/whyup/internal/exchange/upbit"
	"github.com/richrobo/whyup/internal/fx"
	"github.com/richrobo/whyup/internal/metrics"
	"github.com/richrobo/whyup/internal/schema"
	"github.com/richrobo/whyup/internal/server"
	"github.com/richrobo/whyup/internal/store"
	"github.com/richrobo/whyup/internal/ui"
)

// feed is the common lifecycle of a live stream or the mock.
type feed interface {
	Name() string
	Start(ctx context.Context)
	Close() error
}

// usdExchanges are the venues quoted in USD, filtered against the base
// venue's symbol universe and converted through the fx rate.
var usdExchanges = []string{"binance", "bybit"}

type Runner struct {
	cfg   config.Config
	log   *zap.Logger
	store *store.Store
	agg   *agg.Aggregator
	fx    *fx.Provider
	feeds []feed
}

func New(cfg config.Config, log *zap.Logger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Start brings everything up and blocks until ctx is cancelled (or, with
// the TUI enabled, until the dashboard exits).
func (r *Runner) Start(ctx context.Context) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	mc := metrics.New(registry)

	r.store = store.New(r.cfg.Exchanges)
	r.agg = agg.New(r.store, r.cfg.BaseExchange, usdExchanges)
	r.fx = fx.New(r.cfg.FxProxyURL, r.cfg.FxRefresh, r.log.Named("fx"), mc)
	r.fx.Start(ctx)

	sink := r.buildSink(ctx)
	r.feeds = r.buildFeeds(sink, mc)
	for _, f := range r.feeds {
		r.log.Info("starting feed", zap.String("exchange", f.Name()))
		f.Start(ctx)
	}

	srv := server.New(r.cfg.HTTPAddr, r.cfg.Exchanges, r.cfg.BaseExchange,
		r.agg, r.fx, r.store, mc, registry, r.log)
	srv.Start(ctx)

	if r.cfg.TUI {
		compare := "binance"
		return ui.NewDashboard(r.agg, r.fx, r.cfg.BaseExchange, compare).Run(ctx)
	}
	<-ctx.Done()
	return ctx.Err()
}

// Stop tears the feeds down: reconnect timers cancelled, transports
// closed.
func (r *Runner) Stop() {
	for _, f := range r.feeds {
		if err := f.Close(); err != nil {
			r.log.Warn("feed close failed", zap.String("exchange", f.Name()), zap.Error(err))
		}
	}
}

func (r *Runner) buildFeeds(sink exchange.Sink, mc *metrics.Collector) []feed {
	streamCfg := exchange.StreamConfig{
		Sink:           sink,
		Logger:         r.log,
		Metrics:        mc,
		ReconnectDelay: r.cfg.ReconnectDelay,
	}

	feeds := make([]feed, 0, len(r.cfg.Exchanges))
	for _, name := range r.cfg.Exchanges {
		if r.cfg.DryRun {
			feeds = append(feeds, mock.New(name, []string{"BTC", "ETH", "XRP"}, sink))
			continue
		}
		var proto exchange.Protocol
		switch name {
		case "upbit":
			proto = upbit.New()
		case "bithumb":
			proto = bithumb.New()
		case "binance":
			proto = binance.New(r.fx)
		case "bybit":
			proto = bybit.New(r.fx, r.cfg.BybitSymbols)
		default:
			r.log.Warn("unknown exchange, skipping", zap.String("exchange", name))
			continue
		}
		feeds = append(feeds, exchange.NewStream(proto, streamCfg))
	}
	return feeds
}

// buildSink returns the store, optionally teed into the redis latest-price
// cache. Cache writes go through a drop-on-full channel so a slow redis
// can never stall a feed.
func (r *Runner) buildSink(ctx context.Context) exchange.Sink {
	if r.cfg.RedisAddr == "" {
		return r.store
	}
	rdb := redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr, DB: r.cfg.RedisDB})
	latest := cache.NewLatest(rdb, r.cfg.CacheTTL, r.log.Named("cache"))
	if err := latest.Ping(ctx); err != nil {
		r.log.Warn("redis unreachable, cache disabled", zap.Error(err))
		return r.store
	}

	tee := &cacheSink{
		store: r.store,
		ch:    make(chan cacheEntry, 1024),
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-tee.ch:
				if err := latest.SetTicker(ctx, e.exchange, e.ticker); err != nil {
					r.log.Debug("cache write failed", zap.Error(err))
				}
			}
		}
	}()
	return tee
}

type cacheEntry struct {
	exchange string
	ticker   schema.Ticker
}

type cacheSink struct {
	store *store.Store
	ch    chan cacheEntry
}

func (s *cacheSink) ApplyTicker(exchange string, t schema.Ticker) {
	s.store.ApplyTicker(exchange, t)
	select {
	case s.ch <- cacheEntry{exchange: exchange, ticker: t}:
	default:
	}
}

func (s *cacheSink) SetError(exchange, msg string) { s.store.SetError(exchange, msg) }
func (s *cacheSink) ClearError(exchange string)    { s.store.ClearError(exchange) }
