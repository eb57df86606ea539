// Package mock provides a scripted feed for dry runs: no network, just
// periodic tickers with a small price walk.
package mock

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/richrobo/whyup/internal/exchange"
	"github.com/richrobo/whyup/internal/names"
	"github.com/richrobo/whyup/internal/schema"
)

type Feed struct {
	name     string
	symbols  []string
	sink     exchange.Sink
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	tick   int
}

func New(name string, symbols []string, sink exchange.Sink) *Feed {
	return &Feed{
		name:     name,
		symbols:  symbols,
		sink:     sink,
		interval: 500 * time.Millisecond,
	}
}

func (f *Feed) Name() string { return f.name }

func (f *Feed) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	f.mu.Lock()
	f.cancel = cancel
	f.mu.Unlock()

	go func() {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		f.emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f.emit()
			}
		}
	}()
}

func (f *Feed) Close() error {
	f.mu.Lock()
	cancel := f.cancel
	f.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

func (f *Feed) emit() {
	f.mu.Lock()
	f.tick++
	n := f.tick
	f.mu.Unlock()

	for i, sym := range f.symbols {
		base := 1_000_000 * float64(i+1)
		drift := math.Sin(float64(n)/10) * base * 0.01
		price := base + drift
		f.sink.ApplyTicker(f.name, schema.Ticker{
			Symbol:           sym,
			Name:             names.English(sym),
			KoreanName:       names.Korean(sym),
			EnglishName:      names.English(sym),
			Price:            price,
			Change24h:        drift,
			ChangePercent24h: drift / base * 100,
			Volume:           base * 1000,
			High24h:          base * 1.02,
			Low24h:           base * 0.98,
		})
	}
}
