// Package bybit implements the Bybit spot v5 ticker protocol: per-symbol
// subscriptions issued with a small stagger, frames discriminated by the
// "tickers." topic prefix, prices converted to KRW at decode time.
package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/richrobo/whyup/internal/exchange"
	"github.com/richrobo/whyup/internal/names"
	"github.com/richrobo/whyup/internal/schema"
)

const (
	quoteSuffix    = "USDT"
	topicPrefix    = "tickers."
	subscribeDelay = 100 * time.Millisecond
)

type Protocol struct {
	rates     exchange.RateSource
	symbols   []string
	socketURL string
}

// New builds the protocol for a fixed symbol roster (e.g. BTCUSDT). Bybit
// spot has no public catalog phase here; the roster comes from config.
func New(rates exchange.RateSource, symbols []string) *Protocol {
	return &Protocol{
		rates:     rates,
		symbols:   symbols,
		socketURL: "wss://stream.bybit.com/v5/public/spot",
	}
}

func (p *Protocol) Name() string { return "bybit" }
func (p *Protocol) URL() string  { return p.socketURL }

func (p *Protocol) FetchCatalog(ctx context.Context) (*exchange.Catalog, error) {
	return nil, nil
}

// SubscribePlan issues one subscribe per symbol, staggered to respect the
// venue's message rate limit. The first goes out immediately.
func (p *Protocol) SubscribePlan(_ *exchange.Catalog) []exchange.OutboundMessage {
	plan := make([]exchange.OutboundMessage, 0, len(p.symbols))
	for i, sym := range p.symbols {
		payload, err := json.Marshal(map[string]any{
			"op":   "subscribe",
			"args": []string{topicPrefix + sym},
		})
		if err != nil {
			continue
		}
		var delay time.Duration
		if i > 0 {
			delay = subscribeDelay
		}
		plan = append(plan, exchange.OutboundMessage{Payload: payload, Delay: delay})
	}
	return plan
}

type envelope struct {
	Topic   string `json:"topic"`
	Success *bool  `json:"success"`
	RetMsg  string `json:"ret_msg"`
	Data    struct {
		Symbol       string `json:"symbol"`
		LastPrice    string `json:"lastPrice"`
		PrevPrice24h string `json:"prevPrice24h"`
		Price24hPcnt string `json:"price24hPcnt"`
		HighPrice24h string `json:"highPrice24h"`
		LowPrice24h  string `json:"lowPrice24h"`
		Turnover24h  string `json:"turnover24h"`
	} `json:"data"`
}

func (p *Protocol) Decode(raw []byte, _ *exchange.Catalog) ([]schema.Ticker, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	// Subscription acks carry success/ret_msg instead of a topic.
	if env.Success != nil || env.RetMsg != "" {
		return nil, nil
	}
	if !strings.HasPrefix(env.Topic, topicPrefix) {
		return nil, nil
	}
	// Delta frames may omit lastPrice; there is nothing to merge then.
	if env.Data.LastPrice == "" {
		return nil, nil
	}

	price, err := strconv.ParseFloat(env.Data.LastPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lastPrice %q: %w", env.Data.LastPrice, err)
	}
	prev, _ := strconv.ParseFloat(env.Data.PrevPrice24h, 64)
	pcnt, _ := strconv.ParseFloat(env.Data.Price24hPcnt, 64)
	high, _ := strconv.ParseFloat(env.Data.HighPrice24h, 64)
	low, _ := strconv.ParseFloat(env.Data.LowPrice24h, 64)
	turnover, _ := strconv.ParseFloat(env.Data.Turnover24h, 64)

	sym := strings.TrimSuffix(env.Data.Symbol, quoteSuffix)
	change := price - prev
	rate := p.rates.Rate()

	return []schema.Ticker{{
		Symbol:           sym,
		Name:             names.English(sym),
		KoreanName:       names.Korean(sym),
		EnglishName:      names.English(sym),
		Price:            price * rate,
		Change24h:        change * rate,
		ChangePercent24h: pcnt * 100,
		Volume:           turnover * rate,
		High24h:          high * rate,
		Low24h:           low * rate,
	}}, nil
}
