// Package binance implements the Binance all-market ticker firehose. There
// is no catalog and no subscription: the endpoint pushes a JSON array of
// every market's 24h ticker, filtered client-side to USDT pairs and
// converted to KRW at decode time.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/richrobo/whyup/internal/exchange"
	"github.com/richrobo/whyup/internal/names"
	"github.com/richrobo/whyup/internal/schema"
)

const quoteSuffix = "USDT"

type Protocol struct {
	rates     exchange.RateSource
	socketURL string
}

func New(rates exchange.RateSource) *Protocol {
	return &Protocol{
		rates:     rates,
		socketURL: "wss://stream.binance.com:9443/ws/!ticker@arr",
	}
}

func (p *Protocol) Name() string { return "binance" }
func (p *Protocol) URL() string  { return p.socketURL }

func (p *Protocol) FetchCatalog(ctx context.Context) (*exchange.Catalog, error) {
	return nil, nil
}

func (p *Protocol) SubscribePlan(cat *exchange.Catalog) []exchange.OutboundMessage {
	return nil
}

type ticker struct {
	Symbol         string `json:"s"`
	LastPrice      string `json:"c"`
	PriceChange    string `json:"p"`
	PriceChangePct string `json:"P"`
	QuoteVolume    string `json:"q"`
	HighPrice      string `json:"h"`
	LowPrice       string `json:"l"`
}

// Decode handles one firehose frame: an array of per-market tickers.
// Non-array frames are ignored. Entries that fail numeric parsing are
// skipped individually; the frame itself still succeeds.
func (p *Protocol) Decode(raw []byte, _ *exchange.Catalog) ([]schema.Ticker, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, nil
	}
	var batch []ticker
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("decode ticker array: %w", err)
	}

	rate := p.rates.Rate()
	out := make([]schema.Ticker, 0, len(batch))
	for _, tk := range batch {
		if !strings.HasSuffix(tk.Symbol, quoteSuffix) {
			continue
		}
		sym := strings.TrimSuffix(tk.Symbol, quoteSuffix)
		if sym == "" {
			continue
		}
		price, err := strconv.ParseFloat(tk.LastPrice, 64)
		if err != nil {
			continue
		}
		change, _ := strconv.ParseFloat(tk.PriceChange, 64)
		pct, _ := strconv.ParseFloat(tk.PriceChangePct, 64)
		volume, _ := strconv.ParseFloat(tk.QuoteVolume, 64)
		high, _ := strconv.ParseFloat(tk.HighPrice, 64)
		low, _ := strconv.ParseFloat(tk.LowPrice, 64)

		// rate 0 zeroes every converted field rather than passing raw USD
		// off as KRW. 52-week extremes are not reported by this feed.
		out = append(out, schema.Ticker{
			Symbol:           sym,
			Name:             names.English(sym),
			KoreanName:       names.Korean(sym),
			EnglishName:      names.English(sym),
			Price:            price * rate,
			Change24h:        change * rate,
			ChangePercent24h: pct,
			Volume:           volume * rate,
			High24h:          high * rate,
			Low24h:           low * rate,
		})
	}
	return out, nil
}
