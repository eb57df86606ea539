// Package upbit implements the Upbit KRW-market ticker protocol: a REST
// market catalog followed by one combined websocket subscription.
package upbit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/richrobo/whyup/internal/exchange"
	"github.com/richrobo/whyup/internal/names"
	"github.com/richrobo/whyup/internal/schema"
)

const krwPrefix = "KRW-"

type Protocol struct {
	client    *http.Client
	marketURL string
	socketURL string
}

func New() *Protocol {
	return &Protocol{
		client:    &http.Client{Timeout: 10 * time.Second},
		marketURL: "https://api.upbit.com/v1/market/all",
		socketURL: "wss://api.upbit.com/websocket/v1",
	}
}

func (p *Protocol) Name() string { return "upbit" }
func (p *Protocol) URL() string  { return p.socketURL }

type market struct {
	Market      string `json:"market"`
	KoreanName  string `json:"korean_name"`
	EnglishName string `json:"english_name"`
}

// FetchCatalog lists every KRW-quoted market and its display names. The
// subscription payload needs the full roster, so this runs before connect.
func (p *Protocol) FetchCatalog(ctx context.Context) (*exchange.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.marketURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market list status %d", resp.StatusCode)
	}

	var markets []market
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, fmt.Errorf("decode market list: %w", err)
	}

	cat := &exchange.Catalog{Names: make(map[string]schema.MarketName)}
	for _, m := range markets {
		if !strings.HasPrefix(m.Market, krwPrefix) {
			continue
		}
		sym := strings.TrimPrefix(m.Market, krwPrefix)
		cat.Symbols = append(cat.Symbols, sym)
		cat.Names[sym] = schema.MarketName{Korean: m.KoreanName, English: m.EnglishName}
	}
	return cat, nil
}

// SubscribePlan returns the single combined ticker subscription:
// [{ticket},{type:"ticker",codes:[...]},{format:"DEFAULT"}].
func (p *Protocol) SubscribePlan(cat *exchange.Catalog) []exchange.OutboundMessage {
	if cat == nil || len(cat.Symbols) == 0 {
		return nil
	}
	codes := make([]string, 0, len(cat.Symbols))
	for _, sym := range cat.Symbols {
		codes = append(codes, krwPrefix+sym)
	}
	payload, err := json.Marshal([]any{
		map[string]string{"ticket": "whyup-upbit"},
		map[string]any{"type": "ticker", "codes": codes},
		map[string]string{"format": "DEFAULT"},
	})
	if err != nil {
		return nil
	}
	return []exchange.OutboundMessage{{Payload: payload}}
}

type ticker struct {
	Type               string  `json:"type"`
	Code               string  `json:"code"`
	TradePrice         float64 `json:"trade_price"`
	SignedChangePrice  float64 `json:"signed_change_price"`
	SignedChangeRate   float64 `json:"signed_change_rate"`
	AccTradePrice24h   float64 `json:"acc_trade_price_24h"`
	HighPrice          float64 `json:"high_price"`
	LowPrice           float64 `json:"low_price"`
	Highest52WeekPrice float64 `json:"highest_52_week_price"`
	Lowest52WeekPrice  float64 `json:"lowest_52_week_price"`
}

// Decode maps one binary-framed JSON ticker frame. Non-ticker frames
// (status, subscription echoes) decode to nothing.
func (p *Protocol) Decode(raw []byte, cat *exchange.Catalog) ([]schema.Ticker, error) {
	var tk ticker
	if err := json.Unmarshal(raw, &tk); err != nil {
		return nil, fmt.Errorf("decode ticker: %w", err)
	}
	if tk.Type != "ticker" {
		return nil, nil
	}
	sym := strings.TrimPrefix(tk.Code, krwPrefix)
	name := schema.MarketName{Korean: sym, English: sym}
	if cat != nil {
		if n, ok := cat.Names[sym]; ok {
			name = n
		}
	}
	return []schema.Ticker{{
		Symbol:           sym,
		Name:             names.English(sym),
		KoreanName:       name.Korean,
		EnglishName:      name.English,
		Price:            tk.TradePrice,
		Change24h:        tk.SignedChangePrice,
		ChangePercent24h: tk.SignedChangeRate * 100,
		Volume:           tk.AccTradePrice24h,
		High24h:          tk.HighPrice,
		Low24h:           tk.LowPrice,
		High52w:          tk.Highest52WeekPrice,
		Low52w:           tk.Lowest52WeekPrice,
	}}, nil
}
