// Package bithumb implements the Bithumb KRW-market ticker protocol. Same
// catalog-then-subscribe shape as Upbit, but the stream uses the SIMPLE
// format with abbreviated field names.
package bithumb

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
		marketURL: "https://api.bithumb.com/v1/market/all",
		socketURL: "wss://ws-api.bithumb.com/websocket/v1",
	}
}

func (p *Protocol) Name() string { return "bithumb" }
func (p *Protocol) URL() string  { return p.socketURL }

type market struct {
	Market      string `json:"market"`
	KoreanName  string `json:"korean_name"`
	EnglishName string `json:"english_name"`
}

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

func (p *Protocol) SubscribePlan(cat *exchange.Catalog) []exchange.OutboundMessage {
	if cat == nil || len(cat.Symbols) == 0 {
		return nil
	}
	codes := make([]string, 0, len(cat.Symbols))
	for _, sym := range cat.Symbols {
		codes = append(codes, krwPrefix+sym)
	}
	payload, err := json.Marshal([]any{
		map[string]string{"ticket": "whyup-bithumb"},
		map[string]any{"type": "ticker", "codes": codes},
		map[string]string{"format": "SIMPLE"},
	})
	if err != nil {
		return nil
	}
	return []exchange.OutboundMessage{{Payload: payload}}
}

// ticker is the SIMPLE-format frame: ty=type, cd=code, tp=trade price,
// scp/scr=signed change price/rate, atp24h=24h traded value, hp/lp=24h
// extremes, h52wp/l52wp=52-week extremes.
type ticker struct {
	Ty     string  `json:"ty"`
	Cd     string  `json:"cd"`
	Tp     float64 `json:"tp"`
	Scp    float64 `json:"scp"`
	Scr    float64 `json:"scr"`
	Atp24h float64 `json:"atp24h"`
	Hp     float64 `json:"hp"`
	Lp     float64 `json:"lp"`
	H52wp  float64 `json:"h52wp"`
	L52wp  float64 `json:"l52wp"`
}

func (p *Protocol) Decode(raw []byte, cat *exchange.Catalog) ([]schema.Ticker, error) {
	var tk ticker
	if err := json.Unmarshal(raw, &tk); err != nil {
		return nil, fmt.Errorf("decode ticker: %w", err)
	}
	if tk.Ty != "ticker" {
		return nil, nil
	}
	sym := strings.TrimPrefix(tk.Cd, krwPrefix)
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
		Price:            tk.Tp,
		Change24h:        tk.Scp,
		ChangePercent24h: tk.Scr * 100,
		Volume:           tk.Atp24h,
		High24h:          tk.Hp,
		Low24h:           tk.Lp,
		High52w:          tk.H52wp,
		Low52w:           tk.L52wp,
	}}, nil
}
