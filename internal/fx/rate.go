// Package fx provides the USD→KRW conversion rate used by USD-quoted
// exchange feeds. The rate is scraped from the Google Finance quote page
// through a CORS proxy, refreshed on a timer, and published with a 0
// sentinel when unavailable.
package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/richrobo/whyup/internal/metrics"
	"github.com/richrobo/whyup/internal/schema"
)

const quotePage = "https://www.google.com/finance/quote/USD-KRW"

// Accepted band for an extracted USD/KRW value. Anything outside is a
// scrape artifact, not a rate.
const (
	minRate = 1000
	maxRate = 2000
)

// Extraction patterns in priority order. The first match inside the
// plausibility band wins.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`data-last-price="([0-9.]+)"`),
	regexp.MustCompile(`"lastPrice":"([0-9.]+)"`),
	regexp.MustCompile(`class="YMlKec fxKbKc">([0-9,]+\.?[0-9]*)<`),
	regexp.MustCompile(`1 USD = ([0-9,]+\.?[0-9]*) KRW`),
	regexp.MustCompile(`(\d{1,3},\d{3}\.\d{4})`),
}

type Provider struct {
	log      *zap.Logger
	client   *http.Client
	proxyURL string
	interval time.Duration
	metrics  *metrics.Collector

	mu      sync.RWMutex
	rate    float64
	loading bool
	errMsg  string
}

func New(proxyURL string, interval time.Duration, log *zap.Logger, mc *metrics.Collector) *Provider {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Provider{
		log:      log,
		client:   &http.Client{Timeout: 15 * time.Second},
		proxyURL: proxyURL,
		interval: interval,
		metrics:  mc,
		loading:  true,
	}
}

// Start fetches the rate once, then refreshes every interval until ctx is
// cancelled. All fetching happens on the provider's own goroutine so a
// slow proxy never stalls the caller. Failures leave the 0 sentinel in
// place.
func (p *Provider) Start(ctx context.Context) {
	go func() {
		p.refresh(ctx)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.refresh(ctx)
			}
		}
	}()
}

// Rate returns the current USD/KRW rate, 0 when unavailable.
func (p *Provider) Rate() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rate
}

func (p *Provider) Status() schema.RateStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return schema.RateStatus{Rate: p.rate, Loading: p.loading, Error: p.errMsg}
}

func (p *Provider) refresh(ctx context.Context) {
	rate, err := p.fetch(ctx)
	p.mu.Lock()
	p.loading = false
	if err != nil {
		p.rate = 0
		p.errMsg = fmt.Sprintf("usd/krw rate unavailable: %v", err)
	} else {
		p.rate = rate
		p.errMsg = ""
	}
	p.mu.Unlock()
	p.metrics.SetFxRate(p.Rate())
	if err != nil {
		p.log.Warn("rate fetch failed", zap.Error(err))
		return
	}
	p.log.Debug("rate updated", zap.Float64("rate", rate))
}

func (p *Provider) fetch(ctx context.Context) (float64, error) {
	reqURL := p.proxyURL + "?url=" + url.QueryEscape(quotePage)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("proxy status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return 0, err
	}
	var proxied struct {
		Contents string `json:"contents"`
	}
	if err := json.Unmarshal(body, &proxied); err != nil {
		return 0, fmt.Errorf("decode proxy payload: %w", err)
	}
	return parseRate(proxied.Contents)
}

// parseRate tries each extraction pattern against the quote page HTML and
// returns the first plausible value, rounded to one decimal.
func parseRate(html string) (float64, error) {
	if strings.TrimSpace(html) == "" {
		return 0, errors.New("empty quote page")
	}
	for _, pat := range patterns {
		match := pat.FindStringSubmatch(html)
		if match == nil {
			continue
		}
		raw := strings.ReplaceAll(match[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if v <= minRate || v >= maxRate {
			continue
		}
		return math.Round(v*10) / 10, nil
	}
	return 0, errors.New("no rate found in quote page")
}
