// Package agg merges the per-exchange snapshots into the cross-exchange
// view: the keyed-by-exchange data set, combined loading/error state, and
// price comparisons for a base/compare pair.
package agg

import (
	"math"
	"sort"
	"sync"

	"github.com/richrobo/whyup/internal/schema"
	"github.com/richrobo/whyup/internal/store"
)

type Aggregator struct {
	store *store.Store
	usd   map[string]bool

	mu   sync.RWMutex
	base string
}

// New wires the aggregator over the snapshot store. baseExchange is the
// KRW venue whose symbol universe bounds the USD venues' visible sets;
// usdExchanges lists the venues subject to that filter.
func New(st *store.Store, baseExchange string, usdExchanges []string) *Aggregator {
	usd := make(map[string]bool, len(usdExchanges))
	for _, ex := range usdExchanges {
		usd[ex] = true
	}
	return &Aggregator{store: st, base: baseExchange, usd: usd}
}

// SetBaseExchange switches the venue whose symbol set bounds the USD
// venues (the "base exchange" selector).
func (a *Aggregator) SetBaseExchange(exchange string) {
	a.mu.Lock()
	a.base = exchange
	a.mu.Unlock()
}

func (a *Aggregator) baseExchange() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.base
}

// ExchangeData returns every exchange's current ticker set, with USD
// venues filtered down to symbols the selected base venue lists.
func (a *Aggregator) ExchangeData() map[string][]schema.Ticker {
	return a.exchangeData(a.baseExchange())
}

// exchangeData bounds the USD venues' visible sets to the symbols the
// given base venue lists. The filter keeps the comparison universe
// economically meaningful; an empty base set leaves USD venues
// unfiltered.
func (a *Aggregator) exchangeData(base string) map[string][]schema.Ticker {
	snaps := a.store.Snapshots()

	baseSymbols := make(map[string]bool)
	if snap, ok := snaps[base]; ok {
		for _, t := range snap.Tickers {
			baseSymbols[t.Symbol] = true
		}
	}

	out := make(map[string][]schema.Ticker, len(snaps))
	for ex, snap := range snaps {
		if a.usd[ex] && len(baseSymbols) > 0 {
			kept := make([]schema.Ticker, 0, len(snap.Tickers))
			for _, t := range snap.Tickers {
				if baseSymbols[t.Symbol] {
					kept = append(kept, t)
				}
			}
			out[ex] = kept
			continue
		}
		out[ex] = snap.Tickers
	}
	return out
}

// Loading reports whether any feed is still waiting for its first ticker.
func (a *Aggregator) Loading() bool { return a.store.Loading() }

// Err joins every feed's error. Informational only; healthy exchanges
// remain usable regardless.
func (a *Aggregator) Err() string { return a.store.Err() }

// PriceComparison enumerates the base exchange's symbol set against the
// compare exchange. Symbols absent from the compare side yield zero-filled
// comparison fields. Rows with a real price difference sort first by
// descending absolute percent difference; the rest sort alphabetically.
func (a *Aggregator) PriceComparison(base, compare string) []schema.Comparison {
	data := a.exchangeData(base)
	baseData := data[base]
	compareData := data[compare]

	bySymbol := make(map[string]schema.Ticker, len(compareData))
	for _, t := range compareData {
		bySymbol[t.Symbol] = t
	}

	rows := make([]schema.Comparison, 0, len(baseData))
	for _, bt := range baseData {
		if bt.Price <= 0 {
			continue
		}
		row := schema.Comparison{
			Symbol:           bt.Symbol,
			Name:             bt.Name,
			KoreanName:       bt.KoreanName,
			EnglishName:      bt.EnglishName,
			BasePrice:        bt.Price,
			BaseExchange:     base,
			CompareExchange:  compare,
			Change24h:        bt.Change24h,
			ChangePercent24h: bt.ChangePercent24h,
			High52w:          bt.High52w,
			Low52w:           bt.Low52w,
			Volume:           bt.Volume,
		}
		if ct, ok := bySymbol[bt.Symbol]; ok && ct.Price > 0 {
			row.ComparePrice = ct.Price
			row.PriceDifference = bt.Price - ct.Price
			row.PriceDifferencePercent = row.PriceDifference / ct.Price * 100
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rows[i].PriceDifference, rows[j].PriceDifference
		if di != 0 && dj == 0 {
			return true
		}
		if di == 0 && dj != 0 {
			return false
		}
		if di != 0 && dj != 0 {
			return math.Abs(rows[i].PriceDifferencePercent) > math.Abs(rows[j].PriceDifferencePercent)
		}
		return rows[i].Symbol < rows[j].Symbol
	})
	return rows
}

// BaseExchangeSymbols lists the given exchange's current symbols, used to
// drive the compare-exchange selector.
func (a *Aggregator) BaseExchangeSymbols(exchange string) []string {
	snap := a.store.Snapshot(exchange)
	out := make([]string, 0, len(snap.Tickers))
	for _, t := range snap.Tickers {
		out = append(out, t.Symbol)
	}
	return out
}
