package agg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richrobo/whyup/internal/schema"
	"github.com/richrobo/whyup/internal/store"
)

func seed(st *store.Store, exchange string, tickers ...schema.Ticker) {
	for _, t := range tickers {
		st.ApplyTicker(exchange, t)
	}
}

func TestExchangeDataFiltersUSDVenues(t *testing.T) {
	st := store.New([]string{"upbit", "binance"})
	a := New(st, "upbit", []string{"binance"})

	seed(st, "upbit",
		schema.Ticker{Symbol: "BTC", Price: 84500000},
		schema.Ticker{Symbol: "XRP", Price: 700},
	)
	seed(st, "binance",
		schema.Ticker{Symbol: "BTC", Price: 84000000},
		schema.Ticker{Symbol: "SOL", Price: 200000},
	)

	data := a.ExchangeData()
	require.Len(t, data["upbit"], 2)
	require.Len(t, data["binance"], 1, "SOL is not listed on the base venue")
	assert.Equal(t, "BTC", data["binance"][0].Symbol)
}

func TestExchangeDataEmptyBaseLeavesUSDUnfiltered(t *testing.T) {
	st := store.New([]string{"upbit", "binance"})
	a := New(st, "upbit", []string{"binance"})

	seed(st, "binance", schema.Ticker{Symbol: "SOL", Price: 200000})

	data := a.ExchangeData()
	require.Len(t, data["binance"], 1)
}

func TestPriceComparisonZeroFillsMissingSymbols(t *testing.T) {
	st := store.New([]string{"upbit", "binance"})
	a := New(st, "upbit", []string{"binance"})

	seed(st, "upbit",
		schema.Ticker{Symbol: "BTC", Price: 84500000},
		schema.Ticker{Symbol: "ETH", Price: 4200000},
		schema.Ticker{Symbol: "XRP", Price: 700},
	)
	seed(st, "binance",
		schema.Ticker{Symbol: "BTC", Price: 84000000},
		schema.Ticker{Symbol: "XRP", Price: 710},
	)

	rows := a.PriceComparison("upbit", "binance")
	require.Len(t, rows, 3, "every base symbol produces a row")

	bySym := make(map[string]schema.Comparison, len(rows))
	for _, r := range rows {
		bySym[r.Symbol] = r
	}

	eth := bySym["ETH"]
	assert.Zero(t, eth.ComparePrice)
	assert.Zero(t, eth.PriceDifference)
	assert.Zero(t, eth.PriceDifferencePercent)
	assert.Equal(t, "ETH", rows[len(rows)-1].Symbol, "zero-difference rows sort last")

	btc := bySym["BTC"]
	assert.Equal(t, 84000000.0, btc.ComparePrice)
	assert.InDelta(t, 500000.0, btc.PriceDifference, 1e-6)
	assert.InDelta(t, 500000.0/84000000.0*100, btc.PriceDifferencePercent, 1e-9)
	assert.Equal(t, "upbit", btc.BaseExchange)
	assert.Equal(t, "binance", btc.CompareExchange)
}

func TestPriceComparisonOrdering(t *testing.T) {
	st := store.New([]string{"upbit", "binance"})
	a := New(st, "upbit", []string{"binance"})

	seed(st, "upbit",
		schema.Ticker{Symbol: "AAA", Price: 100},
		schema.Ticker{Symbol: "BBB", Price: 100},
		schema.Ticker{Symbol: "CCC", Price: 100},
		schema.Ticker{Symbol: "DDD", Price: 100},
	)
	seed(st, "binance",
		schema.Ticker{Symbol: "AAA", Price: 99},  // +1.01%
		schema.Ticker{Symbol: "CCC", Price: 90},  // +11.1%
	)

	rows := a.PriceComparison("upbit", "binance")
	require.Len(t, rows, 4)

	var order []string
	for _, r := range rows {
		order = append(order, r.Symbol)
	}
	assert.Equal(t, []string{"CCC", "AAA", "BBB", "DDD"}, order,
		"non-zero differences first by |pct| desc, then alphabetical")
}

func TestPriceComparisonEnumeratesEitherBase(t *testing.T) {
	st := store.New([]string{"upbit", "bithumb"})
	a := New(st, "upbit", nil)

	seed(st, "upbit",
		schema.Ticker{Symbol: "BTC", Price: 84500000},
		schema.Ticker{Symbol: "ETH", Price: 4200000},
		schema.Ticker{Symbol: "XRP", Price: 700},
	)
	seed(st, "bithumb",
		schema.Ticker{Symbol: "BTC", Price: 84600000},
	)

	forward := a.PriceComparison("upbit", "bithumb")
	require.Len(t, forward, 3, "base upbit enumerates its full symbol set")

	reverse := a.PriceComparison("bithumb", "upbit")
	require.Len(t, reverse, 1, "base bithumb enumerates its own set")
	assert.Equal(t, "BTC", reverse[0].Symbol)
	assert.InDelta(t, 100000.0, reverse[0].PriceDifference, 1e-6)
}

func TestPriceComparisonFilterFollowsRequestedBase(t *testing.T) {
	st := store.New([]string{"upbit", "bithumb", "binance"})
	a := New(st, "upbit", []string{"binance"})

	// KLAY is listed on bithumb and streamed by binance, but not on the
	// configured default base. Comparing against bithumb must bound the
	// USD venue by bithumb's set, not upbit's.
	seed(st, "upbit", schema.Ticker{Symbol: "BTC", Price: 84500000})
	seed(st, "bithumb",
		schema.Ticker{Symbol: "BTC", Price: 84600000},
		schema.Ticker{Symbol: "KLAY", Price: 250},
	)
	seed(st, "binance",
		schema.Ticker{Symbol: "BTC", Price: 84000000},
		schema.Ticker{Symbol: "KLAY", Price: 240},
	)

	rows := a.PriceComparison("bithumb", "binance")
	require.Len(t, rows, 2)

	bySym := make(map[string]schema.Comparison, len(rows))
	for _, r := range rows {
		bySym[r.Symbol] = r
	}
	klay := bySym["KLAY"]
	assert.Equal(t, 240.0, klay.ComparePrice)
	assert.InDelta(t, 10.0, klay.PriceDifference, 1e-9)
}

func TestPriceComparisonSkipsZeroPricedBase(t *testing.T) {
	st := store.New([]string{"binance", "upbit"})
	a := New(st, "upbit", []string{"binance"})

	// A USD feed without an FX rate reports zero prices; those rows would
	// be nonsense comparisons.
	seed(st, "binance", schema.Ticker{Symbol: "BTC", Price: 0})
	seed(st, "upbit", schema.Ticker{Symbol: "BTC", Price: 84500000})

	rows := a.PriceComparison("binance", "upbit")
	assert.Empty(t, rows)
}

func TestSetBaseExchange(t *testing.T) {
	st := store.New([]string{"upbit", "bithumb", "binance"})
	a := New(st, "upbit", []string{"binance"})

	seed(st, "bithumb", schema.Ticker{Symbol: "ETH", Price: 4200000})
	seed(st, "binance",
		schema.Ticker{Symbol: "ETH", Price: 4100000},
		schema.Ticker{Symbol: "BTC", Price: 84000000},
	)

	a.SetBaseExchange("bithumb")
	data := a.ExchangeData()
	require.Len(t, data["binance"], 1)
	assert.Equal(t, "ETH", data["binance"][0].Symbol)
}

func TestLoadingAndErrPassThrough(t *testing.T) {
	st := store.New([]string{"upbit", "binance"})
	a := New(st, "upbit", []string{"binance"})

	assert.True(t, a.Loading())
	seed(st, "upbit", schema.Ticker{Symbol: "BTC", Price: 1})
	assert.True(t, a.Loading(), "binance still waiting")

	st.SetError("binance", "binance: connection lost")
	assert.False(t, a.Loading())
	assert.Equal(t, "binance: connection lost", a.Err())
}

func TestBaseExchangeSymbols(t *testing.T) {
	st := store.New([]string{"upbit"})
	a := New(st, "upbit", nil)

	seed(st, "upbit",
		schema.Ticker{Symbol: "BTC", ChangePercent24h: 1},
		schema.Ticker{Symbol: "ETH", ChangePercent24h: 2},
	)
	assert.ElementsMatch(t, []string{"BTC", "ETH"}, a.BaseExchangeSymbols("upbit"))
}
