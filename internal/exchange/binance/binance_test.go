package binance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRate float64

func (r fixedRate) Rate() float64 { return float64(r) }

func TestDecodeFirehoseFrame(t *testing.T) {
	p := New(fixedRate(1300))

	raw := []byte(`[
		{"s":"BTCUSDT","c":"65000","p":"3095.24","P":"5.0","q":"1000000","h":"66000","l":"64000"},
		{"s":"ETHBTC","c":"0.05","p":"0","P":"0","q":"0","h":"0","l":"0"},
		{"s":"ETHUSDT","c":"3200","p":"-100","P":"-3.03","q":"500000","h":"3300","l":"3100"}
	]`)

	out, err := p.Decode(raw, nil)
	require.NoError(t, err)
	require.Len(t, out, 2, "non-USDT pairs filtered out")

	btc := out[0]
	assert.Equal(t, "BTC", btc.Symbol)
	assert.InDelta(t, 65000*1300.0, btc.Price, 1e-6)
	assert.InDelta(t, 3095.24*1300.0, btc.Change24h, 1e-6)
	assert.InDelta(t, 5.0, btc.ChangePercent24h, 1e-9, "percent is not converted")
	assert.InDelta(t, 1000000*1300.0, btc.Volume, 1e-6)
	assert.False(t, btc.Has52Week(), "firehose carries no 52-week extremes")

	eth := out[1]
	assert.Equal(t, "ETH", eth.Symbol)
	assert.InDelta(t, -3.03, eth.ChangePercent24h, 1e-9)
}

func TestDecodeZeroRateZeroesConvertedFields(t *testing.T) {
	p := New(fixedRate(0))

	out, err := p.Decode([]byte(`[{"s":"BTCUSDT","c":"65000","p":"100","P":"5.0","q":"10","h":"1","l":"1"}]`), nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Zero(t, out[0].Price)
	assert.Zero(t, out[0].Change24h)
	assert.Zero(t, out[0].Volume)
	assert.InDelta(t, 5.0, out[0].ChangePercent24h, 1e-9)
}

func TestDecodeIgnoresNonArrayFrames(t *testing.T) {
	p := New(fixedRate(1300))
	out, err := p.Decode([]byte(`{"result":null,"id":1}`), nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDecodeMalformedArray(t *testing.T) {
	p := New(fixedRate(1300))
	_, err := p.Decode([]byte(`[{"s":`), nil)
	require.Error(t, err)
}

func TestDecodeSkipsUnparsableEntry(t *testing.T) {
	p := New(fixedRate(1300))
	out, err := p.Decode([]byte(`[
		{"s":"BTCUSDT","c":"not-a-number","p":"0","P":"0","q":"0","h":"0","l":"0"},
		{"s":"ETHUSDT","c":"3200","p":"0","P":"0","q":"0","h":"0","l":"0"}
	]`), nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ETH", out[0].Symbol)
}

func TestNoCatalogNoPlan(t *testing.T) {
	p := New(fixedRate(1300))
	cat, err := p.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cat)
	assert.Nil(t, p.SubscribePlan(nil))
}
