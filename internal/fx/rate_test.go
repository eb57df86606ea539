package fx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseRateDataAttribute(t *testing.T) {
	rate, err := parseRate(`<div data-last-price="1387.2500" data-currency="KRW">`)
	require.NoError(t, err)
	assert.Equal(t, 1387.3, rate, "rounded to one decimal")
}

func TestParseRatePatternPriority(t *testing.T) {
	// Both patterns present: the data attribute wins over the span class.
	html := `data-last-price="1350.10" <div class="YMlKec fxKbKc">1,400.55</div>`
	rate, err := parseRate(html)
	require.NoError(t, err)
	assert.Equal(t, 1350.1, rate)
}

func TestParseRateSpanClass(t *testing.T) {
	rate, err := parseRate(`<div class="YMlKec fxKbKc">1,387.25</div>`)
	require.NoError(t, err)
	assert.Equal(t, 1387.3, rate)
}

func TestParseRateTextualForm(t *testing.T) {
	rate, err := parseRate(`Currency conversion: 1 USD = 1,402.91 KRW today`)
	require.NoError(t, err)
	assert.Equal(t, 1402.9, rate)
}

func TestParseRateBareNumber(t *testing.T) {
	rate, err := parseRate(`some markup 1,387.2500 more markup`)
	require.NoError(t, err)
	assert.Equal(t, 1387.3, rate)
}

func TestParseRateRejectsImplausibleValues(t *testing.T) {
	// A match outside the plausibility band falls through to the next
	// pattern instead of being reported.
	html := `data-last-price="3.14" <div class="YMlKec fxKbKc">1,387.25</div>`
	rate, err := parseRate(html)
	require.NoError(t, err)
	assert.Equal(t, 1387.3, rate)
}

func TestParseRateNoMatch(t *testing.T) {
	_, err := parseRate(`<html>nothing useful</html>`)
	require.Error(t, err)

	_, err = parseRate("")
	require.Error(t, err)

	_, err = parseRate(`data-last-price="99999"`)
	require.Error(t, err, "implausible value with no fallback")
}

func TestStartFetchesThroughProxy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "google.com")
		w.Write([]byte(`{"contents":"<div data-last-price=\"1387.25\"></div>"}`))
	}))
	defer srv.Close()

	p := New(srv.URL, time.Hour, zap.NewNop(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	require.Eventually(t, func() bool { return p.Rate() == 1387.3 }, 2*time.Second, 5*time.Millisecond)
	status := p.Status()
	assert.False(t, status.Loading)
	assert.Empty(t, status.Error)
}

func TestStartDoesNotBlockOnSlowProxy(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"contents":"<div data-last-price=\"1387.25\"></div>"}`))
	}))
	defer srv.Close()
	defer close(release)

	p := New(srv.URL, time.Hour, zap.NewNop(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := time.Now()
	p.Start(ctx)
	assert.Less(t, time.Since(started), 500*time.Millisecond,
		"Start must return while the first fetch is still in flight")
	assert.Zero(t, p.Rate())
}

func TestFetchFailureLeavesZeroSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := New(srv.URL, time.Hour, zap.NewNop(), nil)
	p.refresh(context.Background())

	assert.Zero(t, p.Rate())
	status := p.Status()
	assert.False(t, status.Loading)
	assert.NotEmpty(t, status.Error)
}

func TestStatusLoadingBeforeFirstFetch(t *testing.T) {
	p := New("http://unused", time.Hour, zap.NewNop(), nil)
	assert.True(t, p.Status().Loading)
	assert.Zero(t, p.Rate())
}
