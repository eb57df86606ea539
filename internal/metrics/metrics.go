// Package metrics exposes prometheus instrumentation for the price engine.
// All Collector methods are nil-receiver safe so components can run
// uninstrumented in tests.
package metrics

import "github.com/prometheus/client_golang/prometheus"

type Collector struct {
	messages        *prometheus.CounterVec
	decodeFailures  *prometheus.CounterVec
	reconnects      *prometheus.CounterVec
	catalogFailures *prometheus.CounterVec
	symbols         *prometheus.GaugeVec
	fxRate          prometheus.Gauge
}

func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "whyup_exchange_messages_total",
			Help: "Inbound frames decoded per exchange.",
		}, []string{"exchange"}),
		decodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "whyup_exchange_decode_failures_total",
			Help: "Inbound frames dropped due to decode errors.",
		}, []string{"exchange"}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "whyup_exchange_reconnects_total",
			Help: "Reconnect attempts scheduled per exchange.",
		}, []string{"exchange"}),
		catalogFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "whyup_exchange_catalog_failures_total",
			Help: "Market catalog fetches that failed.",
		}, []string{"exchange"}),
		symbols: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "whyup_exchange_symbols",
			Help: "Symbols currently tracked per exchange.",
		}, []string{"exchange"}),
		fxRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "whyup_fx_usd_krw_rate",
			Help: "Current USD/KRW rate, 0 when unavailable.",
		}),
	}
	reg.MustRegister(c.messages, c.decodeFailures, c.reconnects, c.catalogFailures, c.symbols, c.fxRate)
	return c
}

func (c *Collector) IncMessage(exchange string) {
	if c == nil {
		return
	}
	c.messages.WithLabelValues(exchange).Inc()
}

func (c *Collector) IncDecodeFailure(exchange string) {
	if c == nil {
		return
	}
	c.decodeFailures.WithLabelValues(exchange).Inc()
}

func (c *Collector) IncReconnect(exchange string) {
	if c == nil {
		return
	}
	c.reconnects.WithLabelValues(exchange).Inc()
}

func (c *Collector) IncCatalogFailure(exchange string) {
	if c == nil {
		return
	}
	c.catalogFailures.WithLabelValues(exchange).Inc()
}

func (c *Collector) SetSymbols(exchange string, n int) {
	if c == nil {
		return
	}
	c.symbols.WithLabelValues(exchange).Set(float64(n))
}

func (c *Collector) SetFxRate(rate float64) {
	if c == nil {
		return
	}
	c.fxRate.Set(rate)
}
