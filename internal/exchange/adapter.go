// Package exchange implements the shared stream adapter that every venue
// plugs a Protocol into: catalog fetch, connect, subscribe, decode, and a
// fixed-delay reconnect cycle.
package exchange

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/richrobo/whyup/internal/schema"
)

// Catalog is a venue's tradable-market roster, fetched once per connection
// cycle. Venues without a catalog phase use a nil Catalog.
type Catalog struct {
	Symbols []string
	Names   map[string]schema.MarketName
}

// OutboundMessage is one element of a subscription plan. Delay is a pause
// taken before sending, used by venues that rate-limit per-symbol
// subscriptions.
type OutboundMessage struct {
	Payload []byte
	Delay   time.Duration
}

// Protocol supplies the venue-specific half of a stream adapter.
type Protocol interface {
	Name() string
	URL() string
	// FetchCatalog retrieves the market roster. Venues that subscribe
	// without one return (nil, nil).
	FetchCatalog(ctx context.Context) (*Catalog, error)
	// SubscribePlan builds the outbound messages for a fresh connection.
	SubscribePlan(cat *Catalog) []OutboundMessage
	// Decode maps one inbound frame to zero or more canonical tickers.
	// A non-nil error drops the frame; it never ends the connection.
	Decode(raw []byte, cat *Catalog) ([]schema.Ticker, error)
}

// Sink receives the adapter's outputs. Implemented by the snapshot store.
type Sink interface {
	ApplyTicker(exchange string, t schema.Ticker)
	SetError(exchange, msg string)
	ClearError(exchange string)
}

// RateSource yields the current USD→KRW rate for converting venues.
// A 0 rate means conversion is unavailable and converted fields become 0.
type RateSource interface {
	Rate() float64
}

// Conn is the subset of *websocket.Conn the stream uses, split out so
// tests can script transports.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens a transport to the venue.
type Dialer func(ctx context.Context, url string) (Conn, error)

func gorillaDial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
