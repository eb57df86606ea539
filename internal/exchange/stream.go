package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/richrobo/whyup/internal/metrics"
)

const defaultReconnectDelay = 3 * time.Second

// StreamConfig carries the shared collaborators for a stream adapter.
type StreamConfig struct {
	Sink           Sink
	Logger         *zap.Logger
	Metrics        *metrics.Collector
	Dial           Dialer        // nil uses the gorilla dialer
	ReconnectDelay time.Duration // 0 uses the 3s default
}

// Stream runs one venue's connection lifecycle: fetch catalog (or skip),
// dial, subscribe, read until the transport fails, then reconnect after a
// fixed delay. At most one reconnect timer is ever pending; Close cancels
// the timer and the transport together.
type Stream struct {
	proto   Protocol
	sink    Sink
	log     *zap.Logger
	metrics *metrics.Collector
	dial    Dialer
	delay   time.Duration

	mu      sync.Mutex
	conn    Conn
	timer   *time.Timer
	pending bool
	closed  bool
}

func NewStream(proto Protocol, cfg StreamConfig) *Stream {
	dial := cfg.Dial
	if dial == nil {
		dial = gorillaDial
	}
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Stream{
		proto:   proto,
		sink:    cfg.Sink,
		log:     log.Named(proto.Name()),
		metrics: cfg.Metrics,
		dial:    dial,
		delay:   delay,
	}
}

func (s *Stream) Name() string { return s.proto.Name() }

// Start launches the connection cycle. It returns immediately; all work
// happens on the stream's own goroutine.
func (s *Stream) Start(ctx context.Context) {
	go s.cycle(ctx)
}

// Close tears the stream down: the pending reconnect timer (if any) and
// the live transport are cancelled under one lock acquisition so no
// half-torn-down state can be observed.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// cycle is one pass of the adapter state machine:
// FETCHING_CATALOG → CONNECTING → SUBSCRIBED → read loop.
func (s *Stream) cycle(ctx context.Context) {
	if ctx.Err() != nil || s.stopped() {
		return
	}
	name := s.proto.Name()

	catalogOK := true
	cat, err := s.proto.FetchCatalog(ctx)
	switch {
	case err != nil:
		catalogOK = false
		// Soft failure: report it, keep going with an empty roster. The
		// catalog is re-fetched on the next reconnect cycle.
		s.metrics.IncCatalogFailure(name)
		s.sink.SetError(name, name+": market catalog unavailable")
		s.log.Warn("catalog fetch failed", zap.Error(err))
		cat = &Catalog{}
	case cat != nil && len(cat.Symbols) == 0:
		// A venue with a catalog phase listed zero markets: nothing to
		// subscribe to, so the feed would sit silent without this.
		catalogOK = false
		s.metrics.IncCatalogFailure(name)
		s.sink.SetError(name, name+": empty market catalog")
		s.log.Warn("catalog empty")
	}

	conn, err := s.dial(ctx, s.proto.URL())
	if err != nil {
		if ctx.Err() != nil || s.stopped() {
			return
		}
		s.sink.SetError(name, name+": connection failed")
		s.log.Warn("dial failed", zap.Error(err))
		s.scheduleReconnect(ctx)
		return
	}
	if !s.adopt(conn) {
		_ = conn.Close()
		return
	}
	if catalogOK {
		s.sink.ClearError(name)
	}
	s.log.Info("connected", zap.String("url", s.proto.URL()))

	for _, msg := range s.proto.SubscribePlan(cat) {
		if msg.Delay > 0 && !sleepCtx(ctx, msg.Delay) {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, msg.Payload); err != nil {
			s.disconnect(ctx, conn, err)
			return
		}
	}

	s.readLoop(ctx, conn, cat)
}

func (s *Stream) readLoop(ctx context.Context, conn Conn, cat *Catalog) {
	name := s.proto.Name()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.disconnect(ctx, conn, err)
			return
		}
		tickers, err := s.proto.Decode(raw, cat)
		if err != nil {
			// Per-message failure: drop and continue.
			s.metrics.IncDecodeFailure(name)
			s.log.Debug("dropped frame", zap.Error(err))
			continue
		}
		if len(tickers) == 0 {
			continue
		}
		s.metrics.IncMessage(name)
		for _, t := range tickers {
			s.sink.ApplyTicker(name, t)
		}
	}
}

// disconnect handles a transport failure: close the conn, surface the
// error, and schedule one reconnect.
func (s *Stream) disconnect(ctx context.Context, conn Conn, err error) {
	s.release(conn)
	_ = conn.Close()
	if ctx.Err() != nil || s.stopped() {
		return
	}
	s.sink.SetError(s.proto.Name(), s.proto.Name()+": connection lost")
	s.log.Warn("transport failed", zap.Error(err))
	s.scheduleReconnect(ctx)
}

// scheduleReconnect arms the fixed-delay retry timer. A second failure
// while one is pending is a no-op.
func (s *Stream) scheduleReconnect(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.pending || ctx.Err() != nil {
		return
	}
	s.pending = true
	s.metrics.IncReconnect(s.proto.Name())
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		s.pending = false
		s.timer = nil
		closed := s.closed
		s.mu.Unlock()
		if closed || ctx.Err() != nil {
			return
		}
		s.cycle(ctx)
	})
}

func (s *Stream) adopt(conn Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conn = conn
	return true
}

func (s *Stream) release(conn Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
}

func (s *Stream) stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
