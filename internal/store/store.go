// Package store holds the in-memory ticker snapshots for every exchange.
// Each adapter owns its exchange's entry and merges inbound tickers by
// symbol; readers only ever see copies.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/richrobo/whyup/internal/schema"
)

type Store struct {
	mu        sync.RWMutex
	order     []string
	exchanges map[string]*state
	subs      []chan struct{}
}

type state struct {
	tickers map[string]schema.Ticker
	loading bool
	errMsg  string
}

// New creates a store tracking the given exchanges, all starting in the
// loading state.
func New(exchanges []string) *Store {
	s := &Store{
		order:     append([]string(nil), exchanges...),
		exchanges: make(map[string]*state, len(exchanges)),
	}
	for _, ex := range exchanges {
		s.exchanges[ex] = &state{tickers: make(map[string]schema.Ticker), loading: true}
	}
	return s
}

// ApplyTicker merges one canonical ticker into the exchange's snapshot,
// replacing any prior entry for the same symbol. The first ticker ends the
// exchange's loading state.
func (s *Store) ApplyTicker(exchange string, t schema.Ticker) {
	s.mu.Lock()
	st := s.ensure(exchange)
	st.tickers[t.Symbol] = t
	st.loading = false
	s.mu.Unlock()
	s.notify()
}

// SetError records a fatal condition for the exchange. It also ends the
// loading state so a feed that can never subscribe (empty catalog, dead
// endpoint) does not spin forever.
func (s *Store) SetError(exchange, msg string) {
	s.mu.Lock()
	st := s.ensure(exchange)
	st.errMsg = msg
	st.loading = false
	s.mu.Unlock()
	s.notify()
}

// ClearError clears the exchange's error, called on reconnect success.
func (s *Store) ClearError(exchange string) {
	s.mu.Lock()
	st := s.ensure(exchange)
	changed := st.errMsg != ""
	st.errMsg = ""
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// Snapshot returns a copy of the exchange's current state with tickers
// sorted by 24h change percent descending.
func (s *Store) Snapshot(exchange string) schema.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.exchanges[exchange]
	if !ok {
		return schema.Snapshot{Exchange: exchange, Loading: true}
	}
	return schema.Snapshot{
		Exchange: exchange,
		Tickers:  sortedTickers(st.tickers),
		Loading:  st.loading,
		Error:    st.errMsg,
	}
}

// Snapshots returns every tracked exchange's snapshot keyed by exchange id.
func (s *Store) Snapshots() map[string]schema.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]schema.Snapshot, len(s.exchanges))
	for ex, st := range s.exchanges {
		out[ex] = schema.Snapshot{
			Exchange: ex,
			Tickers:  sortedTickers(st.tickers),
			Loading:  st.loading,
			Error:    st.errMsg,
		}
	}
	return out
}

// Loading reports whether any tracked exchange is still waiting for its
// first ticker.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.exchanges {
		if st.loading {
			return true
		}
	}
	return false
}

// Err joins every exchange's current error in registration order. Empty
// when all feeds are healthy; informational only.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var msgs []string
	for _, ex := range s.order {
		if st, ok := s.exchanges[ex]; ok && st.errMsg != "" {
			msgs = append(msgs, st.errMsg)
		}
	}
	return strings.Join(msgs, ", ")
}

// Subscribe returns a coalescing notification channel that receives after
// any store mutation. Slow consumers see at most one pending signal.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) ensure(exchange string) *state {
	st, ok := s.exchanges[exchange]
	if !ok {
		st = &state{tickers: make(map[string]schema.Ticker), loading: true}
		s.exchanges[exchange] = st
		s.order = append(s.order, exchange)
	}
	return st
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := s.subs
	s.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func sortedTickers(m map[string]schema.Ticker) []schema.Ticker {
	out := make([]schema.Ticker, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ChangePercent24h != out[j].ChangePercent24h {
			return out[i].ChangePercent24h > out[j].ChangePercent24h
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
