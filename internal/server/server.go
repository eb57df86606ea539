// Package server exposes the price engine over HTTP: a JSON API for
// snapshots and comparisons, a websocket broadcast of the merged view, and
// prometheus metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/richrobo/whyup/internal/agg"
	"github.com/richrobo/whyup/internal/fx"
	"github.com/richrobo/whyup/internal/metrics"
	"github.com/richrobo/whyup/internal/store"
)

const broadcastInterval = time.Second

type Server struct {
	log       *zap.Logger
	agg       *agg.Aggregator
	fx        *fx.Provider
	store     *store.Store
	metrics   *metrics.Collector
	exchanges []string
	base      string

	upgrader  websocket.Upgrader
	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool

	srv *http.Server
}

func New(addr string, exchanges []string, base string, aggr *agg.Aggregator, fxp *fx.Provider, st *store.Store, mc *metrics.Collector, gatherer prometheus.Gatherer, log *zap.Logger) *Server {
	s := &Server{
		log:       log.Named("http"),
		agg:       aggr,
		fx:        fxp,
		store:     st,
		metrics:   mc,
		exchanges: exchanges,
		base:      base,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/rate", s.handleRate)
	api.GET("/exchanges", s.handleExchanges)
	api.GET("/prices/:exchange", s.handlePrices)
	api.GET("/comparison", s.handleComparison)
	router.GET("/ws", s.handleWebSocket)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	s.srv = &http.Server{Addr: addr, Handler: router}
	return s
}

// Start serves until ctx is cancelled, then drains websocket clients and
// shuts the listener down.
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.log.Info("listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("serve failed", zap.Error(err))
		}
	}()
	go s.broadcastLoop(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()
}

func (s *Server) handleHealth(c *gin.Context) {
	snaps := s.store.Snapshots()
	feeds := make(map[string]string, len(snaps))
	for ex, snap := range snaps {
		switch {
		case snap.Loading:
			feeds[ex] = "loading"
		case snap.Error != "":
			feeds[ex] = "error"
		default:
			feeds[ex] = "ok"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"loading": s.agg.Loading(),
		"error":   s.agg.Err(),
		"feeds":   feeds,
	})
}

func (s *Server) handleRate(c *gin.Context) {
	c.JSON(http.StatusOK, s.fx.Status())
}

func (s *Server) handleExchanges(c *gin.Context) {
	out := make([]gin.H, 0, len(s.exchanges))
	for _, ex := range s.exchanges {
		out = append(out, gin.H{
			"exchange": ex,
			"symbols":  s.agg.BaseExchangeSymbols(ex),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handlePrices(c *gin.Context) {
	ex := c.Param("exchange")
	if !s.known(ex) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown exchange: " + ex})
		return
	}
	c.JSON(http.StatusOK, s.store.Snapshot(ex))
}

func (s *Server) handleComparison(c *gin.Context) {
	base := c.DefaultQuery("base", s.base)
	compare := c.DefaultQuery("compare", "binance")
	if !s.known(base) || !s.known(compare) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown exchange"})
		return
	}

	rows := s.agg.PriceComparison(base, compare)
	query := agg.Query{
		Search: c.Query("q"),
		Sort:   agg.SortKey(c.Query("sort")),
		Desc:   !strings.EqualFold(c.Query("order"), "asc"),
	}
	c.JSON(http.StatusOK, gin.H{
		"base":    base,
		"compare": compare,
		"loading": s.agg.Loading(),
		"error":   s.agg.Err(),
		"rows":    agg.Project(rows, query),
	})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	n := len(s.clients)
	s.clientsMu.Unlock()
	s.log.Info("ws client connected", zap.Int("clients", n))

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// broadcastLoop pushes the merged view to every websocket client when the
// store changes. The store's notification channel coalesces, and the pause
// after each push caps the send rate; signals arriving during the pause
// collapse into one pending broadcast.
func (s *Server) broadcastLoop(ctx context.Context) {
	changes := s.store.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
		}
		s.broadcast()
		select {
		case <-ctx.Done():
			return
		case <-time.After(broadcastInterval):
		}
	}
}

func (s *Server) broadcast() {
	data := s.agg.ExchangeData()
	for ex, tickers := range data {
		s.metrics.SetSymbols(ex, len(tickers))
	}
	msg := gin.H{
		"type":         "prices",
		"exchangeData": data,
		"loading":      s.agg.Loading(),
		"error":        s.agg.Err(),
		"rate":         s.fx.Rate(),
	}
	s.clientsMu.Lock()
	for client := range s.clients {
		if err := client.WriteJSON(msg); err != nil {
			_ = client.Close()
			delete(s.clients, client)
		}
	}
	s.clientsMu.Unlock()
}

func (s *Server) known(exchange string) bool {
	for _, ex := range s.exchanges {
		if ex == exchange {
			return true
		}
	}
	return false
}
