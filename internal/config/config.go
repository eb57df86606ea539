package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Exchanges      []string
	BybitSymbols   []string
	BaseExchange   string
	ReconnectDelay time.Duration
	FxRefresh      time.Duration
	FxProxyURL     string
	HTTPAddr       string
	RedisAddr      string
	RedisDB        int
	CacheTTL       time.Duration
	LogLevel       string
	TUI            bool
	DryRun         bool
}

func Load() Config {
	return Config{
		Exchanges: splitOrDefault(os.Getenv("KIMP_EXCHANGES"), []string{"upbit", "bithumb", "binance", "bybit"}),
		BybitSymbols: splitOrDefault(os.Getenv("KIMP_BYBIT_SYMBOLS"), []string{
			"BTCUSDT", "ETHUSDT", "XRPUSDT", "ADAUSDT", "DOTUSDT",
			"LINKUSDT", "LTCUSDT", "BCHUSDT", "EOSUSDT", "TRXUSDT",
		}),
		BaseExchange:   stringOrDefault(os.Getenv("KIMP_BASE_EXCHANGE"), "upbit"),
		ReconnectDelay: durationOrDefault(os.Getenv("KIMP_RECONNECT_SEC"), 3*time.Second),
		FxRefresh:      durationOrDefault(os.Getenv("KIMP_FX_REFRESH_SEC"), 5*time.Minute),
		FxProxyURL:     stringOrDefault(os.Getenv("KIMP_FX_PROXY_URL"), "https://api.allorigins.win/get"),
		HTTPAddr:       stringOrDefault(os.Getenv("KIMP_HTTP_ADDR"), ":8080"),
		RedisAddr:      strings.TrimSpace(os.Getenv("KIMP_REDIS_ADDR")),
		RedisDB:        intOrDefault(os.Getenv("KIMP_REDIS_DB"), 0),
		CacheTTL:       durationOrDefault(os.Getenv("KIMP_CACHE_TTL_SEC"), 60*time.Second),
		LogLevel:       stringOrDefault(os.Getenv("KIMP_LOG_LEVEL"), "info"),
		TUI:            boolOrDefault(os.Getenv("KIMP_TUI"), false),
		DryRun:         boolOrDefault(os.Getenv("KIMP_DRY_RUN"), false),
	}
}

func splitOrDefault(raw string, def []string) []string {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func durationOrDefault(raw string, def time.Duration) time.Duration {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

func boolOrDefault(raw string, def bool) bool {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	default:
		return def
	}
}

func intOrDefault(raw string, def int) int {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

func stringOrDefault(raw, def string) string {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	return strings.TrimSpace(raw)
}
