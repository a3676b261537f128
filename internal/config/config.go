package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port          string
	Storage       string
	DatabaseURL   string
	DefaultUserID string
	// Tracked instruments
	TrackedPairs []string
	QuoteSuffix  string
	// Aggregator
	Sources           []string
	BinanceAPIBase    string
	HuobiAPIBase      string
	AggregateInterval time.Duration
	FetchTimeout      time.Duration
	// Redis (price cache)
	CacheBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PriceCacheTTL time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:               getEnv("ENV", "local"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Port:              getEnv("PORT", "8080"),
		Storage:           getEnv("STORAGE", "pg"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DefaultUserID:     getEnv("DEFAULT_USER_ID", "demo"),
		TrackedPairs:      splitList(getEnv("TRACKED_PAIRS", "BTCUSDT,ETHUSDT")),
		QuoteSuffix:       getEnv("QUOTE_SUFFIX", "USDT"),
		Sources:           splitList(getEnv("SOURCES", "binance,huobi")),
		BinanceAPIBase:    getEnv("BINANCE_API_BASE", "https://api.binance.com"),
		HuobiAPIBase:      getEnv("HUOBI_API_BASE", "https://api.huobi.pro"),
		AggregateInterval: time.Duration(atoiDef(getEnv("AGGREGATE_INTERVAL_MS", "10000"), 10000)) * time.Millisecond,
		FetchTimeout:      time.Duration(atoiDef(getEnv("FETCH_TIMEOUT_MS", "5000"), 5000)) * time.Millisecond,
		CacheBackend:      getEnv("CACHE_BACKEND", "none"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           atoiDef(getEnv("REDIS_DB", "0"), 0),
		PriceCacheTTL:     time.Duration(atoiDef(getEnv("PRICE_CACHE_TTL_MS", "30000"), 30000)) * time.Millisecond,
	}
}
