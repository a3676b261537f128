// Package bootstrap wires configuration into concrete infrastructure for the
// api and aggregator binaries.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/application"
	"github.com/yisheng316/Crypto-Trading-System/internal/config"
	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
	"github.com/yisheng316/Crypto-Trading-System/internal/infrastructure/httpx"
	"github.com/yisheng316/Crypto-Trading-System/internal/infrastructure/logx"
	"github.com/yisheng316/Crypto-Trading-System/internal/infrastructure/memory"
	"github.com/yisheng316/Crypto-Trading-System/internal/infrastructure/pg"
	redisstore "github.com/yisheng316/Crypto-Trading-System/internal/infrastructure/redis"
	"github.com/yisheng316/Crypto-Trading-System/internal/infrastructure/source"
)

type Repos struct {
	Snapshots application.SnapshotRepo
	Wallets   application.WalletRepo
	Trades    application.TradeRepo
	UoW       application.UnitOfWork
	Ping      func(ctx context.Context) error
}

// BuildPairs validates the tracked-pair config once at startup.
func BuildPairs(cfg config.Config) (domain.Pairs, error) {
	return domain.NewPairs(cfg.TrackedPairs, cfg.QuoteSuffix)
}

// BuildRepos builds the storage backend selected by STORAGE. The pg backend
// runs migrations on connect; the memory backend seeds the default user's
// quote wallet so trading works out of the box.
func BuildRepos(ctx context.Context, cfg config.Config) (Repos, func(), error) {
	log := logx.L()

	switch cfg.Storage {
	case "pg":
		if cfg.DatabaseURL == "" {
			return Repos{}, func() {}, fmt.Errorf("DATABASE_URL is required for STORAGE=pg")
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return Repos{}, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return Repos{}, func() {}, err
		}
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return Repos{
			Snapshots: pg.NewSnapshotRepo(db),
			Wallets:   pg.NewWalletRepo(db),
			Trades:    pg.NewTradeRepo(db),
			UoW:       &pg.UnitOfWork{Pool: db.Pool},
			Ping:      db.Ping,
		}, cleanup, nil

	case "memory":
		store := memory.NewStore()
		store.Seed(cfg.DefaultUserID, cfg.QuoteSuffix, decimal.NewFromInt(100000))
		return Repos{
			Snapshots: memory.NewSnapshotRepo(store),
			Wallets:   memory.NewWalletRepo(store),
			Trades:    memory.NewTradeRepo(store),
			UoW:       &memory.UnitOfWork{Store: store},
		}, func() {}, nil

	default:
		return Repos{}, func() {}, fmt.Errorf("unsupported STORAGE=%q", cfg.Storage)
	}
}

// BuildCache builds the price cache selected by CACHE_BACKEND; "none" is a
// no-op cache so callers never branch.
func BuildCache(cfg config.Config) (application.PriceCache, func(), error) {
	if cfg.CacheBackend != "redis" {
		return application.NoopCache{}, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return redisstore.New(client, cfg.PriceCacheTTL), func() { _ = client.Close() }, nil
}

// BuildSources builds the quote sources selected by SOURCES.
func BuildSources(cfg config.Config) ([]application.QuoteSource, error) {
	client := &httpx.Client{HTTP: &http.Client{Timeout: cfg.FetchTimeout}}

	sources := make([]application.QuoteSource, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		switch strings.ToLower(name) {
		case "binance":
			sources = append(sources, &source.Binance{BaseURL: cfg.BinanceAPIBase, Client: client})
		case "huobi":
			sources = append(sources, &source.Huobi{BaseURL: cfg.HuobiAPIBase, Client: client})
		case "fake":
			sources = append(sources, source.NewFake("FAKE", decimal.NewFromInt(50000), decimal.NewFromInt(50100)))
		default:
			return nil, fmt.Errorf("unsupported source %q", name)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no quote sources configured")
	}
	return sources, nil
}
