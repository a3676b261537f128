package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yisheng316/Crypto-Trading-System/internal/application"
	"github.com/yisheng316/Crypto-Trading-System/internal/bootstrap"
	"github.com/yisheng316/Crypto-Trading-System/internal/config"
	"github.com/yisheng316/Crypto-Trading-System/internal/infrastructure/logx"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := logx.L()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pairs, err := bootstrap.BuildPairs(cfg)
	if err != nil {
		logger.Fatal("bootstrap pairs", zap.Error(err))
	}

	repos, cleanup, err := bootstrap.BuildRepos(ctx, cfg)
	if err != nil {
		logger.Fatal("bootstrap repos", zap.Error(err))
	}
	defer cleanup()

	cache, closeCache, err := bootstrap.BuildCache(cfg)
	if err != nil {
		logger.Fatal("bootstrap cache", zap.Error(err))
	}
	defer closeCache()

	sources, err := bootstrap.BuildSources(cfg)
	if err != nil {
		logger.Fatal("bootstrap sources", zap.Error(err))
	}

	agg := application.NewAggregator(sources, repos.Snapshots, cache, pairs)
	agg.Interval = cfg.AggregateInterval
	agg.FetchTimeout = cfg.FetchTimeout
	agg.Log = logger

	logger.Info("aggregator started",
		zap.Strings("pairs", pairs.Symbols()),
		zap.Strings("sources", cfg.Sources),
		zap.Duration("interval", cfg.AggregateInterval),
	)
	agg.Run(ctx)
	logger.Info("aggregator stopped")
}
