package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yisheng316/Crypto-Trading-System/internal/application"
	"github.com/yisheng316/Crypto-Trading-System/internal/bootstrap"
	"github.com/yisheng316/Crypto-Trading-System/internal/config"
	infraconfig "github.com/yisheng316/Crypto-Trading-System/internal/infrastructure/config"
	httpserver "github.com/yisheng316/Crypto-Trading-System/internal/infrastructure/http"
	"github.com/yisheng316/Crypto-Trading-System/internal/infrastructure/logx"
)

func init() { _ = godotenv.Load() }

func main() {
	ctx := context.Background()
	logger := logx.L()
	cfg := config.Load()
	addr := ":" + cfg.Port

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

	srv := httpserver.NewServer(
		application.NewPriceService(repos.Snapshots, cache, pairs, logger),
		application.NewTradeService(repos.Snapshots, repos.Wallets, repos.Trades, repos.UoW, pairs),
		application.NewWalletService(repos.Wallets),
		cfg.DefaultUserID,
	)
	if repos.Ping != nil {
		srv.WithPing(repos.Ping)
	}

	server := &http.Server{
		Addr:    addr,
		Handler: httpserver.NewRouter(srv),
	}

	go func() {
		logger.Info("server started", zap.String("addr", addr), zap.String("storage", cfg.Storage))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
