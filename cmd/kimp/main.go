package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/richrobo/whyup/internal/config"
	"github.com/richrobo/whyup/internal/runner"
	"github.com/richrobo/whyup/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer log.Sync() //nolint:errcheck

	log.Info("starting price engine",
		zap.Strings("exchanges", cfg.Exchanges),
		zap.String("base", cfg.BaseExchange),
		zap.Bool("dryRun", cfg.DryRun),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := runner.New(cfg, log)
	err := r.Start(ctx)
	r.Stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("runner stopped", zap.Error(err))
	}
	log.Info("shutdown complete")
}
