package main

import (
	"context"
	"os/signal"
	"syscall"

	"marketsync-service/internal/bootstrap"
	"marketsync-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := logx.L()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := bootstrap.InitApp(ctx)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}
	defer cleanup()

	if err := app.Run(ctx); err != nil {
		logger.Error("service exited", zap.Error(err))
		return
	}
	logger.Info("service stopped")
}
