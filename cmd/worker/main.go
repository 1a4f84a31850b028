package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"classlive/internal/config"
	"classlive/internal/logging"
	"classlive/internal/queue/rabbitmq"
	"classlive/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.New()
	logger, err := logging.New()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Missing worker key or broker URL is a fatal configuration error; the
	// worker never runs partially configured.
	worker, err := rabbitmq.NewWorker(cfg, logger)
	if err != nil {
		logger.Fatal("worker configuration invalid", zap.Error(err))
	}

	otelShutdown, err := telemetry.Init(ctx, cfg)
	if err != nil {
		logger.Error("telemetry init failed", zap.Error(err))
	}

	if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", zap.Error(err))
	}

	if otelShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", zap.Error(err))
		}
	}
}
