package main

import (
	"context"
	"errors"
	"os"

	"pennywise/internal/amqp"
	"pennywise/internal/backend"
	"pennywise/internal/cli"
	"pennywise/internal/config"
	applog "pennywise/internal/log"
	"pennywise/internal/worker"
)

func main() {
	cfg, logger := cli.LoadConfig(applog.ComponentWorker, (*config.Config).ValidateWorker)
	logger.Info("Starting pennywise-worker")

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	mirror, err := backend.NewLedgerMirror(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize ledger mirror", "error", err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(backendCfg.AMQPConfig())
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ledger := worker.NewLedgerWorker(mirror)
	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	if err := client.ConsumeLedger(ctx, ledger.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Ledger consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
