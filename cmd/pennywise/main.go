package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"pennywise/internal/backend"
	"pennywise/internal/cli"
	"pennywise/internal/config"
	apphttp "pennywise/internal/http"
	applog "pennywise/internal/log"
)

func main() {
	cfg, logger := cli.LoadConfig(applog.ComponentApp, (*config.Config).Validate)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	app, err := backend.Build(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, app, apphttp.Options{
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := app.Close(); err != nil {
			logger.Error("Failed to release resources", "error", err)
		}
	})

	logger.Info("Starting pennywise server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		app.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
