package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pennywise/internal/amqp"
	"pennywise/internal/cache"
	"pennywise/internal/config"
	"pennywise/internal/insight"
	"pennywise/internal/services"
	"pennywise/internal/sheets"
	"pennywise/internal/sheets/google"
	"pennywise/internal/sheets/memory"
	"pennywise/internal/storage"
)

const cacheSweepInterval = 10 * time.Minute

// Build opens the database, connects the optional broker and language model
// and assembles the services. Optional collaborators that fail to start are
// logged and skipped.
func Build(ctx context.Context, cfg Config) (*App, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}

	slog.InfoContext(ctx, "Opening database", "component", "backend", "type", cfg.Type.String())
	repo, err := storage.Open(ctx, storage.Options{Dialect: cfg.Type.dialect(), DSN: cfg.DSN})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Type, err)
	}
	app := &App{Repo: repo, StartedAt: time.Now()}

	deps := services.Deps{Repo: repo, Clock: time.Now}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPConfig())
		if err != nil {
			slog.WarnContext(ctx, "AMQP unavailable, events will not be published",
				"component", "backend", "error", err)
		} else {
			app.amqp = client
			deps.Publisher = client
		}
	}

	var gen insight.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := insight.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.WarnContext(ctx, "Gemini unavailable, using keyword categorization",
				"component", "backend", "error", err)
		} else {
			app.gemini = g
			gen = g
		}
	} else {
		slog.InfoContext(ctx, "No Gemini API key configured, using fallbacks", "component", "backend")
	}

	categorizer := insight.NewCategorizer(gen, insight.CategorizerOptions{
		Timeout:   cfg.LLMTimeout,
		CacheSize: cfg.CategoryCacheSize,
		CacheTTL:  cfg.CategoryCacheTTL,
	})
	app.sweeper = cache.NewSweeper(categorizer.Cache())
	app.sweeper.Start(cacheSweepInterval)

	app.Accounts = services.NewAccountService(deps, cfg.BcryptCost)
	app.Ledger = services.NewLedgerService(deps, categorizer)
	app.Budgets = services.NewBudgetService(deps)
	app.Goals = services.NewGoalService(deps)
	app.Reports = services.NewReportService(deps, insight.NewWriter(gen, cfg.LLMTimeout))
	app.Feed = services.NewFeedService(deps)

	slog.InfoContext(ctx, "Application assembled",
		"component", "backend",
		"amqp", app.amqp != nil,
		"llm", app.gemini != nil)
	return app, nil
}

// NewLedgerMirror returns the Google Sheets mirror when a spreadsheet is
// configured and an in-memory one otherwise.
func NewLedgerMirror(ctx context.Context, cfg *config.Config) (sheets.LedgerMirror, error) {
	if cfg.GoogleSpreadsheetID == "" {
		slog.WarnContext(ctx, "No spreadsheet configured, mirroring ledger in memory", "component", "backend")
		return memory.New(), nil
	}
	client, err := google.New(ctx, google.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	if err := client.EnsureHeader(ctx); err != nil {
		return nil, fmt.Errorf("ensure sheet header: %w", err)
	}
	return client, nil
}
