package backend

import (
	"context"
	"errors"
	"time"

	"pennywise/internal/amqp"
	"pennywise/internal/cache"
	"pennywise/internal/insight"
	"pennywise/internal/services"
	"pennywise/internal/storage"
)

// App is the explicitly constructed application context handed to the HTTP
// layer. It is built once at startup and closed at shutdown.
type App struct {
	Repo      *storage.Repository
	Accounts  *services.AccountService
	Ledger    *services.LedgerService
	Budgets   *services.BudgetService
	Goals     *services.GoalService
	Reports   *services.ReportService
	Feed      *services.FeedService
	StartedAt time.Time

	amqp    *amqp.Client
	gemini  *insight.Gemini
	sweeper *cache.Sweeper
}

// Ready reports whether the database answers.
func (a *App) Ready(ctx context.Context) error {
	return a.Repo.Ping(ctx)
}

// Close releases every resource in reverse construction order.
func (a *App) Close() error {
	var errs []error
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	if a.gemini != nil {
		errs = append(errs, a.gemini.Close())
	}
	if a.amqp != nil {
		errs = append(errs, a.amqp.Close())
	}
	if a.Repo != nil {
		errs = append(errs, a.Repo.Close())
	}
	return errors.Join(errs...)
}

// Config holds configuration for application assembly
type Config struct {
	Type BackendType
	DSN  string

	AMQPURL               string
	AMQPExchange          string
	AMQPQueue             string
	AMQPNotificationQueue string

	GeminiAPIKey      string
	GeminiModel       string
	LLMTimeout        time.Duration
	CategoryCacheSize int
	CategoryCacheTTL  time.Duration

	BcryptCost int
}

// BackendType represents the database engine
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

func (bt BackendType) dialect() storage.Dialect {
	if bt == PostgresBackend {
		return storage.Postgres
	}
	return storage.SQLite
}
