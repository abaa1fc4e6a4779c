package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pennywise/internal/backend"
	applog "pennywise/internal/log"
	"pennywise/internal/middleware/ratelimit"
	"pennywise/internal/middleware/security"
	"pennywise/internal/middleware/trace"
)

// HeaderUsername identifies the caller on every authenticated route.
const HeaderUsername = "X-Username"

type Options struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	app     *backend.App
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer wires the routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, app *backend.App, opts Options) *Server {
	limits := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limits.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		app:     app,
		limiter: ratelimit.NewLimiter(limits),
		tracer:  trace.NewMiddleware(clientIP),
	}
	s.Handler = s.routes(opts)
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Handler)
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", HeaderUsername, trace.HeaderRequestID},
		ExposedHeaders:   []string{trace.HeaderRequestID, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(s.limiter.Middleware(clientIP, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, please try again later"})
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", s.handleListTransactions)
		r.Post("/", s.handleCreateTransaction)
		r.Delete("/", s.handleDeleteTransaction)
		r.Delete("/{id}", s.handleDeleteTransaction)
	})
	r.Get("/savings-goals", s.handleListGoals)
	r.Post("/savings-goals", s.handleCreateGoal)
	r.Get("/budgets", s.handleListBudgets)
	r.Post("/budgets", s.handleCreateBudget)

	r.Get("/transaction-report", s.handleReport)
	r.Get("/transaction-report/chart", s.handleReportChart)
	r.Post("/chat", s.handleChat)

	r.Get("/achievements", s.handleAchievements)
	r.Get("/notifications", s.handleNotifications)
	r.Post("/notifications/{id}/read", s.handleMarkRead)

	return r
}

// Shutdown stops accepting requests and ends the rate limiter sweep.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
		s.limiter.Stop()
		slog.InfoContext(ctx, "HTTP server stopped",
			applog.FieldComponent, applog.ComponentHTTP,
			"total_requests", s.tracer.TotalRequests())
	})
	return err
}
