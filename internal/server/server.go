package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/flowpilot/flowpilot/internal/auth"
	"github.com/flowpilot/flowpilot/internal/calendar"
	"github.com/flowpilot/flowpilot/internal/config"
	"github.com/flowpilot/flowpilot/internal/logging"
)

const (
	// DefaultReadHeaderTimeout limits how long reading request headers may take.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout limits how long a handler may take to respond.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout closes idle keep-alive connections.
	DefaultIdleTimeout = 120 * time.Second
)

// CalendarFactory builds a calendar client for one resolved credential.
// Injected so tests can substitute a fake backing service.
type CalendarFactory func(ctx context.Context, token *oauth2.Token, timeZone string) (calendar.API, error)

// Server is the main flowpilot HTTP server.
type Server struct {
	cfg         *config.Config
	auth        *auth.Service
	newCalendar CalendarFactory
	health      *HealthChecker
	metrics     *Metrics
	logger      *slog.Logger
	httpServer  *http.Server
}

// Option configures the server.
type Option func(*Server)

// WithCalendarFactory overrides how calendar clients are constructed.
func WithCalendarFactory(factory CalendarFactory) Option {
	return func(s *Server) {
		s.newCalendar = factory
	}
}

// WithMetrics supplies a shared metrics set instead of a fresh one.
func WithMetrics(metrics *Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithHealthChecker supplies a health checker wired to the store.
func WithHealthChecker(health *HealthChecker) Option {
	return func(s *Server) {
		s.health = health
	}
}

// New builds the server and its route table.
func New(cfg *config.Config, authSvc *auth.Service, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		auth:   authSvc,
		logger: logging.WithComponent(logger, "server"),
		newCalendar: func(ctx context.Context, token *oauth2.Token, timeZone string) (calendar.API, error) {
			return calendar.NewClient(ctx, token, timeZone)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.health == nil {
		s.health = NewHealthChecker(nil)
	}

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
	return s
}

// Handler returns the full route table wrapped in the observability
// middleware. Exposed for handler-level tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/auth/init", s.handleAuthInit)
	mux.HandleFunc("GET /api/auth/callback", s.handleAuthCallback)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)

	mux.HandleFunc("GET /events", s.handleListEvents)
	mux.HandleFunc("POST /events", s.handleCreateEvent)

	s.health.RegisterHealthEndpoints(mux)

	return s.withObservability(mux)
}

// Start serves HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting http server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetShuttingDown()
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
