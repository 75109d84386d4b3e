package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flowpilot/flowpilot/internal/auth"
	"github.com/flowpilot/flowpilot/internal/config"
	"github.com/flowpilot/flowpilot/internal/logging"
	"github.com/flowpilot/flowpilot/internal/server"
	"github.com/flowpilot/flowpilot/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		listenAddr     string
		databasePath   string
		redirectURL    string
		landingURL     string
		logLevel       string
		logFormat      string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the flowpilot HTTP server",
		Long: `Start the HTTP server exposing the OAuth login routes and the
session-gated calendar endpoints.

Configuration comes from environment variables; flags override them.

Required environment:
  GOOGLE_CLIENT_ID      Google OAuth client ID
  GOOGLE_CLIENT_SECRET  Google OAuth client secret
  SESSION_SECRET        Secret signing session cookies

Optional environment:
  REDIRECT_URL    OAuth redirect URI registered with Google
  DATABASE_PATH   SQLite database file (default: flowpilot.db)
  LISTEN_ADDR     Bind address (default: :8000)
  OAUTH_SCOPES    Comma-separated scope override
  EVENT_TIMEZONE  Time zone for created events (default: America/Vancouver)
  METRICS_ENABLED / METRICS_ADDR
  LOG_LEVEL / LOG_FORMAT`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("listen-addr") {
				cfg.ListenAddr = listenAddr
			}
			if flags.Changed("db") {
				cfg.DatabasePath = databasePath
			}
			if flags.Changed("redirect-url") {
				cfg.RedirectURL = redirectURL
			}
			if flags.Changed("landing-url") {
				cfg.LandingURL = landingURL
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			if flags.Changed("metrics-enabled") {
				cfg.MetricsEnabled = metricsEnabled
			}
			if flags.Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen-addr", ":8000", "HTTP server bind address. Can also use LISTEN_ADDR env var.")
	cmd.Flags().StringVar(&databasePath, "db", "flowpilot.db", "SQLite database file. Can also use DATABASE_PATH env var.")
	cmd.Flags().StringVar(&redirectURL, "redirect-url", "", "OAuth redirect URI registered with Google. Can also use REDIRECT_URL env var.")
	cmd.Flags().StringVar(&landingURL, "landing-url", "/", "Where the browser is sent after login. Can also use LANDING_URL env var.")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error. Can also use LOG_LEVEL env var.")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format: text or json. Can also use LOG_FORMAT env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(cfg *config.Config) error {
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := store.OpenSQLite(shutdownCtx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", logging.Err(err))
		}
	}()

	sessions := auth.NewSessions(cfg.SessionSecret, secureCookies(cfg))
	authSvc := auth.NewService(cfg, db, sessions, nil, logger)

	metrics := server.NewMetrics()
	authSvc.SetRefreshObserver(metrics.ObserveRefresh)
	srv := server.New(cfg, authSvc, logger,
		server.WithMetrics(metrics),
		server.WithHealthChecker(server.NewHealthChecker(db)),
	)

	var metricsServer *server.MetricsServer
	if cfg.MetricsEnabled {
		metricsServer = server.NewMetricsServer(cfg.MetricsAddr, metrics)
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if metricsServer != nil {
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("error shutting down metrics server", logging.Err(err))
			}
		}
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("http server stopped with error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// secureCookies enables the Secure cookie attribute when the redirect URL
// is HTTPS, which is the reliable signal that the deployment terminates TLS.
func secureCookies(cfg *config.Config) bool {
	return strings.HasPrefix(cfg.RedirectURL, "https://")
}
