package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Default OAuth scopes requested during login. The calendar scope grants
// event access; the userinfo scopes let us resolve the authenticated
// user's email and display name after the token exchange.
var DefaultScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/calendar",
}

// Config holds all runtime configuration for the flowpilot server.
// It is constructed once at process start and passed explicitly into each
// component; nothing reads configuration from ambient global state.
type Config struct {
	// Google OAuth client credentials. Both are required; their absence is
	// detected before any network interaction.
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`

	// RedirectURL must exactly match the redirect URI registered with
	// Google for the OAuth client.
	RedirectURL string `env:"REDIRECT_URL" envDefault:"http://127.0.0.1:8000/api/auth/callback"`

	// Scopes requested during the OAuth consent flow.
	Scopes []string `env:"OAUTH_SCOPES" envSeparator:","`

	// SessionSecret signs session cookies. It must be stable across
	// restarts for sessions to survive a restart.
	SessionSecret string `env:"SESSION_SECRET"`

	// DatabasePath is the SQLite database file.
	DatabasePath string `env:"DATABASE_PATH" envDefault:"flowpilot.db"`

	// ListenAddr is the address the main HTTP server binds to.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8000"`

	// LandingURL is where the browser is sent after a successful login.
	LandingURL string `env:"LANDING_URL" envDefault:"/"`

	// EventTimeZone is the IANA time zone applied to event start and end
	// times, which arrive as local ISO-8601 strings without an offset.
	EventTimeZone string `env:"EVENT_TIMEZONE" envDefault:"America/Vancouver"`

	// Metrics server settings.
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsAddr    string `env:"METRICS_ADDR" envDefault:":9090"`

	// Logging settings.
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load parses configuration from environment variables and applies
// defaults for fields the environment does not set.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = append([]string(nil), DefaultScopes...)
	}
	return cfg, nil
}

// Validate checks that every required setting is present. It is called once
// at startup so a misconfigured deployment fails fast instead of failing on
// the first login attempt.
func (c *Config) Validate() error {
	var missing []string
	if c.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("redirect URL cannot be empty")
	}
	return nil
}
