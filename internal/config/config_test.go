package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "flowpilot.db", cfg.DatabasePath)
	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, "America/Vancouver", cfg.EventTimeZone)
	assert.Equal(t, DefaultScopes, cfg.Scopes)
	assert.True(t, cfg.MetricsEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadScopeOverride(t *testing.T) {
	t.Setenv("OAUTH_SCOPES", "https://www.googleapis.com/auth/calendar.readonly,openid")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://www.googleapis.com/auth/calendar.readonly", "openid"}, cfg.Scopes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "complete",
			cfg: Config{
				GoogleClientID:     "id",
				GoogleClientSecret: "secret",
				SessionSecret:      "s3cret",
				RedirectURL:        "http://127.0.0.1:8000/api/auth/callback",
			},
		},
		{
			name: "missing client id",
			cfg: Config{
				GoogleClientSecret: "secret",
				SessionSecret:      "s3cret",
				RedirectURL:        "http://127.0.0.1:8000/api/auth/callback",
			},
			wantErr: "GOOGLE_CLIENT_ID",
		},
		{
			name: "missing client secret",
			cfg: Config{
				GoogleClientID: "id",
				SessionSecret:  "s3cret",
				RedirectURL:    "http://127.0.0.1:8000/api/auth/callback",
			},
			wantErr: "GOOGLE_CLIENT_SECRET",
		},
		{
			name: "missing session secret",
			cfg: Config{
				GoogleClientID:     "id",
				GoogleClientSecret: "secret",
				RedirectURL:        "http://127.0.0.1:8000/api/auth/callback",
			},
			wantErr: "SESSION_SECRET",
		},
		{
			name: "missing redirect url",
			cfg: Config{
				GoogleClientID:     "id",
				GoogleClientSecret: "secret",
				SessionSecret:      "s3cret",
			},
			wantErr: "redirect URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
