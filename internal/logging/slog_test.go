package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
	}{
		{"debug level", "debug", true},
		{"info level", "info", false},
		{"unknown defaults to info", "bogus", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Setup(tt.level, "text")
			require.NotNil(t, logger)
			assert.Equal(t, tt.wantDebug, logger.Enabled(t.Context(), slog.LevelDebug))
		})
	}
}

func TestAnonymizeEmail(t *testing.T) {
	hash := AnonymizeEmail("a@x.com")

	assert.True(t, strings.HasPrefix(hash, "user:"))
	assert.NotContains(t, hash, "a@x.com")

	// Stable across calls so log lines can be correlated.
	assert.Equal(t, hash, AnonymizeEmail("a@x.com"))
	assert.NotEqual(t, hash, AnonymizeEmail("b@x.com"))
	assert.Empty(t, AnonymizeEmail(""))
}

func TestErr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("with error", Err(errors.New("boom")))
	assert.Contains(t, buf.String(), "error=boom")

	buf.Reset()
	logger.Info("nil error", Err(nil))
	assert.NotContains(t, buf.String(), "error=")
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"regular address", "a@x.com", "x.com"},
		{"empty", "", ""},
		{"not an email", "nonsense", ""},
		{"double at", "a@b@c", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDomain(tt.email))
		})
	}
}
