package google

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/flowpilot/flowpilot/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		RedirectURL:        "http://127.0.0.1:8000/api/auth/callback",
		Scopes:             []string{"https://www.googleapis.com/auth/calendar"},
	}
}

func TestNewFlowMissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
	}{
		{"missing id", "", "secret"},
		{"missing secret", "id", ""},
		{"missing both", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.GoogleClientID = tt.id
			cfg.GoogleClientSecret = tt.secret

			_, err := NewFlow(cfg)
			assert.ErrorIs(t, err, ErrMissingClientConfig)
		})
	}
}

func TestAuthCodeURL(t *testing.T) {
	flow, err := NewFlow(testConfig())
	require.NoError(t, err)

	rawURL := flow.AuthCodeURL("some-state")
	u, err := url.Parse(rawURL)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "some-state", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "true", q.Get("include_granted_scopes"))
	assert.Equal(t, "http://127.0.0.1:8000/api/auth/callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "calendar")
}

func TestFlowOverrides(t *testing.T) {
	flow, err := NewFlow(testConfig(),
		WithScopes("openid"),
		WithRedirectURL("http://localhost:9999/cb"),
	)
	require.NoError(t, err)

	u, err := url.Parse(flow.AuthCodeURL("s"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "openid", q.Get("scope"))
	assert.Equal(t, "http://localhost:9999/cb", q.Get("redirect_uri"))
}

func TestNewState(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 32)
}

func TestFetchUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(UserInfo{
			Email:         "a@x.com",
			VerifiedEmail: true,
			Name:          "Ada Example",
		})
	}))
	defer srv.Close()

	client := &IdentityClient{Endpoint: srv.URL}
	token := &oauth2.Token{AccessToken: "access-token", TokenType: "Bearer"}

	info, err := client.FetchUserInfo(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", info.Email)
	assert.Equal(t, "Ada Example", info.Name)
}

func TestFetchUserInfoErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		}))
		defer srv.Close()

		client := &IdentityClient{Endpoint: srv.URL}
		_, err := client.FetchUserInfo(t.Context(), &oauth2.Token{AccessToken: "t"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
	})

	t.Run("missing email", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"name":"No Email"}`))
		}))
		defer srv.Close()

		client := &IdentityClient{Endpoint: srv.URL}
		_, err := client.FetchUserInfo(t.Context(), &oauth2.Token{AccessToken: "t"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no email")
	})
}
