package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	oauth2google "golang.org/x/oauth2/google"

	"github.com/flowpilot/flowpilot/internal/config"
)

// ErrMissingClientConfig is returned when the OAuth client id or secret is
// absent. It is detected during flow construction, before any network
// interaction.
var ErrMissingClientConfig = errors.New("google OAuth client id/secret missing; set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")

// Flow encapsulates the provider endpoints, client identity, redirect URI
// and requested scopes for one OAuth exchange.
type Flow struct {
	conf *oauth2.Config
}

// FlowOption overrides a default taken from static configuration.
type FlowOption func(*flowOptions)

type flowOptions struct {
	scopes      []string
	redirectURL string
}

// WithScopes overrides the configured scopes for this flow.
func WithScopes(scopes ...string) FlowOption {
	return func(o *flowOptions) {
		o.scopes = scopes
	}
}

// WithRedirectURL overrides the configured redirect URI for this flow.
func WithRedirectURL(url string) FlowOption {
	return func(o *flowOptions) {
		o.redirectURL = url
	}
}

// NewFlow builds a Google OAuth flow from static configuration. It fails
// with ErrMissingClientConfig when the client id or secret is empty.
// Construction has no side effects.
func NewFlow(cfg *config.Config, opts ...FlowOption) (*Flow, error) {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil, ErrMissingClientConfig
	}

	o := flowOptions{
		scopes:      cfg.Scopes,
		redirectURL: cfg.RedirectURL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.scopes) == 0 {
		o.scopes = config.DefaultScopes
	}

	return &Flow{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     oauth2google.Endpoint,
			RedirectURL:  o.redirectURL,
			Scopes:       o.scopes,
		},
	}, nil
}

// AuthCodeURL returns the provider authorization URL for the given state.
// The URL requests offline access (so a refresh token is issued), forces
// the consent screen, and asks Google to include previously granted scopes.
func (f *Flow) AuthCodeURL(state string) string {
	return f.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// Exchange trades an authorization code for tokens at the provider's token
// endpoint.
func (f *Flow) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := f.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}

// TokenSource returns a refreshing token source seeded with the given token.
func (f *Flow) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return f.conf.TokenSource(ctx, token)
}

// Scopes returns the scopes this flow will request.
func (f *Flow) Scopes() []string {
	return f.conf.Scopes
}

// NewState generates an unpredictable anti-forgery state token.
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
