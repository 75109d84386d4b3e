package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/flowpilot/flowpilot/internal/config"
	"github.com/flowpilot/flowpilot/internal/google"
	"github.com/flowpilot/flowpilot/internal/logging"
	"github.com/flowpilot/flowpilot/internal/store"
)

// refreshThreshold refreshes tokens that expire within this window, so a
// credential handed to the calendar client stays valid for the duration of
// the request.
const refreshThreshold = 5 * time.Minute

// ResolvedCredential is a live credential ready for one calendar call.
type ResolvedCredential struct {
	Email  string
	Token  *oauth2.Token
	Scopes []string
}

// Service implements the OAuth session-credential lifecycle: initiating
// consent, exchanging authorization codes, persisting tokens by user email,
// and resolving valid credentials for calendar requests.
type Service struct {
	cfg       *config.Config
	repo      store.Repository
	sessions  *Sessions
	identity  *google.IdentityClient
	logger    *slog.Logger
	now       func() time.Time
	onRefresh func(outcome string)
}

// NewService wires the lifecycle service. identity may be nil, in which
// case Google's userinfo endpoint is used.
func NewService(cfg *config.Config, repo store.Repository, sessions *Sessions, identity *google.IdentityClient, logger *slog.Logger) *Service {
	if identity == nil {
		identity = &google.IdentityClient{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		repo:     repo,
		sessions: sessions,
		identity: identity,
		logger:   logging.WithComponent(logger, "auth"),
		now:      time.Now,
	}
}

// Sessions exposes the session binding, for the logout handler and tests.
func (s *Service) Sessions() *Sessions {
	return s.sessions
}

// SetRefreshObserver registers a callback invoked with "success" or
// "failure" after each transparent refresh attempt, so the caller can
// count refresh outcomes.
func (s *Service) SetRefreshObserver(fn func(outcome string)) {
	s.onRefresh = fn
}

func (s *Service) observeRefresh(outcome string) {
	if s.onRefresh != nil {
		s.onRefresh(outcome)
	}
}

// BeginLogin starts a login: it builds a flow, generates an anti-forgery
// state, stores the state in the caller's session (overwriting any prior
// pending state) and returns the provider authorization URL.
func (s *Service) BeginLogin(w http.ResponseWriter, r *http.Request) (string, error) {
	flow, err := google.NewFlow(s.cfg)
	if err != nil {
		return "", ErrConfig(err)
	}

	state, err := google.NewState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	if err := s.sessions.SetState(w, r, state); err != nil {
		return "", fmt.Errorf("store state in session: %w", err)
	}

	s.logger.Debug("login initiated")
	return flow.AuthCodeURL(state), nil
}

// CompleteLogin handles the provider callback. The pending state is
// consumed exactly once and must match before any token exchange happens;
// the session is marked logged-in only after both the user row and the
// credential blob have been persisted, so a storage failure never leaves a
// session claiming an identity with no stored credential.
func (s *Service) CompleteLogin(w http.ResponseWriter, r *http.Request, code, returnedState string) (string, error) {
	pending, ok := s.sessions.PopState(w, r)
	if !ok {
		return "", ErrStateMismatch("no login in progress for this session")
	}
	if pending != returnedState {
		return "", ErrStateMismatch("state does not match the pending login")
	}

	flow, err := google.NewFlow(s.cfg)
	if err != nil {
		return "", ErrConfig(err)
	}

	ctx := r.Context()
	if s.identity.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.identity.HTTPClient)
	}
	token, err := flow.Exchange(ctx, code)
	if err != nil {
		return "", ErrTokenExchange(err)
	}

	info, err := s.identity.FetchUserInfo(ctx, token)
	if err != nil {
		return "", ErrIdentityLookup(err)
	}

	if err := s.repo.UpsertUser(ctx, info.Email, info.Name); err != nil {
		return "", fmt.Errorf("persist user: %w", err)
	}

	blob, err := encodeCredential(token, flow.Scopes())
	if err != nil {
		return "", fmt.Errorf("serialize credential: %w", err)
	}
	if err := s.repo.UpsertCredential(ctx, info.Email, blob); err != nil {
		return "", fmt.Errorf("persist credential: %w", err)
	}

	if err := s.sessions.SetUserEmail(w, r, info.Email); err != nil {
		return "", fmt.Errorf("bind user to session: %w", err)
	}

	s.logger.Info("login completed",
		logging.UserHash(info.Email),
		logging.Domain(info.Email),
	)
	return info.Email, nil
}

// ResolveCredentials turns the request's session into a live credential for
// the calendar client. Expired tokens are refreshed transparently and the
// refreshed blob is written back to the store so later requests see the
// current token.
func (s *Service) ResolveCredentials(w http.ResponseWriter, r *http.Request) (*ResolvedCredential, error) {
	email, ok := s.sessions.UserEmail(r)
	if !ok {
		return nil, ErrNotAuthenticated()
	}

	ctx := r.Context()
	blob, err := s.repo.GetCredential(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoCredentials(email)
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}

	token, scopes, err := decodeCredential(blob)
	if err != nil {
		return nil, ErrCorruptCredential(err)
	}

	if !s.expiringSoon(token) {
		return &ResolvedCredential{Email: email, Token: token, Scopes: scopes}, nil
	}

	if token.RefreshToken == "" {
		return nil, ErrReauthRequired(fmt.Errorf("no refresh token stored"))
	}

	fresh, err := s.refresh(ctx, token)
	if err != nil {
		s.observeRefresh("failure")
		return nil, ErrReauthRequired(err)
	}
	s.observeRefresh("success")

	// A refresh response may omit the refresh token; carry the stored one
	// forward so the credential stays renewable.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = token.RefreshToken
	}

	if newBlob, encErr := encodeCredential(fresh, scopes); encErr != nil {
		s.logger.Warn("failed to serialize refreshed credential", logging.UserHash(email), logging.Err(encErr))
	} else if saveErr := s.repo.UpsertCredential(ctx, email, newBlob); saveErr != nil {
		// The request can still proceed with the fresh token, but the next
		// request will refresh again.
		s.logger.Warn("failed to persist refreshed credential", logging.UserHash(email), logging.Err(saveErr))
	}

	s.logger.Debug("credential refreshed", logging.UserHash(email))
	return &ResolvedCredential{Email: email, Token: fresh, Scopes: scopes}, nil
}

// Logout clears the session. Stored credentials are kept so a later login
// does not require re-consent.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) error {
	email, _ := s.sessions.UserEmail(r)
	if err := s.sessions.Clear(w, r); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if email != "" {
		s.logger.Info("logout", logging.UserHash(email))
	}
	return nil
}

func (s *Service) expiringSoon(token *oauth2.Token) bool {
	if token.Expiry.IsZero() {
		return false
	}
	return s.now().Add(refreshThreshold).After(token.Expiry)
}

func (s *Service) refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	flow, err := google.NewFlow(s.cfg)
	if err != nil {
		return nil, err
	}

	// Present the token as already expired so the token source performs a
	// refresh instead of handing back the near-expiry access token.
	stale := *token
	stale.Expiry = time.Unix(1, 0)
	if httpClient := s.identity.HTTPClient; httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	fresh, err := flow.TokenSource(ctx, &stale).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return fresh, nil
}
