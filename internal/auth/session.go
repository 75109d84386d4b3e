package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionName is the name of the session cookie.
const SessionName = "flowpilot_session"

// Session value keys.
const (
	sessionKeyState     = "state"
	sessionKeyUserEmail = "user_email"
)

// Sessions binds OAuth flow state and a logged-in user identity to a
// browser session via a signed cookie. The secret must be stable across
// restarts for sessions to survive a restart.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions creates a cookie-backed session store. The secret is SHA-256
// hashed to derive a consistent 32-byte signing key. Set secure for
// deployments served over HTTPS.
func NewSessions(secret string, secure bool) *Sessions {
	key := sha256.Sum256([]byte(secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

// session fetches the request's session. A cookie that fails signature
// validation yields a fresh empty session rather than an error, so a
// tampered cookie simply looks logged out.
func (s *Sessions) session(r *http.Request) *sessions.Session {
	sess, _ := s.store.Get(r, SessionName)
	return sess
}

// SetState stores the pending anti-forgery state, unconditionally
// overwriting any prior pending state: only one login may be in flight per
// session.
func (s *Sessions) SetState(w http.ResponseWriter, r *http.Request, state string) error {
	sess := s.session(r)
	sess.Values[sessionKeyState] = state
	return sess.Save(r, w)
}

// PopState removes and returns the pending state. The remove-on-read
// semantics make the state single-use, preventing callback replay.
func (s *Sessions) PopState(w http.ResponseWriter, r *http.Request) (string, bool) {
	sess := s.session(r)
	v, ok := sess.Values[sessionKeyState]
	if ok {
		delete(sess.Values, sessionKeyState)
		_ = sess.Save(r, w)
	}
	state, isString := v.(string)
	return state, ok && isString && state != ""
}

// SetUserEmail marks the session as logged in for email.
func (s *Sessions) SetUserEmail(w http.ResponseWriter, r *http.Request, email string) error {
	sess := s.session(r)
	sess.Values[sessionKeyUserEmail] = email
	return sess.Save(r, w)
}

// UserEmail returns the logged-in identity bound to the session, if any.
func (s *Sessions) UserEmail(r *http.Request) (string, bool) {
	sess := s.session(r)
	email, ok := sess.Values[sessionKeyUserEmail].(string)
	return email, ok && email != ""
}

// Clear removes all session values and expires the cookie.
func (s *Sessions) Clear(w http.ResponseWriter, r *http.Request) error {
	sess := s.session(r)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}
