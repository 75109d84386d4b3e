package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for the credential lifecycle. Each maps to exactly one HTTP
// status so the transport layer can surface failures without inspecting
// error strings.
const (
	CodeConfig            = "config_error"
	CodeStateMismatch     = "state_mismatch"
	CodeTokenExchange     = "token_exchange_failed"
	CodeIdentityLookup    = "identity_lookup_failed"
	CodeNotAuthenticated  = "not_authenticated"
	CodeNoCredentials     = "no_credentials"
	CodeCorruptCredential = "corrupt_credential"
	CodeReauthRequired    = "reauth_required"
)

// Error represents a failure in the OAuth credential lifecycle.
type Error struct {
	Code        string // machine-readable error code
	Description string // human-readable error description
	Status      int    // HTTP status code
	err         error  // wrapped cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.err
}

func newError(code, description string, status int, cause error) *Error {
	return &Error{Code: code, Description: description, Status: status, err: cause}
}

// ErrConfig indicates required static configuration is missing. Fatal,
// never retried.
func ErrConfig(cause error) *Error {
	return newError(CodeConfig, "OAuth configuration is missing or invalid", http.StatusInternalServerError, cause)
}

// ErrStateMismatch indicates the callback state did not match the pending
// session state. The login must be restarted.
func ErrStateMismatch(description string) *Error {
	return newError(CodeStateMismatch, description, http.StatusBadRequest, nil)
}

// ErrTokenExchange indicates the provider rejected the authorization code
// exchange.
func ErrTokenExchange(cause error) *Error {
	return newError(CodeTokenExchange, "failed to exchange authorization code for tokens", http.StatusInternalServerError, cause)
}

// ErrIdentityLookup indicates the provider's identity endpoint failed after
// a successful token exchange. Kept distinct from token-exchange failures
// for observability.
func ErrIdentityLookup(cause error) *Error {
	return newError(CodeIdentityLookup, "failed to fetch user identity", http.StatusInternalServerError, cause)
}

// ErrNotAuthenticated indicates the session carries no logged-in identity.
func ErrNotAuthenticated() *Error {
	return newError(CodeNotAuthenticated, "user not authenticated", http.StatusUnauthorized, nil)
}

// ErrNoCredentials indicates the session claims an identity but no token
// material exists for it. Distinct from ErrNotAuthenticated.
func ErrNoCredentials(email string) *Error {
	return newError(CodeNoCredentials, fmt.Sprintf("no credentials found for user %s", email), http.StatusForbidden, nil)
}

// ErrCorruptCredential indicates a stored credential blob could not be
// deserialized.
func ErrCorruptCredential(cause error) *Error {
	return newError(CodeCorruptCredential, "stored credential could not be decoded", http.StatusInternalServerError, cause)
}

// ErrReauthRequired indicates the stored credential is expired and cannot
// be refreshed; the user must log in again.
func ErrReauthRequired(cause error) *Error {
	return newError(CodeReauthRequired, "credential expired and could not be refreshed; log in again", http.StatusUnauthorized, cause)
}

// CodeOf returns the lifecycle error code for err, or an empty string when
// err is not a lifecycle error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// StatusOf returns the HTTP status for err, defaulting to 500 for errors
// outside the lifecycle taxonomy.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
