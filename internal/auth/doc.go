// Package auth implements the OAuth session-credential lifecycle.
//
// It binds an anti-forgery state token and, after login, a user identity to
// a browser session; exchanges authorization codes for tokens; persists
// token material keyed by user email; and resolves live credentials for
// calendar requests, refreshing and re-persisting expired tokens
// transparently.
//
// All failures carry a typed *Error with a machine-readable code and an
// HTTP status, so the transport layer maps them without string matching.
package auth
