// Package google constructs Google OAuth flows and resolves user identity.
//
// A Flow wraps an oauth2.Config pointed at Google's authorization and token
// endpoints. Flows are pure constructions: building one performs no network
// I/O, and missing client credentials are reported before any exchange is
// attempted. The package also fetches the authenticated user's profile from
// Google's userinfo endpoint after a successful token exchange.
package google
