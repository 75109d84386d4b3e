package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// DefaultUserInfoEndpoint is Google's OpenID Connect userinfo endpoint.
const DefaultUserInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// UserInfo represents the user information returned by Google's userinfo
// endpoint.
type UserInfo struct {
	// Sub is the unique Google user ID.
	Sub string `json:"sub"`

	// Email is the user's email address.
	Email string `json:"email"`

	// VerifiedEmail indicates whether the email is verified.
	VerifiedEmail bool `json:"verified_email"`

	// Name is the user's full display name.
	Name string `json:"name"`

	// GivenName is the user's first name.
	GivenName string `json:"given_name"`

	// FamilyName is the user's last name.
	FamilyName string `json:"family_name"`

	// Picture is the URL of the user's profile picture.
	Picture string `json:"picture"`
}

// IdentityClient fetches user identity from the provider's userinfo
// endpoint. A zero value uses Google's endpoint and a default HTTP client;
// both can be overridden for tests.
type IdentityClient struct {
	// Endpoint defaults to DefaultUserInfoEndpoint when empty.
	Endpoint string

	// HTTPClient defaults to a client with a 10 second timeout when nil.
	HTTPClient *http.Client
}

// FetchUserInfo retrieves the authenticated user's identity using the given
// access token.
func (c *IdentityClient) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultUserInfoEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}
	token.SetAuthHeader(req)

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("userinfo request returned status %d: %s", resp.StatusCode, string(body))
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo response: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("userinfo response contained no email")
	}

	return &info, nil
}
