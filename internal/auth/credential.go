package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// credentialBlob is the serialized form of a stored credential. It carries
// enough material to reconstruct a usable credential later without
// re-consent.
type credentialBlob struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry"`
	Scopes       []string  `json:"scopes,omitempty"`
}

// encodeCredential serializes a token plus its granted scopes.
func encodeCredential(token *oauth2.Token, scopes []string) ([]byte, error) {
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("token has no access token")
	}
	blob := credentialBlob{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
		Scopes:       scopes,
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("encode credential: %w", err)
	}
	return data, nil
}

// decodeCredential deserializes a stored blob back into a token and the
// scopes granted with it.
func decodeCredential(data []byte) (*oauth2.Token, []string, error) {
	var blob credentialBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, nil, fmt.Errorf("decode credential: %w", err)
	}
	if blob.AccessToken == "" {
		return nil, nil, fmt.Errorf("decoded credential has no access token")
	}
	token := &oauth2.Token{
		AccessToken:  blob.AccessToken,
		RefreshToken: blob.RefreshToken,
		TokenType:    blob.TokenType,
		Expiry:       blob.Expiry,
	}
	return token, blob.Scopes, nil
}
