// Package auth turns stored profile credentials into bearer tokens for the
// API client.
package auth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// ErrNoCredentials indicates neither a static token nor a refresh flow is
// configured.
var ErrNoCredentials = errors.New("no credentials configured")

// Credentials is the persisted credential material of a profile. Either a
// static bearer token or a refresh-token flow against the identity
// provider's token endpoint.
type Credentials struct {
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ClientID     string `json:"clientId,omitempty"`
	TokenURL     string `json:"tokenUrl,omitempty"`
}

// Empty reports whether no credential material is present at all.
func (c Credentials) Empty() bool {
	return c.Token == "" && c.RefreshToken == ""
}

// TokenSource builds an oauth2 token source. A refresh token plus token
// endpoint wins over a static token so long-running transfers keep a fresh
// access token; a static token never refreshes.
func (c Credentials) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if c.RefreshToken != "" && c.TokenURL != "" {
		cfg := &oauth2.Config{
			ClientID: c.ClientID,
			Endpoint: oauth2.Endpoint{TokenURL: c.TokenURL},
		}
		return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken}), nil
	}
	if c.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.Token}), nil
	}
	return nil, ErrNoCredentials
}
