package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCredentialsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		empty bool
	}{
		{"nothing set", Credentials{}, true},
		{"static token", Credentials{Token: "abc"}, false},
		{"refresh token", Credentials{RefreshToken: "r"}, false},
		{"only endpoint config", Credentials{ClientID: "id", TokenURL: "https://x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.creds.Empty(); got != tt.empty {
				t.Errorf("Empty() = %v, want %v", got, tt.empty)
			}
		})
	}
}

func TestTokenSourceNoCredentials(t *testing.T) {
	_, err := Credentials{}.TokenSource(context.Background())
	if !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("error = %v, want ErrNoCredentials", err)
	}
}

func TestTokenSourceStaticToken(t *testing.T) {
	ts, err := Credentials{Token: "static-abc"}.TokenSource(context.Background())
	if err != nil {
		t.Fatalf("TokenSource failed: %v", err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok.AccessToken != "static-abc" {
		t.Errorf("AccessToken = %q, want the static token", tok.AccessToken)
	}
}

func TestTokenSourceRefreshFlow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		if got := r.Form.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.Form.Get("refresh_token"); got != "refresh-xyz" {
			t.Errorf("refresh_token = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fresh-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	creds := Credentials{
		RefreshToken: "refresh-xyz",
		ClientID:     "client-1",
		TokenURL:     srv.URL + "/oauth2/token",
	}
	ts, err := creds.TokenSource(context.Background())
	if err != nil {
		t.Fatalf("TokenSource failed: %v", err)
	}

	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok.AccessToken != "fresh-token" {
		t.Errorf("AccessToken = %q, want the refreshed token", tok.AccessToken)
	}
}

func TestTokenSourceRefreshWinsOverStatic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "from-refresh",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	creds := Credentials{
		Token:        "stale-static",
		RefreshToken: "r",
		TokenURL:     srv.URL,
	}
	ts, err := creds.TokenSource(context.Background())
	if err != nil {
		t.Fatalf("TokenSource failed: %v", err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok.AccessToken != "from-refresh" {
		t.Errorf("AccessToken = %q, want the refresh flow to win", tok.AccessToken)
	}
}
