// Package auth relays Spotify OAuth tokens, issues session tokens and keeps
// client-side credentials.
package auth

import (
	"errors"
	"time"

	"golang.org/x/oauth2"
)

// defaultLifetime applies when the provider omits expires_in.
const defaultLifetime = time.Hour

var (
	// ErrTokenExpired is returned when an access token is past its expiry.
	ErrTokenExpired = errors.New("access token has expired")

	// ErrMissingRefreshToken is returned when a refresh is requested without one.
	ErrMissingRefreshToken = errors.New("refresh token is required")
)

// Tokens are the provider credentials held by the client. ExpiresAt is an
// absolute Unix time in milliseconds.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// Expiry returns ExpiresAt as a time.
func (t Tokens) Expiry() time.Time {
	return time.UnixMilli(t.ExpiresAt)
}

// Expired reports whether the access token expires within skew of now.
// A zero ExpiresAt is treated as unknown and never expired.
func (t Tokens) Expired(now time.Time, skew time.Duration) bool {
	if t.ExpiresAt == 0 {
		return false
	}
	return !now.Add(skew).Before(t.Expiry())
}

// fromOAuth2 converts a provider token. fallbackRefresh is kept when the
// provider did not rotate the refresh token.
func fromOAuth2(tok *oauth2.Token, fallbackRefresh string, now time.Time) Tokens {
	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = now.Add(defaultLifetime)
	}
	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = fallbackRefresh
	}
	return Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: refresh,
		ExpiresAt:    expiry.UnixMilli(),
	}
}
