package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/justestif/go-boardgame-playlists/internal/logging"
	"github.com/justestif/go-boardgame-playlists/internal/metrics"
)

const refreshTimeout = 15 * time.Second

// Scopes requested at login.
var Scopes = []string{
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopeStreaming,
}

// Relay exchanges authorization codes and refresh tokens with Spotify.
// It holds no per-user state.
type Relay struct {
	auth  *spotifyauth.Authenticator
	oauth *oauth2.Config
	group singleflight.Group
	now   func() time.Time
}

// NewRelay creates a Relay for the given OAuth application.
func NewRelay(clientID, clientSecret, redirectURI string) *Relay {
	return &Relay{
		auth: spotifyauth.New(
			spotifyauth.WithClientID(clientID),
			spotifyauth.WithClientSecret(clientSecret),
			spotifyauth.WithRedirectURL(redirectURI),
			spotifyauth.WithScopes(Scopes...),
		),
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
		now: time.Now,
	}
}

// AuthURL returns the provider consent URL carrying state.
func (r *Relay) AuthURL(state string) string {
	return r.auth.AuthURL(state)
}

// Exchange trades an authorization code for tokens.
func (r *Relay) Exchange(ctx context.Context, code string) (Tokens, error) {
	start := time.Now()
	tok, err := r.auth.Exchange(ctx, code)
	metrics.ObserveUpstream("spotify_accounts", "exchange", start, err)
	if err != nil {
		return Tokens{}, fmt.Errorf("exchanging code for token: %w", err)
	}
	return fromOAuth2(tok, "", r.now()), nil
}

// Refresh obtains a new access token. Concurrent calls with the same refresh
// token share a single provider request, and a caller going away does not
// cancel the shared request for the others.
func (r *Relay) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	if refreshToken == "" {
		return Tokens{}, ErrMissingRefreshToken
	}

	v, err, shared := r.group.Do(refreshToken, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		start := time.Now()
		tok, err := r.oauth.TokenSource(rctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
		metrics.ObserveUpstream("spotify_accounts", "refresh", start, err)
		if err != nil {
			return Tokens{}, err
		}
		return fromOAuth2(tok, refreshToken, r.now()), nil
	})

	switch {
	case err != nil:
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		logging.Ctx(ctx).Warn().Err(err).Msg("token refresh failed")
		return Tokens{}, fmt.Errorf("refreshing token: %w", err)
	case shared:
		metrics.TokenRefreshes.WithLabelValues("shared").Inc()
	default:
		metrics.TokenRefreshes.WithLabelValues("ok").Inc()
	}

	return v.(Tokens), nil
}

// GenerateState creates a random state string for OAuth.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
