// Package spotify wraps the Spotify Web API calls the playlist service needs.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/justestif/go-boardgame-playlists/internal/metrics"
)

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// NewForToken builds a client that sends accessToken on every request.
// The token is used as-is; refreshing it is the caller's concern.
func NewForToken(ctx context.Context, accessToken string, opts ...spotify.ClientOption) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
	return New(spotify.New(oauth2.NewClient(ctx, ts), opts...))
}

// IsUnauthorized reports whether Spotify rejected the access token.
func IsUnauthorized(err error) bool {
	var apiErr spotify.Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// CurrentUser returns the profile of the token's owner.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	start := time.Now()
	user, err := c.api.CurrentUser(ctx)
	metrics.ObserveUpstream("spotify", "current_user", start, err)
	if err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}
	return convertUser(user), nil
}
