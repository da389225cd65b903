package spotify

import (
	"context"
	"fmt"
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-boardgame-playlists/internal/metrics"
)

const maxTracksPerRequest = 100

// CreatePlaylist creates a new playlist owned by userID and returns its ID.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (string, error) {
	start := time.Now()
	playlist, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	metrics.ObserveUpstream("spotify", "create_playlist", start, err)
	if err != nil {
		return "", fmt.Errorf("creating playlist: %w", err)
	}

	return playlist.ID.String(), nil
}

// AddTracksToPlaylist adds tracks to a playlist, handling batching for large sets.
// Spotify allows max 100 tracks per request.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))
		batch := ids[i:end]

		start := time.Now()
		_, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), batch...)
		metrics.ObserveUpstream("spotify", "add_tracks", start, err)
		if err != nil {
			return fmt.Errorf("adding tracks (batch %d-%d): %w", i+1, end, err)
		}
	}

	return nil
}

// GetPlaylist fetches a playlist with its first page of tracks.
func (c *Client) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	start := time.Now()
	full, err := c.api.GetPlaylist(ctx, spotify.ID(playlistID))
	metrics.ObserveUpstream("spotify", "get_playlist", start, err)
	if err != nil {
		return nil, fmt.Errorf("getting playlist %s: %w", playlistID, err)
	}
	return convertPlaylist(full), nil
}

// UnfollowPlaylist removes the playlist from the current user's library,
// which is how Spotify deletes a playlist its owner created.
func (c *Client) UnfollowPlaylist(ctx context.Context, playlistID string) error {
	start := time.Now()
	err := c.api.UnfollowPlaylist(ctx, spotify.ID(playlistID))
	metrics.ObserveUpstream("spotify", "unfollow_playlist", start, err)
	if err != nil {
		return fmt.Errorf("unfollowing playlist %s: %w", playlistID, err)
	}
	return nil
}
