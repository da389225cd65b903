package playlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/justestif/go-boardgame-playlists/internal/bgg"
	"github.com/justestif/go-boardgame-playlists/internal/db"
	"github.com/justestif/go-boardgame-playlists/internal/logging"
	"github.com/justestif/go-boardgame-playlists/internal/mapper"
	"github.com/justestif/go-boardgame-playlists/internal/spotify"
)

// SaveRequest is a generation result the user wants to keep.
type SaveRequest struct {
	Playlist        *spotify.Playlist       `json:"playlist"`
	GameAttributes  *bgg.GameAttributes     `json:"gameAttributes"`
	MusicParameters *mapper.MusicParameters `json:"musicParameters"`
	MoodSettings    *mapper.MoodSettings    `json:"moodSettings,omitempty"`
	GameID          string                  `json:"gameId,omitempty"`
}

// Save stores a generated playlist for userID.
func (s *Service) Save(ctx context.Context, userID uuid.UUID, req SaveRequest) (*db.SavedPlaylist, error) {
	if req.Playlist == nil || req.Playlist.ID == "" || req.GameAttributes == nil || req.MusicParameters == nil {
		return nil, fmt.Errorf("%w: playlist, game attributes, and music parameters are required", ErrInvalidInput)
	}

	gameID := req.GameID
	if gameID == "" {
		gameID = req.GameAttributes.ID
	}

	saved := &db.SavedPlaylist{
		UserID:            userID,
		SpotifyPlaylistID: req.Playlist.ID,
		GameID:            gameID,
		GameName:          req.GameAttributes.Name,
		MusicParameters:   *req.MusicParameters,
	}
	if req.MoodSettings != nil {
		saved.MoodSettings = *req.MoodSettings
	}
	if saved.MusicParameters.Genres == nil {
		saved.MusicParameters.Genres = []string{}
	}

	if err := s.playlists.Create(ctx, saved); err != nil {
		return nil, fmt.Errorf("saving playlist: %w", err)
	}
	return saved, nil
}

// List returns the user's saved playlists, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]db.SavedPlaylist, error) {
	playlists, err := s.playlists.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	return playlists, nil
}

// Get returns one saved playlist. Playlists owned by someone else are
// reported as db.ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*db.SavedPlaylist, error) {
	p, err := s.playlists.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("getting playlist: %w", err)
	}
	return p, nil
}

// Delete removes a saved playlist. The Spotify playlist is unfollowed only
// when enabled and accessToken is set; failing to unfollow does not stop
// the local delete.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID, accessToken string) error {
	p, err := s.playlists.Get(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("getting playlist: %w", err)
	}

	if s.opts.UnfollowOnDelete && accessToken != "" {
		if err := s.music(ctx, accessToken).UnfollowPlaylist(ctx, p.SpotifyPlaylistID); err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("spotify_playlist_id", p.SpotifyPlaylistID).
				Msg("unfollowing playlist failed, deleting local record anyway")
		}
	}

	if err := s.playlists.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("deleting playlist: %w", err)
	}
	return nil
}
