package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-boardgame-playlists/internal/mapper"
)

// Profile is a signed-in Spotify user.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	SpotifyID   string    `json:"spotify_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SavedPlaylist records a generated playlist the user chose to keep.
// It is never updated after creation.
type SavedPlaylist struct {
	ID                uuid.UUID              `json:"id"`
	UserID            uuid.UUID              `json:"user_id"`
	SpotifyPlaylistID string                 `json:"spotify_playlist_id"`
	GameID            string                 `json:"game_id"`
	GameName          string                 `json:"game_name"`
	MoodSettings      mapper.MoodSettings    `json:"mood_settings"`
	MusicParameters   mapper.MusicParameters `json:"music_parameters"`
	CreatedAt         time.Time              `json:"created_at"`
}

// Preferences are per-user defaults.
type Preferences struct {
	UserID              uuid.UUID           `json:"user_id"`
	FavoriteGenres      []string            `json:"favorite_genres"`
	DefaultMoodSettings mapper.MoodSettings `json:"default_mood_settings"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}
