package playlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/justestif/go-boardgame-playlists/internal/db"
	"github.com/justestif/go-boardgame-playlists/internal/mapper"
)

// PreferencesRequest replaces a user's stored defaults.
type PreferencesRequest struct {
	FavoriteGenres      []string            `json:"favorite_genres" validate:"max=20,dive,required"`
	DefaultMoodSettings mapper.MoodSettings `json:"default_mood_settings"`
}

// Preferences returns the user's stored defaults, or empty defaults when
// none are stored.
func (s *Service) Preferences(ctx context.Context, userID uuid.UUID) (*db.Preferences, error) {
	p, err := s.prefs.Get(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return &db.Preferences{UserID: userID, FavoriteGenres: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting preferences: %w", err)
	}
	return p, nil
}

// SavePreferences stores req as the user's defaults.
func (s *Service) SavePreferences(ctx context.Context, userID uuid.UUID, req PreferencesRequest) (*db.Preferences, error) {
	p := &db.Preferences{
		UserID:              userID,
		FavoriteGenres:      req.FavoriteGenres,
		DefaultMoodSettings: req.DefaultMoodSettings,
	}
	if err := s.prefs.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("saving preferences: %w", err)
	}
	return p, nil
}
