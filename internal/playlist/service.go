// Package playlist generates Spotify playlists for board games and manages
// the ones users save.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-boardgame-playlists/internal/bgg"
	"github.com/justestif/go-boardgame-playlists/internal/db"
	"github.com/justestif/go-boardgame-playlists/internal/logging"
	"github.com/justestif/go-boardgame-playlists/internal/mapper"
	"github.com/justestif/go-boardgame-playlists/internal/metrics"
	"github.com/justestif/go-boardgame-playlists/internal/spotify"
)

// DefaultTrackCount is used when neither the request nor the options set one.
const DefaultTrackCount = 20

// ErrInvalidInput is returned when a request is missing required fields.
var ErrInvalidInput = errors.New("invalid input")

// fallbackSeeds seeds recommendations for games whose categories map to no genre.
var fallbackSeeds = []string{"soundtrack"}

// Catalog resolves game attributes.
type Catalog interface {
	Details(ctx context.Context, id string) (bgg.GameAttributes, error)
}

// Music is the subset of the Spotify API the service calls.
type Music interface {
	CurrentUser(ctx context.Context) (*spotify.User, error)
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (string, error)
	Recommendations(ctx context.Context, genres []string, targets spotify.Targets, limit int) ([]string, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error
	GetPlaylist(ctx context.Context, playlistID string) (*spotify.Playlist, error)
	UnfollowPlaylist(ctx context.Context, playlistID string) error
}

// MusicFactory builds a Music client acting as the owner of accessToken.
type MusicFactory func(ctx context.Context, accessToken string) Music

// Store persists saved playlists.
type Store interface {
	Create(ctx context.Context, p *db.SavedPlaylist) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]db.SavedPlaylist, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*db.SavedPlaylist, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// PreferencesStore persists per-user defaults.
type PreferencesStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*db.Preferences, error)
	Upsert(ctx context.Context, p *db.Preferences) error
}

// Options tune service behavior.
type Options struct {
	DefaultTrackCount int
	// UnfollowOnDelete also removes the Spotify playlist when a saved one is deleted.
	UnfollowOnDelete bool
}

// Service handles playlist generation and persistence.
type Service struct {
	catalog   Catalog
	music     MusicFactory
	playlists Store
	prefs     PreferencesStore
	opts      Options
	now       func() time.Time
}

// New creates a playlist service.
func New(catalog Catalog, music MusicFactory, playlists Store, prefs PreferencesStore, opts Options) *Service {
	if opts.DefaultTrackCount <= 0 {
		opts.DefaultTrackCount = DefaultTrackCount
	}
	return &Service{
		catalog:   catalog,
		music:     music,
		playlists: playlists,
		prefs:     prefs,
		opts:      opts,
		now:       time.Now,
	}
}

// GenerateRequest asks for a playlist for one game.
type GenerateRequest struct {
	GameID       string               `json:"gameId" validate:"required"`
	GameName     string               `json:"gameName" validate:"required"`
	MoodSettings *mapper.MoodSettings `json:"moodSettings,omitempty"`
	TrackCount   int                  `json:"trackCount,omitempty" validate:"omitempty,min=1,max=100"`
}

// Result is a generated playlist with the inputs that shaped it.
type Result struct {
	Playlist        *spotify.Playlist      `json:"playlist"`
	GameAttributes  bgg.GameAttributes     `json:"gameAttributes"`
	MusicParameters mapper.MusicParameters `json:"musicParameters"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// Generate creates a private Spotify playlist for the game in req. A playlist
// created before a later step fails is left in place.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, accessToken string, req GenerateRequest) (*Result, error) {
	if req.GameID == "" || req.GameName == "" {
		return nil, fmt.Errorf("%w: game id and name are required", ErrInvalidInput)
	}

	result, err := s.generate(ctx, userID, accessToken, req)
	if err != nil {
		metrics.PlaylistsGenerated.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.PlaylistsGenerated.WithLabelValues("ok").Inc()
	return result, nil
}

func (s *Service) generate(ctx context.Context, userID uuid.UUID, accessToken string, req GenerateRequest) (*Result, error) {
	log := logging.Ctx(ctx).With().Str("game_id", req.GameID).Logger()

	attrs, err := s.catalog.Details(ctx, req.GameID)
	if err != nil {
		return nil, fmt.Errorf("getting game details: %w", err)
	}

	mood := s.moodFor(ctx, userID, req.MoodSettings)
	params := mapper.Map(attrs, mood)

	trackCount := req.TrackCount
	if trackCount <= 0 {
		trackCount = s.opts.DefaultTrackCount
	}

	music := s.music(ctx, accessToken)

	user, err := music.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	name := req.GameName + " - Board Game Music"
	description := fmt.Sprintf("A playlist for %s based on the game's attributes and your mood settings. Mood: %s.",
		req.GameName, mapper.MoodLabel(params))

	playlistID, err := music.CreatePlaylist(ctx, user.ID, name, description, false)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("playlist_id", playlistID).Msg("created playlist")

	seeds := params.Genres
	if len(seeds) == 0 {
		seeds = fallbackSeeds
	}
	trackIDs, err := music.Recommendations(ctx, seeds, targetsFrom(params), trackCount)
	if err != nil {
		return nil, err
	}

	if len(trackIDs) > 0 {
		if err := music.AddTracksToPlaylist(ctx, playlistID, trackIDs); err != nil {
			return nil, err
		}
	}

	playlist, err := music.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("playlist_id", playlistID).
		Int("tracks", len(trackIDs)).
		Strs("genres", params.Genres).
		Msg("generated playlist")

	return &Result{
		Playlist:        playlist,
		GameAttributes:  attrs,
		MusicParameters: params,
		CreatedAt:       s.now().UTC(),
	}, nil
}

// moodFor overlays requested mood settings on the user's stored defaults.
// Preferences are consulted only when the request carries no settings.
func (s *Service) moodFor(ctx context.Context, userID uuid.UUID, requested *mapper.MoodSettings) *mapper.MoodSettings {
	if !requested.IsZero() || s.prefs == nil {
		return requested
	}

	prefs, err := s.prefs.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Msg("loading preferences, using derived defaults")
		}
		return requested
	}
	return mapper.MergeMood(&prefs.DefaultMoodSettings, requested)
}

func targetsFrom(p mapper.MusicParameters) spotify.Targets {
	return spotify.Targets{
		Energy:           p.Energy,
		Valence:          p.Valence,
		Tempo:            p.Tempo,
		Instrumentalness: p.Instrumentalness,
		Acousticness:     p.Acousticness,
	}
}
