package spotify

import (
	"context"
	"fmt"
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-boardgame-playlists/internal/metrics"
)

// MaxSeedGenres is the most seed genres a recommendation request accepts.
const MaxSeedGenres = 5

// Targets are the tunable track attributes sent with a recommendation request.
type Targets struct {
	Energy           float64
	Valence          float64
	Tempo            float64
	Instrumentalness float64
	Acousticness     float64
}

// Recommendations returns up to limit track IDs seeded by the first five genres.
func (c *Client) Recommendations(ctx context.Context, genres []string, targets Targets, limit int) ([]string, error) {
	if len(genres) > MaxSeedGenres {
		genres = genres[:MaxSeedGenres]
	}

	attrs := spotify.NewTrackAttributes().
		TargetEnergy(targets.Energy).
		TargetValence(targets.Valence).
		TargetTempo(targets.Tempo).
		TargetInstrumentalness(targets.Instrumentalness).
		TargetAcousticness(targets.Acousticness)

	start := time.Now()
	recs, err := c.api.GetRecommendations(ctx, spotify.Seeds{Genres: genres}, attrs, spotify.Limit(limit))
	metrics.ObserveUpstream("spotify", "recommendations", start, err)
	if err != nil {
		return nil, fmt.Errorf("getting recommendations: %w", err)
	}

	ids := make([]string, 0, len(recs.Tracks))
	for _, t := range recs.Tracks {
		ids = append(ids, t.ID.String())
	}
	return ids, nil
}
