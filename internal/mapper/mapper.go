// Package mapper turns board game attributes into music recommendation
// parameters.
package mapper

import (
	"math"
	"strings"

	"github.com/justestif/go-boardgame-playlists/internal/bgg"
)

// Default parameter values used when neither the game nor the mood settings
// provide one.
const (
	DefaultValence          = 0.5
	DefaultTempo            = 120.0
	DefaultInstrumentalness = 0.5
	DefaultAcousticness     = 0.5

	minEnergy  = 0.3
	maxEnergy  = 0.9
	energySpan = 0.6
	maxWeight  = 5.0
)

// MoodSettings holds optional overrides. A nil field keeps the derived value.
type MoodSettings struct {
	Energy           *float64 `json:"energy,omitempty" validate:"omitempty,gte=0,lte=1"`
	Valence          *float64 `json:"valence,omitempty" validate:"omitempty,gte=0,lte=1"`
	Tempo            *float64 `json:"tempo,omitempty" validate:"omitempty,gt=0,lte=300"`
	Instrumentalness *float64 `json:"instrumentalness,omitempty" validate:"omitempty,gte=0,lte=1"`
	Acousticness     *float64 `json:"acousticness,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// IsZero reports whether no field is set.
func (m *MoodSettings) IsZero() bool {
	return m == nil || (m.Energy == nil && m.Valence == nil && m.Tempo == nil &&
		m.Instrumentalness == nil && m.Acousticness == nil)
}

// MusicParameters are the targets sent with a recommendation request.
type MusicParameters struct {
	Genres           []string `json:"genres"`
	Energy           float64  `json:"energy"`
	Valence          float64  `json:"valence"`
	Tempo            float64  `json:"tempo"`
	Instrumentalness float64  `json:"instrumentalness"`
	Acousticness     float64  `json:"acousticness"`
}

// Map derives music parameters from a game and optional mood overrides.
// It is total: any input produces parameters within range.
func Map(attrs bgg.GameAttributes, mood *MoodSettings) MusicParameters {
	params := MusicParameters{
		Genres:           GenresFor(attrs.Categories),
		Energy:           Energy(attrs.Weight),
		Valence:          DefaultValence,
		Tempo:            DefaultTempo,
		Instrumentalness: DefaultInstrumentalness,
		Acousticness:     DefaultAcousticness,
	}

	if mood == nil {
		return params
	}
	if mood.Energy != nil {
		params.Energy = unit(*mood.Energy, params.Energy)
	}
	if mood.Valence != nil {
		params.Valence = unit(*mood.Valence, params.Valence)
	}
	if mood.Tempo != nil && *mood.Tempo > 0 && !math.IsInf(*mood.Tempo, 0) {
		params.Tempo = *mood.Tempo
	}
	if mood.Instrumentalness != nil {
		params.Instrumentalness = unit(*mood.Instrumentalness, params.Instrumentalness)
	}
	if mood.Acousticness != nil {
		params.Acousticness = unit(*mood.Acousticness, params.Acousticness)
	}
	return params
}

// Energy blends complexity linearly into [0.3, 0.9]:
// min(0.9, 0.3 + weight/5*0.6), with weight clamped to [0, 5].
func Energy(weight float64) float64 {
	if math.IsNaN(weight) || weight < 0 {
		weight = 0
	}
	weight = math.Min(weight, maxWeight)
	return math.Min(maxEnergy, minEnergy+(weight/maxWeight)*energySpan)
}

// GenresFor maps categories to a deduplicated genre list in first-seen order.
func GenresFor(categories []string) []string {
	genres := make([]string, 0, len(categories)*3)
	seen := make(map[string]bool)
	for _, category := range categories {
		entry, ok := lookup(category)
		if !ok {
			continue
		}
		for _, g := range entry.Genres {
			if !seen[g] {
				seen[g] = true
				genres = append(genres, g)
			}
		}
	}
	return genres
}

// lookup returns the first table entry whose key appears in category,
// ignoring case.
func lookup(category string) (GenreEntry, bool) {
	lower := strings.ToLower(category)
	for _, entry := range genreTable {
		if strings.Contains(lower, strings.ToLower(entry.Category)) {
			return entry, true
		}
	}
	return GenreEntry{}, false
}

// unit clamps v into [0,1]; NaN keeps fallback.
func unit(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return math.Max(0, math.Min(1, v))
}
