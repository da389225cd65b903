package mapper

import (
	"math"
	"reflect"
	"testing"

	"github.com/justestif/go-boardgame-playlists/internal/bgg"
)

func f(v float64) *float64 { return &v }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEnergy(t *testing.T) {
	tests := []struct {
		weight float64
		want   float64
	}{
		{0, 0.3},
		{1, 0.42},
		{2.5, 0.6},
		{3.5, 0.72},
		{5, 0.9},
		{7, 0.9},
		{-2, 0.3},
		{math.NaN(), 0.3},
	}

	for _, tt := range tests {
		if got := Energy(tt.weight); !approx(got, tt.want) {
			t.Errorf("Energy(%v) = %v, want %v", tt.weight, got, tt.want)
		}
	}
}

func TestEnergyBoundsOverWeightRange(t *testing.T) {
	for w := 0.0; w <= 5.0; w += 0.01 {
		e := Energy(w)
		if e < 0.3-1e-9 || e > 0.9+1e-9 {
			t.Fatalf("Energy(%v) = %v, outside [0.3, 0.9]", w, e)
		}
	}
}

func TestGenresFor(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		want       []string
	}{
		{
			name:       "fantasy and economic",
			categories: []string{"Fantasy", "Economic"},
			want:       []string{"fantasy", "folk", "celtic", "classical", "jazz", "lounge"},
		},
		{
			name:       "duplicates removed in first-seen order",
			categories: []string{"Adventure", "Medieval", "Fantasy"},
			want:       []string{"soundtrack", "world", "folk", "classical", "fantasy", "celtic"},
		},
		{
			name:       "case-insensitive substring",
			categories: []string{"science fiction", "Card Game: Trick-taking"},
			want:       []string{"electronic", "ambient", "synth-pop", "acoustic", "folk", "pop"},
		},
		{
			name:       "first table key wins per category",
			categories: []string{"Fantasy Fighting"},
			want:       []string{"fantasy", "folk", "celtic"},
		},
		{
			name:       "unknown categories ignored",
			categories: []string{"Negotiation", "Trains"},
			want:       []string{},
		},
		{
			name:       "nil categories",
			categories: nil,
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenresFor(tt.categories)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GenresFor(%v) = %v, want %v", tt.categories, got, tt.want)
			}
		})
	}
}

func TestGenresForNeverDuplicates(t *testing.T) {
	var all []string
	for _, e := range GenreTable() {
		all = append(all, e.Category, e.Category)
	}

	seen := make(map[string]bool)
	for _, g := range GenresFor(all) {
		if seen[g] {
			t.Fatalf("duplicate genre %q", g)
		}
		seen[g] = true
	}
}

func TestMap(t *testing.T) {
	game := bgg.GameAttributes{
		Name:       "Test",
		Categories: []string{"Fantasy", "Economic"},
		Weight:     3.5,
	}

	got := Map(game, nil)

	if !approx(got.Energy, 0.72) {
		t.Errorf("Energy = %v, want 0.72", got.Energy)
	}
	want := []string{"fantasy", "folk", "celtic", "classical", "jazz", "lounge"}
	if !reflect.DeepEqual(got.Genres, want) {
		t.Errorf("Genres = %v, want %v", got.Genres, want)
	}
	if got.Valence != 0.5 || got.Tempo != 120 || got.Instrumentalness != 0.5 || got.Acousticness != 0.5 {
		t.Errorf("defaults = %+v", got)
	}
}

func TestMap_MoodOverrides(t *testing.T) {
	tests := []struct {
		name string
		mood *MoodSettings
		want MusicParameters
	}{
		{
			name: "energy override wins over weight",
			mood: &MoodSettings{Energy: f(0.8)},
			want: MusicParameters{Energy: 0.8, Valence: 0.5, Tempo: 120, Instrumentalness: 0.5, Acousticness: 0.5},
		},
		{
			name: "zero override is still an override",
			mood: &MoodSettings{Valence: f(0), Acousticness: f(0)},
			want: MusicParameters{Energy: 0.3, Valence: 0, Tempo: 120, Instrumentalness: 0.5, Acousticness: 0},
		},
		{
			name: "all fields",
			mood: &MoodSettings{Energy: f(0.1), Valence: f(0.9), Tempo: f(90), Instrumentalness: f(1), Acousticness: f(0.7)},
			want: MusicParameters{Energy: 0.1, Valence: 0.9, Tempo: 90, Instrumentalness: 1, Acousticness: 0.7},
		},
		{
			name: "out of range values are clamped",
			mood: &MoodSettings{Energy: f(1.4), Valence: f(-0.2), Tempo: f(-5)},
			want: MusicParameters{Energy: 1, Valence: 0, Tempo: 120, Instrumentalness: 0.5, Acousticness: 0.5},
		},
		{
			name: "empty settings keep defaults",
			mood: &MoodSettings{},
			want: MusicParameters{Energy: 0.3, Valence: 0.5, Tempo: 120, Instrumentalness: 0.5, Acousticness: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Map(bgg.GameAttributes{Weight: 0}, tt.mood)
			got.Genres = nil
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Map() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMap_DoesNotAliasTable(t *testing.T) {
	got := Map(bgg.GameAttributes{Categories: []string{"Dice"}}, nil)
	got.Genres[0] = "mutated"

	again := Map(bgg.GameAttributes{Categories: []string{"Dice"}}, nil)
	if again.Genres[0] != "jazz" {
		t.Errorf("genre table was mutated: %v", again.Genres)
	}
}
