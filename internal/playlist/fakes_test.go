package playlist

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-boardgame-playlists/internal/bgg"
	"github.com/justestif/go-boardgame-playlists/internal/db"
	"github.com/justestif/go-boardgame-playlists/internal/spotify"
)

type fakeCatalog struct {
	games map[string]bgg.GameAttributes
	err   error
}

func (f *fakeCatalog) Details(_ context.Context, id string) (bgg.GameAttributes, error) {
	if f.err != nil {
		return bgg.GameAttributes{}, f.err
	}
	g, ok := f.games[id]
	if !ok {
		return bgg.GameAttributes{}, bgg.ErrGameNotFound
	}
	return g, nil
}

type fakeMusic struct {
	mu sync.Mutex

	userErr     error
	createErr   error
	recsErr     error
	addErr      error
	unfollowErr error
	recommended []string
	calls       []string
	created     []string
	createdDesc string
	seeds       []string
	targets     spotify.Targets
	limit       int
	added       []string
	unfollowed  []string
	tokenUsed   string
}

func (f *fakeMusic) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeMusic) CurrentUser(context.Context) (*spotify.User, error) {
	f.record("CurrentUser")
	if f.userErr != nil {
		return nil, f.userErr
	}
	return &spotify.User{ID: "spotify-user"}, nil
}

func (f *fakeMusic) CreatePlaylist(_ context.Context, userID, name, description string, public bool) (string, error) {
	f.record("CreatePlaylist")
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, name)
	f.createdDesc = description
	return "pl-1", nil
}

func (f *fakeMusic) Recommendations(_ context.Context, genres []string, targets spotify.Targets, limit int) ([]string, error) {
	f.record("Recommendations")
	if f.recsErr != nil {
		return nil, f.recsErr
	}
	f.seeds = genres
	f.targets = targets
	f.limit = limit
	return f.recommended, nil
}

func (f *fakeMusic) AddTracksToPlaylist(_ context.Context, _ string, ids []string) error {
	f.record("AddTracksToPlaylist")
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, ids...)
	return nil
}

func (f *fakeMusic) GetPlaylist(_ context.Context, id string) (*spotify.Playlist, error) {
	f.record("GetPlaylist")
	items := make([]spotify.TrackItem, len(f.added))
	for i, t := range f.added {
		items[i] = spotify.TrackItem{Track: spotify.Track{ID: t}}
	}
	return &spotify.Playlist{
		ID:     id,
		Name:   f.created[len(f.created)-1],
		Tracks: spotify.TrackPage{Total: len(items), Items: items},
	}, nil
}

func (f *fakeMusic) UnfollowPlaylist(_ context.Context, id string) error {
	f.record("UnfollowPlaylist")
	if f.unfollowErr != nil {
		return f.unfollowErr
	}
	f.unfollowed = append(f.unfollowed, id)
	return nil
}

func (f *fakeMusic) factory() MusicFactory {
	return func(_ context.Context, token string) Music {
		f.tokenUsed = token
		return f
	}
}

type memStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]db.SavedPlaylist
	now  time.Time
	err  error
}

func newMemStore() *memStore {
	return &memStore{rows: map[uuid.UUID]db.SavedPlaylist{}, now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memStore) Create(_ context.Context, p *db.SavedPlaylist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.now = m.now.Add(time.Minute)
	p.CreatedAt = m.now
	m.rows[p.ID] = *p
	return nil
}

func (m *memStore) ListByUser(_ context.Context, userID uuid.UUID) ([]db.SavedPlaylist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.SavedPlaylist{}
	for _, p := range m.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) Get(_ context.Context, userID, id uuid.UUID) (*db.SavedPlaylist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.UserID != userID {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.UserID != userID {
		return db.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memPrefs struct {
	rows map[uuid.UUID]db.Preferences
	err  error
}

func (m *memPrefs) Get(_ context.Context, userID uuid.UUID) (*db.Preferences, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.rows[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (m *memPrefs) Upsert(_ context.Context, p *db.Preferences) error {
	if m.err != nil {
		return m.err
	}
	if m.rows == nil {
		m.rows = map[uuid.UUID]db.Preferences{}
	}
	p.UpdatedAt = time.Now()
	m.rows[p.UserID] = *p
	return nil
}

var errBoom = errors.New("boom")
