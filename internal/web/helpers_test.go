package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/justestif/go-boardgame-playlists/internal/auth"
	"github.com/justestif/go-boardgame-playlists/internal/bgg"
	"github.com/justestif/go-boardgame-playlists/internal/db"
	"github.com/justestif/go-boardgame-playlists/internal/playlist"
	"github.com/justestif/go-boardgame-playlists/internal/spotify"
)

const testSecret = "test-secret-test-secret-test-secret!"

var errUpstream = errors.New("upstream down")

type fakeRelay struct {
	tokens      auth.Tokens
	exchangeErr error
	refreshErr  error
	refreshed   []string
}

func (f *fakeRelay) AuthURL(state string) string {
	return "https://accounts.spotify.com/authorize?state=" + state
}

func (f *fakeRelay) Exchange(context.Context, string) (auth.Tokens, error) {
	return f.tokens, f.exchangeErr
}

func (f *fakeRelay) Refresh(_ context.Context, rt string) (auth.Tokens, error) {
	f.refreshed = append(f.refreshed, rt)
	if f.refreshErr != nil {
		return auth.Tokens{}, f.refreshErr
	}
	return auth.Tokens{AccessToken: "new-access", RefreshToken: rt, ExpiresAt: 1700000000000}, nil
}

type fakeCatalog struct {
	mu      sync.Mutex
	calls   int
	games   map[string]bgg.GameAttributes
	results []bgg.SearchResult
	err     error
}

func (f *fakeCatalog) Search(context.Context, string) ([]bgg.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.results, f.err
}

func (f *fakeCatalog) Details(_ context.Context, id string) (bgg.GameAttributes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return bgg.GameAttributes{}, f.err
	}
	g, ok := f.games[id]
	if !ok {
		return bgg.GameAttributes{}, bgg.ErrGameNotFound
	}
	return g, nil
}

type fakeProfiles struct {
	err   error
	saved []db.Profile
}

func (f *fakeProfiles) Upsert(_ context.Context, p *db.Profile) error {
	if f.err != nil {
		return f.err
	}
	p.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(p.SpotifyID))
	f.saved = append(f.saved, *p)
	return nil
}

type fakeMusic struct {
	mu      sync.Mutex
	calls   int
	userErr error
}

func (f *fakeMusic) hit() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeMusic) CurrentUser(context.Context) (*spotify.User, error) {
	f.hit()
	if f.userErr != nil {
		return nil, f.userErr
	}
	return &spotify.User{ID: "spotify-user"}, nil
}

func (f *fakeMusic) CreatePlaylist(context.Context, string, string, string, bool) (string, error) {
	f.hit()
	return "pl-1", nil
}

func (f *fakeMusic) Recommendations(context.Context, []string, spotify.Targets, int) ([]string, error) {
	f.hit()
	return []string{"t1", "t2"}, nil
}

func (f *fakeMusic) AddTracksToPlaylist(context.Context, string, []string) error {
	f.hit()
	return nil
}

func (f *fakeMusic) GetPlaylist(_ context.Context, id string) (*spotify.Playlist, error) {
	f.hit()
	return &spotify.Playlist{ID: id, Name: "Catan - Board Game Music", Tracks: spotify.TrackPage{Total: 2}}, nil
}

func (f *fakeMusic) UnfollowPlaylist(context.Context, string) error {
	f.hit()
	return nil
}

type memPlaylists struct {
	mu   sync.Mutex
	rows map[uuid.UUID]db.SavedPlaylist
}

func (m *memPlaylists) Create(_ context.Context, p *db.SavedPlaylist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.rows[p.ID] = *p
	return nil
}

func (m *memPlaylists) ListByUser(_ context.Context, userID uuid.UUID) ([]db.SavedPlaylist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.SavedPlaylist{}
	for _, p := range m.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPlaylists) Get(_ context.Context, userID, id uuid.UUID) (*db.SavedPlaylist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.UserID != userID {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (m *memPlaylists) Delete(_ context.Context, userID, id uuid.UUID) error {
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
}

func (m *memPrefs) Get(_ context.Context, userID uuid.UUID) (*db.Preferences, error) {
	p, ok := m.rows[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (m *memPrefs) Upsert(_ context.Context, p *db.Preferences) error {
	m.rows[p.UserID] = *p
	return nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type testEnv struct {
	server    *Server
	relay     *fakeRelay
	catalog   *fakeCatalog
	profiles  *fakeProfiles
	music     *fakeMusic
	playlists *memPlaylists
	sessions  *auth.Sessions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		relay: &fakeRelay{tokens: auth.Tokens{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresAt:    1700000000000,
		}},
		catalog: &fakeCatalog{games: map[string]bgg.GameAttributes{
			"13": {ID: "13", Name: "CATAN", Categories: []string{"Economic"}, Weight: 2.3},
		}},
		profiles:  &fakeProfiles{},
		music:     &fakeMusic{},
		playlists: &memPlaylists{rows: map[uuid.UUID]db.SavedPlaylist{}},
		sessions:  auth.NewSessions(testSecret, time.Hour),
	}

	factory := func(context.Context, string) playlist.Music { return env.music }
	svc := playlist.New(env.catalog, factory, env.playlists, &memPrefs{rows: map[uuid.UUID]db.Preferences{}},
		playlist.Options{UnfollowOnDelete: true})

	env.server = NewServer(ServerConfig{
		Addr:         "127.0.0.1:0",
		PostLoginURL: "http://localhost:3000/dashboard",
		CORSOrigins:  []string{"http://localhost:3000"},
	}, Deps{
		Relay:     env.relay,
		Sessions:  env.sessions,
		Profiles:  env.profiles,
		Catalog:   env.catalog,
		Playlists: svc,
		FetchProfile: func(context.Context, string) (*spotify.User, error) {
			return &spotify.User{ID: "spotify-user", DisplayName: "Meeple", AvatarURL: "https://img/a.jpg"}, nil
		},
	})
	return env
}

// session issues a session token for a fresh profile and returns both.
func (e *testEnv) session(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	tok, err := e.sessions.Issue(id.String(), "spotify-"+id.String())
	if err != nil {
		t.Fatal(err)
	}
	return id, tok
}

type request struct {
	method  string
	path    string
	body    any
	session string
	bearer  string
	headers map[string]string
	cookies []*http.Cookie
}

func (e *testEnv) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if req.body != nil {
		switch b := req.body.(type) {
		case string:
			body.WriteString(b)
		default:
			if err := json.NewEncoder(&body).Encode(b); err != nil {
				t.Fatal(err)
			}
		}
	}

	r := httptest.NewRequest(req.method, req.path, &body)
	if req.body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.session != "" {
		r.Header.Set(sessionHeader, req.session)
	}
	if req.bearer != "" {
		r.Header.Set("Authorization", "Bearer "+req.bearer)
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, r)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
