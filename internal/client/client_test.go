package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/justestif/go-boardgame-playlists/internal/auth"
	"github.com/justestif/go-boardgame-playlists/internal/bgg"
	"github.com/justestif/go-boardgame-playlists/internal/playlist"
	"github.com/justestif/go-boardgame-playlists/internal/spotify"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeServer struct {
	refreshes atomic.Int32
	generates atomic.Int32
	lastAuth  atomic.Value
	lastSess  atomic.Value
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /refresh-token", func(w http.ResponseWriter, r *http.Request) {
		f.refreshes.Add(1)
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding refresh body: %v", err)
		}
		if body["refresh_token"] != "refresh-1" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Refresh token is required"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(auth.Tokens{
			AccessToken: "access-2",
			ExpiresAt:   testNow.Add(time.Hour).UnixMilli(),
		})
	})

	mux.HandleFunc("POST /playlist/generate", func(w http.ResponseWriter, r *http.Request) {
		f.generates.Add(1)
		f.lastAuth.Store(r.Header.Get("Authorization"))
		f.lastSess.Store(r.Header.Get("X-Session-Token"))

		var req playlist.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding generate body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(playlist.Result{
			Playlist:       &spotify.Playlist{ID: "pl-" + req.GameID, Name: req.GameName + " - Board Game Music"},
			GameAttributes: bgg.GameAttributes{ID: req.GameID, Name: req.GameName},
		})
	})

	mux.HandleFunc("GET /boardgame/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Search query is required"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":"13","name":"CATAN","yearpublished":"1995"}]`))
	})

	return mux
}

func newTestClient(t *testing.T, creds *auth.Credentials) (*Client, *fakeServer, *auth.TokenCache) {
	t.Helper()

	fs := &fakeServer{}
	srv := httptest.NewServer(fs.handler(t))
	t.Cleanup(srv.Close)

	store := auth.NewTokenCache(filepath.Join(t.TempDir(), "tokens.json"))
	if creds != nil {
		if err := store.Save(creds); err != nil {
			t.Fatal(err)
		}
	}

	c := New(srv.URL+"/", store, WithHTTPClient(srv.Client()))
	c.now = func() time.Time { return testNow }
	return c, fs, store
}

func credsExpiringIn(d time.Duration) *auth.Credentials {
	return &auth.Credentials{
		Tokens: auth.Tokens{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresAt:    testNow.Add(d).UnixMilli(),
		},
		SessionToken: "session-1",
	}
}

func TestGenerate_RefreshesBeforeCall(t *testing.T) {
	tests := []struct {
		name          string
		expiresIn     time.Duration
		wantRefreshes int32
		wantBearer    string
	}{
		{"valid token", time.Hour, 0, "Bearer access-1"},
		{"inside skew", 30 * time.Second, 1, "Bearer access-2"},
		{"expired", -time.Minute, 1, "Bearer access-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fs, store := newTestClient(t, credsExpiringIn(tt.expiresIn))

			result, err := c.Generate(context.Background(), playlist.GenerateRequest{GameID: "13", GameName: "Catan"})
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if result.Playlist.ID != "pl-13" {
				t.Errorf("playlist id = %q, want pl-13", result.Playlist.ID)
			}

			if got := fs.refreshes.Load(); got != tt.wantRefreshes {
				t.Errorf("refreshes = %d, want %d", got, tt.wantRefreshes)
			}
			if got := fs.lastAuth.Load(); got != tt.wantBearer {
				t.Errorf("Authorization = %v, want %q", got, tt.wantBearer)
			}
			if got := fs.lastSess.Load(); got != "session-1" {
				t.Errorf("X-Session-Token = %v, want session-1", got)
			}

			stored, err := store.Load()
			if err != nil {
				t.Fatal(err)
			}
			if stored.RefreshToken != "refresh-1" {
				t.Errorf("stored refresh token = %q, want it kept", stored.RefreshToken)
			}
			if stored.SessionToken != "session-1" {
				t.Errorf("stored session token = %q, want it kept", stored.SessionToken)
			}
		})
	}
}

func TestRefresh_Force(t *testing.T) {
	c, fs, _ := newTestClient(t, credsExpiringIn(time.Hour))

	creds, err := c.Refresh(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessToken != "access-1" || fs.refreshes.Load() != 0 {
		t.Errorf("unforced refresh of a valid token hit the server")
	}

	creds, err = c.Refresh(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessToken != "access-2" {
		t.Errorf("AccessToken = %q, want access-2", creds.AccessToken)
	}
	if fs.refreshes.Load() != 1 {
		t.Errorf("refreshes = %d, want 1", fs.refreshes.Load())
	}
}

func TestRefresh_Rejected(t *testing.T) {
	creds := credsExpiringIn(-time.Hour)
	creds.RefreshToken = "revoked"
	c, fs, _ := newTestClient(t, creds)

	_, err := c.Generate(context.Background(), playlist.GenerateRequest{GameID: "13", GameName: "Catan"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "Refresh token is required" {
		t.Errorf("APIError = %+v", apiErr)
	}
	if fs.generates.Load() != 0 {
		t.Error("generate called after failed refresh")
	}
}

func TestNotLoggedIn(t *testing.T) {
	c, fs, _ := newTestClient(t, nil)

	_, err := c.Generate(context.Background(), playlist.GenerateRequest{GameID: "13", GameName: "Catan"})
	if !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("error = %v, want ErrNotLoggedIn", err)
	}
	if fs.generates.Load() != 0 {
		t.Error("server called without credentials")
	}
}

func TestMissingRefreshToken(t *testing.T) {
	creds := credsExpiringIn(-time.Hour)
	creds.RefreshToken = ""
	c, _, _ := newTestClient(t, creds)

	_, err := c.Refresh(context.Background(), false)
	if !errors.Is(err, auth.ErrMissingRefreshToken) {
		t.Errorf("error = %v, want ErrMissingRefreshToken", err)
	}
}

func TestSearch(t *testing.T) {
	c, _, _ := newTestClient(t, nil)

	results, err := c.Search(context.Background(), "catan")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].YearPublished != "1995" {
		t.Errorf("results = %+v", results)
	}

	_, err = c.Search(context.Background(), "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("empty query error = %v, want 400 APIError", err)
	}
}
