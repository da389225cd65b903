package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/justestif/go-boardgame-playlists/internal/validation"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SPOTIFY_CLIENT_ID", "client-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "client-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/boardgames")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Server.Addr = %q, want 127.0.0.1:8080", cfg.Server.Addr)
	}
	if cfg.Catalog.BaseURL != "https://boardgamegeek.com/xmlapi2" {
		t.Errorf("Catalog.BaseURL = %q", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.Timeout != 10*time.Second {
		t.Errorf("Catalog.Timeout = %v, want 10s", cfg.Catalog.Timeout)
	}
	if cfg.Playlists.DefaultTrackCount != 20 {
		t.Errorf("Playlists.DefaultTrackCount = %d, want 20", cfg.Playlists.DefaultTrackCount)
	}
	if cfg.Playlists.UnfollowOnDelete {
		t.Error("Playlists.UnfollowOnDelete = true, want false")
	}
	if cfg.Spotify.ClientID != "client-id" {
		t.Errorf("Spotify.ClientID = %q, want client-id", cfg.Spotify.ClientID)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("BGG_TIMEOUT", "3s")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  addr: "0.0.0.0:9000"
logging:
  level: warn
  format: console
playlists:
  unfollow_on_delete: true
`
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("Server.Addr = %q, want file value", cfg.Server.Addr)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want env value debug", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console", cfg.Logging.Format)
	}
	if !cfg.Playlists.UnfollowOnDelete {
		t.Error("Playlists.UnfollowOnDelete = false, want true")
	}
	if cfg.Catalog.Timeout != 3*time.Second {
		t.Errorf("Catalog.Timeout = %v, want 3s", cfg.Catalog.Timeout)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_SECRET", "short")

	_, err := Load("")
	if err == nil {
		t.Fatal("Load() error = nil, want validation error")
	}

	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("Load() error = %v, want *validation.Error", err)
	}
	for _, field := range []string{"client_id", "client_secret", "url", "secret"} {
		if !verr.Has(field) {
			t.Errorf("missing validation failure for %s in %v", field, verr)
		}
	}
}

func TestRead_SkipsValidation(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Read("")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if cfg.Catalog.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Catalog.RedisURL = %q", cfg.Catalog.RedisURL)
	}
}
