// Package config loads application configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Spotify   SpotifyConfig   `koanf:"spotify"`
	Database  DatabaseConfig  `koanf:"database"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Session   SessionConfig   `koanf:"session"`
	Playlists PlaylistsConfig `koanf:"playlists"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener and browser-facing URLs.
type ServerConfig struct {
	Addr         string        `koanf:"addr" validate:"required"`
	PostLoginURL string        `koanf:"post_login_url" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	// RateLimit is requests per minute per client IP on API routes; 0 disables it.
	RateLimit   int      `koanf:"rate_limit" validate:"gte=0"`
	CORSOrigins []string `koanf:"cors_origins"`
}

// SpotifyConfig holds the OAuth application credentials.
type SpotifyConfig struct {
	ClientID     string `koanf:"client_id" validate:"required"`
	ClientSecret string `koanf:"client_secret" validate:"required"`
	RedirectURI  string `koanf:"redirect_uri" validate:"required,url"`
}

// DatabaseConfig configures PostgreSQL.
type DatabaseConfig struct {
	URL         string `koanf:"url" validate:"required"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

// CatalogConfig configures the BoardGameGeek client.
type CatalogConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	// RedisURL enables the response cache when set.
	RedisURL string        `koanf:"redis_url"`
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

// SessionConfig configures the signed session token.
type SessionConfig struct {
	Secret       string        `koanf:"secret" validate:"required,min=32"`
	TTL          time.Duration `koanf:"ttl" validate:"gt=0"`
	SecureCookie bool          `koanf:"secure_cookie"`
}

// PlaylistsConfig holds playlist behavior switches.
type PlaylistsConfig struct {
	// UnfollowOnDelete also removes the Spotify playlist when a saved one is deleted.
	UnfollowOnDelete  bool `koanf:"unfollow_on_delete"`
	DefaultTrackCount int  `koanf:"default_track_count" validate:"min=1,max=100"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			PostLoginURL: "/dashboard",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			RateLimit:    100,
			CORSOrigins:  []string{"http://localhost:3000"},
		},
		Spotify: SpotifyConfig{
			RedirectURI: "http://127.0.0.1:8080/callback",
		},
		Catalog: CatalogConfig{
			BaseURL:  "https://boardgamegeek.com/xmlapi2",
			Timeout:  10 * time.Second,
			CacheTTL: 6 * time.Hour,
		},
		Session: SessionConfig{
			TTL: 24 * time.Hour,
		},
		Playlists: PlaylistsConfig{
			DefaultTrackCount: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
