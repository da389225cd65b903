package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/justestif/go-boardgame-playlists/internal/validation"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "CONFIG_PATH"

// DefaultPaths are searched in order when no path is given.
var DefaultPaths = []string{
	"config.yaml",
	"config.yml",
}

// envKeys maps lowercased environment variable names to koanf paths.
var envKeys = map[string]string{
	"http_addr":                    "server.addr",
	"post_login_url":               "server.post_login_url",
	"rate_limit":                   "server.rate_limit",
	"cors_origins":                 "server.cors_origins",
	"spotify_client_id":            "spotify.client_id",
	"spotify_client_secret":        "spotify.client_secret",
	"spotify_redirect_uri":         "spotify.redirect_uri",
	"database_url":                 "database.url",
	"database_auto_migrate":        "database.auto_migrate",
	"bgg_base_url":                 "catalog.base_url",
	"bgg_timeout":                  "catalog.timeout",
	"redis_url":                    "catalog.redis_url",
	"bgg_cache_ttl":                "catalog.cache_ttl",
	"session_secret":               "session.secret",
	"session_ttl":                  "session.ttl",
	"session_secure_cookie":        "session.secure_cookie",
	"playlists_unfollow_on_delete": "playlists.unfollow_on_delete",
	"default_track_count":          "playlists.default_track_count",
	"log_level":                    "logging.level",
	"log_format":                   "logging.format",
	"log_caller":                   "logging.caller",
}

// sliceKeys are split on commas when they arrive as a single string.
var sliceKeys = []string{"server.cors_origins"}

// Load reads and validates configuration. An empty path falls back to
// CONFIG_PATH and then DefaultPaths; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Read is Load without validation, for commands that only use part of the
// configuration.
func Read(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = findFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if err := splitSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// envKey maps an environment variable to a koanf path. Unknown variables
// map to "" and are ignored.
func envKey(name string) string {
	return envKeys[strings.ToLower(name)]
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func splitSlices(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		s, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}
	return nil
}
