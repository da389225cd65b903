package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/justestif/go-boardgame-playlists/internal/auth"
	"github.com/justestif/go-boardgame-playlists/internal/bgg"
	"github.com/justestif/go-boardgame-playlists/internal/config"
	"github.com/justestif/go-boardgame-playlists/internal/db"
	"github.com/justestif/go-boardgame-playlists/internal/logging"
	"github.com/justestif/go-boardgame-playlists/internal/playlist"
	"github.com/justestif/go-boardgame-playlists/internal/spotify"
	"github.com/justestif/go-boardgame-playlists/internal/web"
)

func serveCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API",
		Action: r.serve,
	}
}

func (r *runner) serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	database, err := db.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := migrateUp(database); err != nil {
			return err
		}
	}

	catalog, closeCatalog, err := newCatalog(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer closeCatalog()

	music := func(ctx context.Context, accessToken string) playlist.Music {
		return spotify.NewForToken(ctx, accessToken)
	}
	playlists := playlist.New(catalog, music, database.Playlists(), database.Preferences(), playlist.Options{
		DefaultTrackCount: cfg.Playlists.DefaultTrackCount,
		UnfollowOnDelete:  cfg.Playlists.UnfollowOnDelete,
	})

	server := web.NewServer(web.ServerConfig{
		Addr:         cfg.Server.Addr,
		PostLoginURL: cfg.Server.PostLoginURL,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		RateLimit:    cfg.Server.RateLimit,
		CORSOrigins:  cfg.Server.CORSOrigins,
		SecureCookie: cfg.Session.SecureCookie,
	}, web.Deps{
		Relay:     auth.NewRelay(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.RedirectURI),
		Sessions:  auth.NewSessions(cfg.Session.Secret, cfg.Session.TTL),
		Profiles:  database.Profiles(),
		Catalog:   catalog,
		Playlists: playlists,
		Health:    database,
	})

	return server.Run(ctx)
}

// newCatalog builds the BoardGameGeek client, with the Redis cache when a
// URL is configured. The returned func releases the cache.
func newCatalog(ctx context.Context, cfg config.CatalogConfig) (*bgg.Client, func(), error) {
	opts := []bgg.Option{
		bgg.WithBaseURL(cfg.BaseURL),
		bgg.WithTimeout(cfg.Timeout),
	}

	closeFn := func() {}
	if cfg.RedisURL != "" {
		cache, err := bgg.NewRedisCache(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting catalog cache: %w", err)
		}
		opts = append(opts, bgg.WithCache(cache))
		closeFn = func() {
			if err := cache.Close(); err != nil {
				logging.Warn().Err(err).Msg("closing catalog cache")
			}
		}
		logging.Info().Dur("ttl", cfg.CacheTTL).Msg("catalog cache enabled")
	}

	return bgg.New(opts...), closeFn, nil
}
