package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/justestif/go-boardgame-playlists/internal/db"
	"github.com/justestif/go-boardgame-playlists/internal/logging"
)

func migrateCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply all pending migrations",
				Action: r.withDB(func(_ context.Context, database *db.DB) error { return migrateUp(database) }),
			},
			{
				Name:  "down",
				Usage: "Revert the most recent migration",
				Action: r.withDB(func(_ context.Context, database *db.DB) error {
					return withMigrator(database, func(m *db.Migrator) error { return m.Down() })
				}),
			},
			{
				Name:   "version",
				Usage:  "Print the current schema version",
				Action: r.withDB(r.migrateVersion),
			},
		},
	}
}

// withDB opens the configured database for the duration of fn. Only the
// database section of the configuration is required.
func (r *runner) withDB(fn func(context.Context, *db.DB) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := r.readConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Database.URL == "" {
			return errors.New("database url is required (DATABASE_URL or database.url)")
		}

		database, err := db.New(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer database.Close()

		return fn(ctx, database)
	}
}

func (r *runner) migrateVersion(_ context.Context, database *db.DB) error {
	return withMigrator(database, func(m *db.Migrator) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		r.printf("version %d", version)
		if dirty {
			r.printf(" (dirty)")
		}
		r.printf("\n")
		return nil
	})
}

func migrateUp(database *db.DB) error {
	return withMigrator(database, func(m *db.Migrator) error {
		if err := m.Up(); err != nil {
			return err
		}
		logging.Info().Msg("migrations applied")
		return nil
	})
}

func withMigrator(database *db.DB, fn func(*db.Migrator) error) (err error) {
	m, err := database.NewMigrator()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, m.Close())
	}()
	return fn(m)
}
