// Command boardgame-playlists serves the board game playlist API and
// provides CLI access to it.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/justestif/go-boardgame-playlists/internal/config"
	"github.com/justestif/go-boardgame-playlists/internal/logging"
)

func main() {
	r := &runner{output: os.Stdout}

	app := &cli.Command{
		Name:  "boardgame-playlists",
		Usage: "Spotify playlists that fit your board game",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Sources: cli.EnvVars(config.PathEnvVar),
			},
		},
		Commands: r.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runner holds what command actions share.
type runner struct {
	output io.Writer
}

func (r *runner) register() []*cli.Command {
	return []*cli.Command{
		serveCommand(r),
		migrateCommand(r),
		catalogCommand(r),
		loginCommand(r),
		logoutCommand(r),
		refreshCommand(r),
		generateCommand(r),
		savedCommand(r),
	}
}

// loadConfig reads and validates the full configuration and initializes
// logging from it.
func (r *runner) loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	initLogging(cfg)
	return cfg, nil
}

// readConfig is loadConfig without validation.
func (r *runner) readConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Read(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	initLogging(cfg)
	return cfg, nil
}

func initLogging(cfg *config.Config) {
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
}

func (r *runner) printf(format string, args ...any) {
	fmt.Fprintf(r.output, format, args...)
}
