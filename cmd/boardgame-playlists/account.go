package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/justestif/go-boardgame-playlists/internal/auth"
	"github.com/justestif/go-boardgame-playlists/internal/client"
)

const defaultServerURL = "http://127.0.0.1:8080"

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Usage:   "Base URL of the boardgame-playlists server",
			Value:   defaultServerURL,
			Sources: cli.EnvVars("BOARDGAME_PLAYLISTS_SERVER"),
		},
		&cli.StringFlag{
			Name:  "token-file",
			Usage: "Where credentials are stored (default: user config dir)",
		},
	}
}

func loginCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "Sign in with Spotify through the server",
		Flags:  serverFlags(),
		Action: r.login,
	}
}

func refreshCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Refresh the stored Spotify access token",
		Flags: append(serverFlags(),
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Refresh even if the token is still valid",
			},
		),
		Action: r.refresh,
	}
}

func logoutCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Forget the stored Spotify credentials",
		Flags:  serverFlags(),
		Action: r.logout,
	}
}

func tokenCache(cmd *cli.Command) (*auth.TokenCache, error) {
	if path := cmd.String("token-file"); path != "" {
		return auth.NewTokenCache(path), nil
	}
	return auth.DefaultTokenCache()
}

// apiClient returns a client for the --server flag backed by the token file.
func apiClient(cmd *cli.Command) (*client.Client, error) {
	cache, err := tokenCache(cmd)
	if err != nil {
		return nil, err
	}
	return client.New(cmd.String("server"), cache), nil
}

func (r *runner) login(ctx context.Context, cmd *cli.Command) error {
	cache, err := tokenCache(cmd)
	if err != nil {
		return err
	}

	creds, err := auth.LoopbackLogin(ctx, cmd.String("server"), r.output)
	if err != nil {
		return err
	}
	if err := cache.Save(creds); err != nil {
		return err
	}

	r.printf("Signed in. Credentials saved to %s\n", cache.Path())
	return nil
}

func (r *runner) refresh(ctx context.Context, cmd *cli.Command) error {
	c, err := apiClient(cmd)
	if err != nil {
		return err
	}

	creds, err := c.Refresh(ctx, cmd.Bool("force"))
	if err != nil {
		return err
	}

	r.printf("Access token valid until %s\n", creds.Expiry().Local().Format(time.RFC1123))
	return nil
}

func (r *runner) logout(ctx context.Context, cmd *cli.Command) error {
	cache, err := tokenCache(cmd)
	if err != nil {
		return err
	}
	if err := cache.Delete(); err != nil {
		return err
	}

	r.printf("Signed out. Removed %s\n", cache.Path())
	return nil
}
