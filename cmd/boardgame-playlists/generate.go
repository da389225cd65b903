package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/justestif/go-boardgame-playlists/internal/mapper"
	"github.com/justestif/go-boardgame-playlists/internal/playlist"
)

func generateCommand(r *runner) *cli.Command {
	flags := append(serverFlags(), moodFlags()...)
	flags = append(flags,
		&cli.IntFlag{
			Name:  "tracks",
			Usage: "Number of tracks, 1 to 100",
			Value: playlist.DefaultTrackCount,
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "Save the playlist to your library",
		},
	)

	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate a Spotify playlist for a game",
		ArgsUsage: "<gameId> <gameName>",
		Flags:     flags,
		Action:    r.generate,
	}
}

func savedCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "saved",
		Usage: "Manage saved playlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List saved playlists",
				Flags:  serverFlags(),
				Action: r.savedList,
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved playlist",
				ArgsUsage: "<id>",
				Flags:     serverFlags(),
				Action:    r.savedDelete,
			},
		},
	}
}

func (r *runner) generate(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 2 {
		return errors.New("usage: generate <gameId> <gameName>")
	}

	c, err := apiClient(cmd)
	if err != nil {
		return err
	}

	req := playlist.GenerateRequest{
		GameID:       args.First(),
		GameName:     strings.Join(args.Tail(), " "),
		MoodSettings: moodFromFlags(cmd),
		TrackCount:   cmd.Int("tracks"),
	}

	result, err := c.Generate(ctx, req)
	if err != nil {
		return err
	}

	pl := result.Playlist
	r.printf("Created %q (%d tracks)\n", pl.Name, pl.Tracks.Total)
	r.printf("  Mood:   %s\n", mapper.MoodLabel(result.MusicParameters))
	r.printf("  Genres: %s\n", strings.Join(result.MusicParameters.Genres, ", "))
	if url := pl.ExternalURLs["spotify"]; url != "" {
		r.printf("  Open:   %s\n", url)
	}

	if !cmd.Bool("save") {
		return nil
	}
	saved, err := c.Save(ctx, result, req)
	if err != nil {
		return fmt.Errorf("saving playlist: %w", err)
	}
	r.printf("Saved as %s\n", saved.ID)
	return nil
}

func (r *runner) savedList(ctx context.Context, cmd *cli.Command) error {
	c, err := apiClient(cmd)
	if err != nil {
		return err
	}

	playlists, err := c.SavedPlaylists(ctx)
	if err != nil {
		return err
	}
	if len(playlists) == 0 {
		r.printf("No saved playlists\n")
		return nil
	}
	for _, p := range playlists {
		r.printf("%s  %-30s  %s  %s\n", p.ID, p.GameName, mapper.MoodLabel(p.MusicParameters), p.CreatedAt.Local().Format("2006-01-02"))
	}
	return nil
}

func (r *runner) savedDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := uuid.Parse(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("invalid playlist id: %w", err)
	}

	c, err := apiClient(cmd)
	if err != nil {
		return err
	}
	if err := c.DeletePlaylist(ctx, id); err != nil {
		return err
	}
	r.printf("Deleted %s\n", id)
	return nil
}
