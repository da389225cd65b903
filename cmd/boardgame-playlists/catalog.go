package main

import (
	"context"
	"errors"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/justestif/go-boardgame-playlists/internal/mapper"
)

func catalogCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Query BoardGameGeek directly",
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search games by name",
				ArgsUsage: "<query>",
				Action:    r.catalogSearch,
			},
			{
				Name:      "show",
				Usage:     "Show a game and the music parameters it maps to",
				ArgsUsage: "<id>",
				Flags: append(moodFlags(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				),
				Action: r.catalogShow,
			},
		},
	}
}

func (r *runner) catalogSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return errors.New("search query is required")
	}

	cfg, err := r.readConfig(cmd)
	if err != nil {
		return err
	}
	catalog, closeCatalog, err := newCatalog(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer closeCatalog()

	results, err := catalog.Search(ctx, query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		r.printf("No games found for %q\n", query)
		return nil
	}
	for _, g := range results {
		if g.YearPublished != "" {
			r.printf("%-8s %s (%s)\n", g.ID, g.Name, g.YearPublished)
		} else {
			r.printf("%-8s %s\n", g.ID, g.Name)
		}
	}
	return nil
}

func (r *runner) catalogShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return errors.New("game id is required")
	}

	cfg, err := r.readConfig(cmd)
	if err != nil {
		return err
	}
	catalog, closeCatalog, err := newCatalog(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer closeCatalog()

	attrs, err := catalog.Details(ctx, id)
	if err != nil {
		return err
	}
	params := mapper.Map(attrs, moodFromFlags(cmd))

	if cmd.Bool("json") {
		out, err := json.MarshalIndent(map[string]any{
			"gameAttributes":  attrs,
			"musicParameters": params,
			"mood":            mapper.MoodLabel(params),
		}, "", "  ")
		if err != nil {
			return err
		}
		r.printf("%s\n", out)
		return nil
	}

	r.printf("%s (%d)\n", attrs.Name, attrs.YearPublished)
	r.printf("  Weight:     %.2f\n", attrs.Weight)
	r.printf("  Categories: %s\n", strings.Join(attrs.Categories, ", "))
	r.printf("  Mechanics:  %s\n", strings.Join(attrs.Mechanics, ", "))
	r.printf("\nMusic\n")
	r.printf("  Mood:             %s\n", mapper.MoodLabel(params))
	r.printf("  Genres:           %s\n", strings.Join(params.Genres, ", "))
	r.printf("  Energy:           %.2f\n", params.Energy)
	r.printf("  Valence:          %.2f\n", params.Valence)
	r.printf("  Tempo:            %.0f\n", params.Tempo)
	r.printf("  Instrumentalness: %.2f\n", params.Instrumentalness)
	r.printf("  Acousticness:     %.2f\n", params.Acousticness)
	return nil
}

var moodFlagNames = []string{"energy", "valence", "tempo", "instrumentalness", "acousticness"}

func moodFlags() []cli.Flag {
	usage := map[string]string{
		"energy":           "Target energy, 0 to 1",
		"valence":          "Target valence, 0 to 1",
		"tempo":            "Target tempo in BPM",
		"instrumentalness": "Target instrumentalness, 0 to 1",
		"acousticness":     "Target acousticness, 0 to 1",
	}
	flags := make([]cli.Flag, 0, len(moodFlagNames))
	for _, name := range moodFlagNames {
		flags = append(flags, &cli.FloatFlag{Name: name, Usage: usage[name]})
	}
	return flags
}

// moodFromFlags returns the mood overrides given on the command line, or nil.
func moodFromFlags(cmd *cli.Command) *mapper.MoodSettings {
	get := func(name string) *float64 {
		if !cmd.IsSet(name) {
			return nil
		}
		v := cmd.Float(name)
		return &v
	}

	mood := &mapper.MoodSettings{
		Energy:           get("energy"),
		Valence:          get("valence"),
		Tempo:            get("tempo"),
		Instrumentalness: get("instrumentalness"),
		Acousticness:     get("acousticness"),
	}
	if mood.IsZero() {
		return nil
	}
	return mood
}
