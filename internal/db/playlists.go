package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlaylistRepository handles saved playlist operations. Every query runs in a
// transaction with app.user_id set for the row-level security policy, and
// also filters on user_id explicitly.
type PlaylistRepository struct {
	pool *pgxpool.Pool
}

const playlistColumns = `id, user_id, spotify_playlist_id, game_id, game_name, mood_settings, music_parameters, created_at`

// Create inserts p, assigning its ID and creation time.
func (r *PlaylistRepository) Create(ctx context.Context, p *SavedPlaylist) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO playlists (id, user_id, spotify_playlist_id, game_id, game_name, mood_settings, music_parameters, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`
	return asUser(ctx, r.pool, p.UserID, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			p.ID,
			p.UserID,
			p.SpotifyPlaylistID,
			p.GameID,
			p.GameName,
			p.MoodSettings,
			p.MusicParameters,
		).Scan(&p.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting playlist: %w", err)
		}
		return nil
	})
}

// ListByUser returns the user's playlists, newest first.
func (r *PlaylistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]SavedPlaylist, error) {
	query := `SELECT ` + playlistColumns + `
		FROM playlists
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`
	playlists := []SavedPlaylist{}
	err := asUser(ctx, r.pool, userID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, userID)
		if err != nil {
			return fmt.Errorf("querying playlists: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPlaylist(rows)
			if err != nil {
				return err
			}
			playlists = append(playlists, *p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return playlists, nil
}

// Get returns the playlist if it exists and belongs to userID.
func (r *PlaylistRepository) Get(ctx context.Context, userID, id uuid.UUID) (*SavedPlaylist, error) {
	query := `SELECT ` + playlistColumns + `
		FROM playlists
		WHERE id = $1 AND user_id = $2
	`
	var p *SavedPlaylist
	err := asUser(ctx, r.pool, userID, func(tx pgx.Tx) error {
		var err error
		p, err = scanPlaylist(tx.QueryRow(ctx, query, id, userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the playlist if it belongs to userID.
func (r *PlaylistRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return asUser(ctx, r.pool, userID, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `DELETE FROM playlists WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return fmt.Errorf("deleting playlist: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func scanPlaylist(row pgx.Row) (*SavedPlaylist, error) {
	var p SavedPlaylist
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.SpotifyPlaylistID,
		&p.GameID,
		&p.GameName,
		&p.MoodSettings,
		&p.MusicParameters,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning playlist: %w", err)
	}
	return &p, nil
}

// asUser runs fn in a transaction scoped to userID.
func asUser(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID, fn func(pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT set_config('app.user_id', $1, true)`, userID.String()); err != nil {
			return fmt.Errorf("setting user scope: %w", err)
		}
		return fn(tx)
	})
}
