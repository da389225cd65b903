package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferencesRepository handles per-user preference rows.
type PreferencesRepository struct {
	pool *pgxpool.Pool
}

// Get returns ErrNotFound when the user has not stored preferences.
func (r *PreferencesRepository) Get(ctx context.Context, userID uuid.UUID) (*Preferences, error) {
	query := `
		SELECT user_id, favorite_genres, default_mood_settings, created_at, updated_at
		FROM preferences
		WHERE user_id = $1
	`
	var p Preferences
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.FavoriteGenres,
		&p.DefaultMoodSettings,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying preferences: %w", err)
	}
	return &p, nil
}

// Upsert stores p and fills in its timestamps.
func (r *PreferencesRepository) Upsert(ctx context.Context, p *Preferences) error {
	if p.FavoriteGenres == nil {
		p.FavoriteGenres = []string{}
	}
	query := `
		INSERT INTO preferences (user_id, favorite_genres, default_mood_settings, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			favorite_genres = EXCLUDED.favorite_genres,
			default_mood_settings = EXCLUDED.default_mood_settings,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		p.UserID,
		p.FavoriteGenres,
		p.DefaultMoodSettings,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting preferences: %w", err)
	}
	return nil
}
