package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles profile database operations.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// Upsert creates or updates the profile for p.SpotifyID and fills in its
// ID and timestamps.
func (r *ProfileRepository) Upsert(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (spotify_id, display_name, avatar_url, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NOW(), NOW())
		ON CONFLICT (spotify_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		p.SpotifyID,
		p.DisplayName,
		p.AvatarURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}
