package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/languagebridge/admin-api/internal/domain/entity"
	"github.com/languagebridge/admin-api/internal/domain/repository"
)

type TokenMetadataStore struct {
	pool *pgxpool.Pool
}

func NewTokenMetadataStore(pool *pgxpool.Pool) *TokenMetadataStore {
	return &TokenMetadataStore{pool: pool}
}

// Upsert keeps one row per user: a fresh login replaces the previous
// session record.
func (s *TokenMetadataStore) Upsert(ctx context.Context, t *entity.TokenMetadata) error {
	row := db(ctx, s.pool).QueryRow(ctx, `
		INSERT INTO token_metadata (user_id, session_id, refresh_expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET session_id = EXCLUDED.session_id,
		    refresh_expires_at = EXCLUDED.refresh_expires_at,
		    updated_at = now()
		RETURNING id, created_at, updated_at
	`, t.UserID, t.SessionID, t.RefreshExpiresAt)

	if err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (s *TokenMetadataStore) GetByUserID(ctx context.Context, userID string) (*entity.TokenMetadata, error) {
	t := &entity.TokenMetadata{}

	row := db(ctx, s.pool).QueryRow(ctx, `
		SELECT id, user_id, session_id, refresh_expires_at, created_at, updated_at
		FROM token_metadata
		WHERE user_id = $1
	`, userID)

	if err := row.Scan(&t.ID, &t.UserID, &t.SessionID, &t.RefreshExpiresAt,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, mapPgError(err)
	}
	return t, nil
}

func (s *TokenMetadataStore) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := db(ctx, s.pool).Exec(ctx, `DELETE FROM token_metadata WHERE user_id = $1`, userID)
	return mapPgError(err)
}

var _ repository.TokenMetadataStore = (*TokenMetadataStore)(nil)
