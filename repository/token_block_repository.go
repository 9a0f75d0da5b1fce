package repository

import (
	"context"
	"fmt"
	"time"

	"apploto/database"
	"apploto/domain/entities"
)

// TokenBlockRepository implements revoked token data access
type TokenBlockRepository struct {
	q Queryable
}

// NewTokenBlockRepository creates a new token block repository
func NewTokenBlockRepository(db *database.DB) *TokenBlockRepository {
	return &TokenBlockRepository{q: db.Pool}
}

func newTokenBlockRepositoryWithTx(tx Queryable) *TokenBlockRepository {
	return &TokenBlockRepository{q: tx}
}

// Create records a revoked token. Recording the same token twice is a no-op.
func (r *TokenBlockRepository) Create(ctx context.Context, block *entities.TokenBlock) error {
	query := `
		INSERT INTO token_block_list (jti, token_type, user_id, revoked_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (jti) DO NOTHING
	`

	_, err := r.q.Exec(ctx, query, block.JTI, block.TokenType, block.UserID, block.RevokedAt, block.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked returns true if the token ID has been revoked
func (r *TokenBlockRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM token_block_list WHERE jti = $1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return revoked, nil
}

// PurgeExpired deletes blocks whose token has expired and returns how many were removed
func (r *TokenBlockRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM token_block_list WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", err)
	}
	return result.RowsAffected(), nil
}
