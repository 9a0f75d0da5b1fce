package entities

import "time"

// TokenType distinguishes access tokens from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// String returns the string representation of the token type
func (tt TokenType) String() string {
	return string(tt)
}

// IsValid returns true if the token type is known
func (tt TokenType) IsValid() bool {
	return tt == TokenTypeAccess || tt == TokenTypeRefresh
}

// TokenBlock is a revoked token kept until it would have expired anyway
type TokenBlock struct {
	ID        int64     `db:"id"`
	JTI       string    `db:"jti"`
	TokenType TokenType `db:"token_type"`
	UserID    int64     `db:"user_id"`
	RevokedAt time.Time `db:"revoked_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// IsExpired returns true once the underlying token could no longer be used
func (b *TokenBlock) IsExpired(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}
