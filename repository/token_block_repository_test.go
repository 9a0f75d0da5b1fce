package repository

import (
	"context"
	"testing"
	"time"

	"apploto/domain/entities"
	"apploto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBlockRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTokenBlockRepository(testDB.DB)
	ctx := context.Background()
	now := time.Now().UTC()

	live := &entities.TokenBlock{JTI: "live", TokenType: entities.TokenTypeRefresh, UserID: 1, RevokedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := &entities.TokenBlock{JTI: "stale", TokenType: entities.TokenTypeAccess, UserID: 1, RevokedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, stale))

	// Revoking twice is idempotent
	require.NoError(t, repo.Create(ctx, live))

	revoked, err := repo.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	purged, err := repo.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	revoked, err = repo.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)
}
