package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/CuratAI/internal/database/client"
	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/logger"
)

func newStore(t *testing.T) *SessionStore {
	t.Helper()
	c, err := client.NewClient("sqlite3://"+filepath.Join(t.TempDir(), "session.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return NewSessionStore(c.DB, logger.Discard())
}

func TestSessionStore_GetMissing(t *testing.T) {
	s := newStore(t)

	v, ok, err := s.Get(context.Background(), domain.KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestSessionStore_SetOverwrites(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, domain.KeyAccessToken, "one"))
	require.NoError(t, s.Set(ctx, domain.KeyAccessToken, "two"))

	v, ok, err := s.Get(ctx, domain.KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
}

func TestSessionStore_ClearRemovesEverything(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, domain.KeyAccessToken, "tok"))
	require.NoError(t, s.Set(ctx, domain.KeyUser, `{"id":"u1"}`))
	require.NoError(t, s.Clear(ctx))

	for _, key := range []string{domain.KeyAccessToken, domain.KeyUser} {
		_, ok, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}
