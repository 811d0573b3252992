package repository

import (
	"context"
	"testing"
	"time"

	"vpbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceSessionRepository_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewVoiceSessionRepository(testDB.DB)
	ctx := context.Background()

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	session, err := repo.Open(ctx, 1, 100, t0)
	require.NoError(t, err)
	assert.True(t, session.IsOpen())
	assert.Equal(t, int64(100), session.ChannelID)

	t.Run("second open session is rejected", func(t *testing.T) {
		_, err := repo.Open(ctx, 1, 200, t0.Add(time.Minute))
		assert.Error(t, err)
	})

	t.Run("earned VP goes to the open session", func(t *testing.T) {
		ok, err := repo.AddEarned(ctx, 1, 4)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("close stamps left_at", func(t *testing.T) {
		closed, err := repo.CloseOpen(ctx, 1, t0.Add(5*time.Minute))
		require.NoError(t, err)
		require.NotNil(t, closed)
		assert.False(t, closed.IsOpen())
		assert.Equal(t, int64(4), closed.VPEarned)
	})

	t.Run("nothing left to close", func(t *testing.T) {
		closed, err := repo.CloseOpen(ctx, 1, t0.Add(6*time.Minute))
		require.NoError(t, err)
		assert.Nil(t, closed)

		ok, err := repo.AddEarned(ctx, 1, 2)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("totals count open sessions up to now", func(t *testing.T) {
		_, err := repo.Open(ctx, 1, 100, t0.Add(10*time.Minute))
		require.NoError(t, err)

		totals, err := repo.GetTotals(ctx, 1, t0.Add(13*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(2), totals.Sessions)
		assert.Equal(t, 8*time.Minute, totals.TimeSpent)
		assert.Equal(t, int64(4), totals.VPEarned)
	})
}

func TestVoiceSessionRepository_CloseAllOpen(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewVoiceSessionRepository(testDB.DB)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, id := range []int64{1, 2, 3} {
		_, err := repo.Open(ctx, id, 100, now.Add(-time.Hour))
		require.NoError(t, err)
	}
	_, err := repo.CloseOpen(ctx, 3, now.Add(-30*time.Minute))
	require.NoError(t, err)

	n, err := repo.CloseAllOpen(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.CloseAllOpen(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	totals, err := repo.GetTotals(ctx, 42, now)
	require.NoError(t, err)
	assert.Zero(t, totals.Sessions)
	assert.Zero(t, totals.TimeSpent)
}
