package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vpbot/events"
	"vpbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVoiceSessionService_Join(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mocks := NewTestMocks()
	svc := NewVoiceSessionService(mocks.BalanceRepo, mocks.VoiceSessionRepo, mocks.EventPublisher)

	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	existing := &models.Balance{DiscordID: TestUser1ID, DiscordName: "alice"}

	mocks.BalanceRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).Return(existing, nil)
	mocks.BalanceRepo.On("UpsertIfAbsent", ctx, int64(TestUser1ID), "alice").Return(existing, nil)
	mocks.VoiceSessionRepo.On("CloseOpen", ctx, int64(TestUser1ID), at).Return(nil, nil)
	mocks.VoiceSessionRepo.On("Open", ctx, int64(TestUser1ID), int64(TestChannel), at).
		Return(&models.VoiceSession{ID: 1, DiscordID: TestUser1ID, ChannelID: TestChannel, JoinedAt: at}, nil)

	require.NoError(t, svc.Join(ctx, TestUser1ID, "alice", TestChannel, at))
	mocks.AssertAllExpectations(t)
}

func TestVoiceSessionService_SwitchAndLeave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mocks := NewTestMocks()
	svc := NewVoiceSessionService(mocks.BalanceRepo, mocks.VoiceSessionRepo, mocks.EventPublisher)

	t1 := time.Date(2025, 1, 1, 10, 5, 0, 0, time.UTC)
	t2 := t1.Add(5 * time.Minute)

	mocks.VoiceSessionRepo.On("CloseOpen", ctx, int64(TestUser1ID), t1).Return(&models.VoiceSession{ID: 1}, nil)
	mocks.VoiceSessionRepo.On("Open", ctx, int64(TestUser1ID), int64(555), t1).Return(&models.VoiceSession{ID: 2}, nil)
	mocks.VoiceSessionRepo.On("CloseOpen", ctx, int64(TestUser1ID), t2).Return(nil, nil)

	require.NoError(t, svc.Switch(ctx, TestUser1ID, 555, t1))
	require.NoError(t, svc.Leave(ctx, TestUser1ID, t2))
	mocks.AssertAllExpectations(t)
}

func TestVoiceSessionService_CreditMinutes(t *testing.T) {
	t.Parallel()

	t.Run("credits balance and session", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		svc := NewVoiceSessionService(mocks.BalanceRepo, mocks.VoiceSessionRepo, mocks.EventPublisher)

		mocks.BalanceRepo.On("Credit", ctx, int64(TestUser1ID), int64(4)).Return(int64(4), nil)
		mocks.VoiceSessionRepo.On("AddEarned", ctx, int64(TestUser1ID), int64(4)).Return(true, nil)
		mocks.EventPublisher.On("Publish", events.VPAwardedEvent{
			DiscordID:  TestUser1ID,
			Amount:     4,
			Minutes:    2,
			NewBalance: 4,
			Source:     events.AwardSourceVoice,
		}).Return()

		newBalance, err := svc.CreditMinutes(ctx, TestUser1ID, 2, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(4), newBalance)
		mocks.AssertAllExpectations(t)
	})

	t.Run("missing balance row", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		svc := NewVoiceSessionService(mocks.BalanceRepo, mocks.VoiceSessionRepo, mocks.EventPublisher)

		mocks.BalanceRepo.On("Credit", ctx, int64(TestUser2ID), int64(2)).Return(int64(0), nil)

		_, err := svc.CreditMinutes(ctx, TestUser2ID, 1, 2)
		assert.ErrorIs(t, err, ErrNotFound)
		mocks.VoiceSessionRepo.AssertNotCalled(t, "AddEarned", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		svc := NewVoiceSessionService(mocks.BalanceRepo, mocks.VoiceSessionRepo, mocks.EventPublisher)

		mocks.BalanceRepo.On("Credit", ctx, int64(TestUser1ID), int64(2)).Return(int64(0), errors.New("deadlock"))

		_, err := svc.CreditMinutes(ctx, TestUser1ID, 1, 2)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		mocks.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
	})
}

func TestVoiceSessionService_CloseOrphaned(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mocks := NewTestMocks()
	svc := NewVoiceSessionService(mocks.BalanceRepo, mocks.VoiceSessionRepo, mocks.EventPublisher)

	at := time.Now()
	mocks.VoiceSessionRepo.On("CloseAllOpen", ctx, at).Return(int64(3), nil)

	n, err := svc.CloseOrphaned(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
