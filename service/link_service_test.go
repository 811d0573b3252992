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

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "abc123", want: "ABC123"},
		{in: "  AbC123\n", want: "ABC123"},
		{in: "   ", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCode(tt.in))
	}
}

func TestLinkService_SubmitCode_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mocks := NewTestMocks()
	svc := NewLinkService(mocks.LinkRepo, mocks.BalanceRepo, mocks.EventPublisher)

	now := time.Now()
	verified := &models.Link{DiscordID: TestUser1ID, GrowID: "Alice", Verified: true, LinkedAt: &now}

	mocks.LinkRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).Return(nil, nil)
	mocks.LinkRepo.On("DeleteUnverifiedByDiscordID", ctx, int64(TestUser1ID), "ABC123").Return(int64(0), nil)
	mocks.LinkRepo.On("VerifyPending", ctx, "ABC123", int64(TestUser1ID)).Return(verified, nil)
	mocks.BalanceRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).Return(nil, nil)
	mocks.BalanceRepo.On("UpsertIfAbsent", ctx, int64(TestUser1ID), "alice").
		Return(&models.Balance{DiscordID: TestUser1ID, DiscordName: "alice"}, nil)
	mocks.EventPublisher.On("Publish", events.BalanceCreatedEvent{DiscordID: TestUser1ID, DiscordName: "alice"}).Return()
	mocks.EventPublisher.On("Publish", events.AccountVerifiedEvent{DiscordID: TestUser1ID, DiscordName: "alice", GrowID: "Alice"}).Return()

	link, err := svc.SubmitCode(ctx, TestUser1ID, "alice", " abc123 ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", link.GrowID)
	assert.True(t, link.Verified)
	mocks.AssertAllExpectations(t)
}

func TestLinkService_SubmitCode_Rejections(t *testing.T) {
	t.Parallel()

	t.Run("already verified", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		svc := NewLinkService(mocks.LinkRepo, mocks.BalanceRepo, mocks.EventPublisher)

		mocks.LinkRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).
			Return(&models.Link{DiscordID: TestUser1ID, GrowID: "Alice", Verified: true}, nil)

		_, err := svc.SubmitCode(ctx, TestUser1ID, "alice", "ABC123")
		assert.ErrorIs(t, err, ErrAlreadyVerified)

		var alreadyErr *AlreadyVerifiedError
		require.ErrorAs(t, err, &alreadyErr)
		assert.Equal(t, "Alice", alreadyErr.GrowID)

		mocks.LinkRepo.AssertNotCalled(t, "VerifyPending", mock.Anything, mock.Anything, mock.Anything)
		mocks.LinkRepo.AssertNotCalled(t, "DeleteUnverifiedByDiscordID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty code", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		svc := NewLinkService(mocks.LinkRepo, mocks.BalanceRepo, mocks.EventPublisher)

		_, err := svc.SubmitCode(context.Background(), TestUser1ID, "alice", "   ")
		assert.ErrorIs(t, err, ErrInvalidCode)
		mocks.LinkRepo.AssertNotCalled(t, "GetByDiscordID", mock.Anything, mock.Anything)
	})

	t.Run("consumed or unknown code", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		svc := NewLinkService(mocks.LinkRepo, mocks.BalanceRepo, mocks.EventPublisher)

		mocks.LinkRepo.On("GetByDiscordID", ctx, int64(TestUser2ID)).Return(nil, nil)
		mocks.LinkRepo.On("DeleteUnverifiedByDiscordID", ctx, int64(TestUser2ID), "ABC123").Return(int64(0), nil)
		mocks.LinkRepo.On("VerifyPending", ctx, "ABC123", int64(TestUser2ID)).Return(nil, nil)

		_, err := svc.SubmitCode(ctx, TestUser2ID, "bob", "ABC123")
		assert.ErrorIs(t, err, ErrInvalidCode)
		mocks.BalanceRepo.AssertNotCalled(t, "UpsertIfAbsent", mock.Anything, mock.Anything, mock.Anything)
		mocks.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("growid verified elsewhere", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		svc := NewLinkService(mocks.LinkRepo, mocks.BalanceRepo, mocks.EventPublisher)

		mocks.LinkRepo.On("GetByDiscordID", ctx, int64(TestUser2ID)).Return(nil, nil)
		mocks.LinkRepo.On("DeleteUnverifiedByDiscordID", ctx, int64(TestUser2ID), "XYZ").Return(int64(0), nil)
		mocks.LinkRepo.On("VerifyPending", ctx, "XYZ", int64(TestUser2ID)).Return(nil, ErrGrowIDTaken)

		_, err := svc.SubmitCode(ctx, TestUser2ID, "bob", "xyz")
		assert.ErrorIs(t, err, ErrGrowIDTaken)
		assert.NotErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		svc := NewLinkService(mocks.LinkRepo, mocks.BalanceRepo, mocks.EventPublisher)

		mocks.LinkRepo.On("GetByDiscordID", ctx, int64(TestUser2ID)).Return(nil, errors.New("conn reset"))

		_, err := svc.SubmitCode(ctx, TestUser2ID, "bob", "ABC123")
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestLinkService_Unlink(t *testing.T) {
	t.Parallel()

	t.Run("non-admin is rejected without touching the store", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		svc := NewLinkService(mocks.LinkRepo, mocks.BalanceRepo, mocks.EventPublisher)

		_, err := svc.Unlink(context.Background(), false, TestUser1ID)
		assert.ErrorIs(t, err, ErrPermissionDenied)
		mocks.LinkRepo.AssertNotCalled(t, "GetByDiscordID", mock.Anything, mock.Anything)
		mocks.LinkRepo.AssertNotCalled(t, "DeleteByDiscordID", mock.Anything, mock.Anything)
	})

	t.Run("admin removes link", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		svc := NewLinkService(mocks.LinkRepo, mocks.BalanceRepo, mocks.EventPublisher)

		mocks.LinkRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).
			Return(&models.Link{DiscordID: TestUser1ID, GrowID: "Alice", Verified: true}, nil)
		mocks.LinkRepo.On("DeleteByDiscordID", ctx, int64(TestUser1ID)).Return(int64(1), nil)
		mocks.EventPublisher.On("Publish", events.AccountUnlinkedEvent{DiscordID: TestUser1ID, GrowID: "Alice", Verified: true}).Return()

		link, err := svc.Unlink(ctx, true, TestUser1ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", link.GrowID)
		mocks.AssertAllExpectations(t)
	})

	t.Run("admin targeting unlinked user", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		svc := NewLinkService(mocks.LinkRepo, mocks.BalanceRepo, mocks.EventPublisher)

		mocks.LinkRepo.On("GetByDiscordID", ctx, int64(TestUser2ID)).Return(nil, nil)

		_, err := svc.Unlink(ctx, true, TestUser2ID)
		assert.ErrorIs(t, err, ErrNotFound)
		mocks.LinkRepo.AssertNotCalled(t, "DeleteByDiscordID", mock.Anything, mock.Anything)
	})
}

func TestLinkService_Whois(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mocks := NewTestMocks()
	svc := NewLinkService(mocks.LinkRepo, mocks.BalanceRepo, mocks.EventPublisher)

	mocks.LinkRepo.On("GetByGrowID", ctx, "Alice").
		Return(&models.Link{DiscordID: TestUser1ID, GrowID: "Alice", Verified: true}, nil)
	mocks.LinkRepo.On("GetByGrowID", ctx, "Nobody").Return(nil, nil)

	link, err := svc.Whois(ctx, " Alice ")
	require.NoError(t, err)
	assert.Equal(t, int64(TestUser1ID), link.DiscordID)

	_, err = svc.Whois(ctx, "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Whois(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLinkService_IssueCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mocks := NewTestMocks()
	svc := NewLinkService(mocks.LinkRepo, mocks.BalanceRepo, mocks.EventPublisher)

	mocks.LinkRepo.On("CreatePending", ctx, mock.MatchedBy(func(id int64) bool { return id < 0 }), "Alice", "ABC123").
		Return(&models.Link{DiscordID: -5, GrowID: "Alice", PendingCode: strPtr("ABC123")}, nil)

	link, err := svc.IssueCode(ctx, "Alice", "abc123")
	require.NoError(t, err)
	assert.Equal(t, models.LinkStatusPending, link.Status())

	_, err = svc.IssueCode(ctx, "", "abc123")
	assert.ErrorIs(t, err, ErrInvalidCode)
	mocks.AssertAllExpectations(t)
}
