package repository

import (
	"context"
	"testing"
	"time"

	"vpbot/events"
	"vpbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitFlushesEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	bus := events.NewBus()
	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeBalanceCreated, func(ctx context.Context, e events.Event) {
		received <- e
	})

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	_, err := uow.BalanceRepository().UpsertIfAbsent(ctx, 1, "alice")
	require.NoError(t, err)
	uow.EventBus().Publish(events.BalanceCreatedEvent{DiscordID: 1, DiscordName: "alice"})

	require.NoError(t, uow.Commit())

	select {
	case e := <-received:
		assert.Equal(t, events.EventTypeBalanceCreated, e.Type())
	case <-time.After(2 * time.Second):
		t.Fatal("event was not flushed after commit")
	}

	assert.Equal(t, int64(1), testutil.CountRows(t, testDB.DB, "vp_balance"))
}

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	bus := events.NewBus()
	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeVPAwarded, func(ctx context.Context, e events.Event) {
		received <- e
	})

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.BalanceRepository().UpsertIfAbsent(ctx, 2, "bob")
	require.NoError(t, err)
	_, err = uow.BalanceRepository().Credit(ctx, 2, 10)
	require.NoError(t, err)
	uow.EventBus().Publish(events.VPAwardedEvent{DiscordID: 2, Amount: 10})

	require.NoError(t, uow.Rollback())
	require.NoError(t, uow.Rollback(), "second rollback is a no-op")

	assert.Zero(t, testutil.CountRows(t, testDB.DB, "vp_balance"))
	select {
	case <-received:
		t.Fatal("event from rolled back transaction was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnitOfWork_RepositoriesRequireBegin(t *testing.T) {
	uow := NewUnitOfWorkFactory(nil, events.NewBus()).Create()

	assert.Panics(t, func() { uow.BalanceRepository() })
	assert.Panics(t, func() { uow.LinkRepository() })
	assert.Panics(t, func() { uow.VoiceSessionRepository() })
	assert.Panics(t, func() { uow.EventBus() })
	assert.Error(t, uow.Commit())
}
