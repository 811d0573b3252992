package repository

import (
	"context"
	"errors"
	"fmt"

	"vpbot/database"
	"vpbot/events"
	"vpbot/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	balanceRepo      service.BalanceRepository
	linkRepo         service.LinkRepository
	voiceSessionRepo service.VoiceSessionRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.balanceRepo = newBalanceRepositoryWithTx(tx)
	u.linkRepo = newLinkRepositoryWithTx(tx)
	u.voiceSessionRepo = newVoiceSessionRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	u.transactionalBus.Flush(u.ctx)

	return nil
}

// Rollback rolls back the transaction and discards pending events.
// Safe to defer after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	u.transactionalBus.Discard()

	return nil
}

// BalanceRepository returns the balance repository for this unit of work
func (u *unitOfWork) BalanceRepository() service.BalanceRepository {
	if u.balanceRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.balanceRepo
}

// LinkRepository returns the link repository for this unit of work
func (u *unitOfWork) LinkRepository() service.LinkRepository {
	if u.linkRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.linkRepo
}

// VoiceSessionRepository returns the voice session repository for this unit of work
func (u *unitOfWork) VoiceSessionRepository() service.VoiceSessionRepository {
	if u.voiceSessionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.voiceSessionRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.tx == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
