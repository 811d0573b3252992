package service

import (
	"context"
	"time"

	"vpbot/events"
	"vpbot/models"

	"github.com/stretchr/testify/mock"
)

// MockBalanceRepository is a mock implementation of BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) UpsertIfAbsent(ctx context.Context, discordID int64, discordName string) (*models.Balance, error) {
	args := m.Called(ctx, discordID, discordName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Balance, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) GetBalance(ctx context.Context, discordID int64) (int64, error) {
	args := m.Called(ctx, discordID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) Credit(ctx context.Context, discordID int64, amount int64) (int64, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) Debit(ctx context.Context, discordID int64, amount int64) (bool, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockBalanceRepository) TopEarners(ctx context.Context, limit int) ([]*models.Balance, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Balance), args.Error(1)
}

// MockLinkRepository is a mock implementation of LinkRepository
type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Link, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Link), args.Error(1)
}

func (m *MockLinkRepository) GetPendingByCode(ctx context.Context, code string) (*models.Link, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Link), args.Error(1)
}

func (m *MockLinkRepository) GetByGrowID(ctx context.Context, growID string) (*models.Link, error) {
	args := m.Called(ctx, growID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Link), args.Error(1)
}

func (m *MockLinkRepository) VerifyPending(ctx context.Context, code string, discordID int64) (*models.Link, error) {
	args := m.Called(ctx, code, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Link), args.Error(1)
}

func (m *MockLinkRepository) CreatePending(ctx context.Context, placeholderID int64, growID string, code string) (*models.Link, error) {
	args := m.Called(ctx, placeholderID, growID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Link), args.Error(1)
}

func (m *MockLinkRepository) DeleteByDiscordID(ctx context.Context, discordID int64) (int64, error) {
	args := m.Called(ctx, discordID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLinkRepository) DeleteUnverifiedByDiscordID(ctx context.Context, discordID int64, exceptCode string) (int64, error) {
	args := m.Called(ctx, discordID, exceptCode)
	return args.Get(0).(int64), args.Error(1)
}

// MockVoiceSessionRepository is a mock implementation of VoiceSessionRepository
type MockVoiceSessionRepository struct {
	mock.Mock
}

func (m *MockVoiceSessionRepository) Open(ctx context.Context, discordID int64, channelID int64, joinedAt time.Time) (*models.VoiceSession, error) {
	args := m.Called(ctx, discordID, channelID, joinedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VoiceSession), args.Error(1)
}

func (m *MockVoiceSessionRepository) CloseOpen(ctx context.Context, discordID int64, leftAt time.Time) (*models.VoiceSession, error) {
	args := m.Called(ctx, discordID, leftAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VoiceSession), args.Error(1)
}

func (m *MockVoiceSessionRepository) AddEarned(ctx context.Context, discordID int64, amount int64) (bool, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockVoiceSessionRepository) CloseAllOpen(ctx context.Context, leftAt time.Time) (int64, error) {
	args := m.Called(ctx, leftAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVoiceSessionRepository) GetTotals(ctx context.Context, discordID int64, now time.Time) (*models.VoiceTotals, error) {
	args := m.Called(ctx, discordID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VoiceTotals), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}
