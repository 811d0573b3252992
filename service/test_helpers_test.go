package service

import (
	"testing"
)

const (
	TestUser1ID = 111111
	TestUser2ID = 222222
	TestAdminID = 999999
	TestChannel = 789012
)

// TestMocks holds all mock repositories for easy access
type TestMocks struct {
	BalanceRepo      *MockBalanceRepository
	LinkRepo         *MockLinkRepository
	VoiceSessionRepo *MockVoiceSessionRepository
	EventPublisher   *MockEventPublisher
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		BalanceRepo:      new(MockBalanceRepository),
		LinkRepo:         new(MockLinkRepository),
		VoiceSessionRepo: new(MockVoiceSessionRepository),
		EventPublisher:   new(MockEventPublisher),
	}
}

// AssertAllExpectations asserts all mock expectations
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.BalanceRepo.AssertExpectations(t)
	m.LinkRepo.AssertExpectations(t)
	m.VoiceSessionRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

func strPtr(s string) *string {
	return &s
}
