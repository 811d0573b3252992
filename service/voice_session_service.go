package service

import (
	"context"
	"fmt"
	"time"

	"vpbot/events"
	"vpbot/models"

	log "github.com/sirupsen/logrus"
)

// voiceSessionService implements the VoiceSessionService interface
type voiceSessionService struct {
	balanceRepo    BalanceRepository
	sessionRepo    VoiceSessionRepository
	eventPublisher EventPublisher
}

// NewVoiceSessionService creates a new voice session service
func NewVoiceSessionService(balanceRepo BalanceRepository, sessionRepo VoiceSessionRepository, eventPublisher EventPublisher) VoiceSessionService {
	return &voiceSessionService{
		balanceRepo:    balanceRepo,
		sessionRepo:    sessionRepo,
		eventPublisher: eventPublisher,
	}
}

// Join opens a session, creating the user's balance on first activity
func (s *voiceSessionService) Join(ctx context.Context, discordID int64, discordName string, channelID int64, at time.Time) error {
	if _, err := ensureBalance(ctx, s.balanceRepo, s.eventPublisher, discordID, discordName); err != nil {
		return err
	}

	// A join without a matching leave (missed gateway event) leaves a row open
	if _, err := s.sessionRepo.CloseOpen(ctx, discordID, at); err != nil {
		return storeError("close previous session", err)
	}

	if _, err := s.sessionRepo.Open(ctx, discordID, channelID, at); err != nil {
		return storeError("open session", err)
	}
	return nil
}

// Leave closes the open session if any
func (s *voiceSessionService) Leave(ctx context.Context, discordID int64, at time.Time) error {
	session, err := s.sessionRepo.CloseOpen(ctx, discordID, at)
	if err != nil {
		return storeError("close session", err)
	}
	if session == nil {
		log.WithField("discordID", discordID).Debug("Leave without an open voice session")
	}
	return nil
}

// Switch closes the open session and opens one in the new channel
func (s *voiceSessionService) Switch(ctx context.Context, discordID int64, channelID int64, at time.Time) error {
	if _, err := s.sessionRepo.CloseOpen(ctx, discordID, at); err != nil {
		return storeError("close session", err)
	}
	if _, err := s.sessionRepo.Open(ctx, discordID, channelID, at); err != nil {
		return storeError("open session", err)
	}
	return nil
}

// CreditMinutes credits accrued VP to the balance and the open session
func (s *voiceSessionService) CreditMinutes(ctx context.Context, discordID int64, minutes int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	newBalance, err := s.balanceRepo.Credit(ctx, discordID, amount)
	if err != nil {
		return 0, storeError("credit balance", err)
	}
	if newBalance == 0 {
		return 0, fmt.Errorf("balance for %d: %w", discordID, ErrNotFound)
	}

	ok, err := s.sessionRepo.AddEarned(ctx, discordID, amount)
	if err != nil {
		return 0, storeError("record session earnings", err)
	}
	if !ok {
		log.WithField("discordID", discordID).Debug("Credited VP with no open voice session")
	}

	s.eventPublisher.Publish(events.VPAwardedEvent{
		DiscordID:  discordID,
		Amount:     amount,
		Minutes:    minutes,
		NewBalance: newBalance,
		Source:     events.AwardSourceVoice,
	})

	return newBalance, nil
}

// CloseOrphaned closes sessions left open by a previous process
func (s *voiceSessionService) CloseOrphaned(ctx context.Context, at time.Time) (int64, error) {
	n, err := s.sessionRepo.CloseAllOpen(ctx, at)
	if err != nil {
		return 0, storeError("close orphaned sessions", err)
	}
	return n, nil
}

// Totals returns the user's aggregated voice history
func (s *voiceSessionService) Totals(ctx context.Context, discordID int64, now time.Time) (*models.VoiceTotals, error) {
	totals, err := s.sessionRepo.GetTotals(ctx, discordID, now)
	if err != nil {
		return nil, storeError("get voice totals", err)
	}
	return totals, nil
}
