package service

import (
	"context"
	"fmt"

	"vpbot/events"
	"vpbot/models"
)

// DefaultLeaderboardSize is used when a caller asks for a non-positive limit
const DefaultLeaderboardSize = 10

// balanceService implements the BalanceService interface
type balanceService struct {
	balanceRepo    BalanceRepository
	eventPublisher EventPublisher
}

// NewBalanceService creates a new balance service
func NewBalanceService(balanceRepo BalanceRepository, eventPublisher EventPublisher) BalanceService {
	return &balanceService{
		balanceRepo:    balanceRepo,
		eventPublisher: eventPublisher,
	}
}

// GetOrCreate returns the user's balance, creating a zero one if needed
func (s *balanceService) GetOrCreate(ctx context.Context, discordID int64, discordName string) (*models.Balance, error) {
	return ensureBalance(ctx, s.balanceRepo, s.eventPublisher, discordID, discordName)
}

// GetBalance returns the current VP, 0 for unknown users
func (s *balanceService) GetBalance(ctx context.Context, discordID int64) (int64, error) {
	vp, err := s.balanceRepo.GetBalance(ctx, discordID)
	if err != nil {
		return 0, storeError("get balance", err)
	}
	return vp, nil
}

// Credit grants VP to an existing balance
func (s *balanceService) Credit(ctx context.Context, discordID int64, amount int64, source events.AwardSource) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	newBalance, err := s.balanceRepo.Credit(ctx, discordID, amount)
	if err != nil {
		return 0, storeError("credit balance", err)
	}
	// A positive credit never lands on 0, so 0 means there was no row
	if newBalance == 0 {
		return 0, fmt.Errorf("balance for %d: %w", discordID, ErrNotFound)
	}

	s.eventPublisher.Publish(events.VPAwardedEvent{
		DiscordID:  discordID,
		Amount:     amount,
		NewBalance: newBalance,
		Source:     source,
	})

	return newBalance, nil
}

// Debit spends VP, failing with ErrInsufficientBalance when vp < amount
func (s *balanceService) Debit(ctx context.Context, discordID int64, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	ok, err := s.balanceRepo.Debit(ctx, discordID, amount)
	if err != nil {
		return 0, storeError("debit balance", err)
	}

	if !ok {
		balance, err := s.balanceRepo.GetByDiscordID(ctx, discordID)
		if err != nil {
			return 0, storeError("check balance", err)
		}
		if balance == nil {
			return 0, fmt.Errorf("balance for %d: %w", discordID, ErrNotFound)
		}
		return 0, fmt.Errorf("have %d VP, need %d: %w", balance.VP, amount, ErrInsufficientBalance)
	}

	newBalance, err := s.balanceRepo.GetBalance(ctx, discordID)
	if err != nil {
		return 0, storeError("get balance", err)
	}

	s.eventPublisher.Publish(events.VPDeductedEvent{
		DiscordID:  discordID,
		Amount:     amount,
		NewBalance: newBalance,
		Reason:     reason,
	})

	return newBalance, nil
}

// Leaderboard returns the top earners with ranks assigned
func (s *balanceService) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}

	balances, err := s.balanceRepo.TopEarners(ctx, limit)
	if err != nil {
		return nil, storeError("load leaderboard", err)
	}

	entries := make([]*models.LeaderboardEntry, 0, len(balances))
	for i, b := range balances {
		entries = append(entries, &models.LeaderboardEntry{
			Rank:        i + 1,
			DiscordID:   b.DiscordID,
			DiscordName: b.DiscordName,
			VP:          b.VP,
			TotalEarned: b.TotalEarned,
		})
	}

	return entries, nil
}
