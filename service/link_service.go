package service

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"vpbot/events"
	"vpbot/models"

	"github.com/google/uuid"
)

// linkService implements the LinkService interface
type linkService struct {
	linkRepo       LinkRepository
	balanceRepo    BalanceRepository
	eventPublisher EventPublisher
}

// NewLinkService creates a new link service
func NewLinkService(linkRepo LinkRepository, balanceRepo BalanceRepository, eventPublisher EventPublisher) LinkService {
	return &linkService{
		linkRepo:       linkRepo,
		balanceRepo:    balanceRepo,
		eventPublisher: eventPublisher,
	}
}

// NormalizeCode trims and uppercases a verification code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SubmitCode consumes a pending code and binds its GrowID to the submitter
func (s *linkService) SubmitCode(ctx context.Context, discordID int64, discordName string, code string) (*models.Link, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrInvalidCode
	}

	existing, err := s.linkRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, storeError("check existing link", err)
	}
	if existing != nil && existing.Verified {
		return nil, &AlreadyVerifiedError{GrowID: existing.GrowID}
	}

	// A stale pending row keyed by the submitter would collide with the
	// rebind on the primary key
	if _, err := s.linkRepo.DeleteUnverifiedByDiscordID(ctx, discordID, code); err != nil {
		return nil, storeError("clear stale link", err)
	}

	link, err := s.linkRepo.VerifyPending(ctx, code, discordID)
	if errors.Is(err, ErrGrowIDTaken) {
		return nil, err
	}
	if err != nil {
		return nil, storeError("verify link", err)
	}
	if link == nil {
		return nil, ErrInvalidCode
	}

	if _, err := ensureBalance(ctx, s.balanceRepo, s.eventPublisher, discordID, discordName); err != nil {
		return nil, err
	}

	s.eventPublisher.Publish(events.AccountVerifiedEvent{
		DiscordID:   discordID,
		DiscordName: discordName,
		GrowID:      link.GrowID,
	})

	return link, nil
}

// GetOwnLink returns the caller's link, or nil if none exists
func (s *linkService) GetOwnLink(ctx context.Context, discordID int64) (*models.Link, error) {
	link, err := s.linkRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, storeError("get link", err)
	}
	return link, nil
}

// Whois looks up the link for a GrowID
func (s *linkService) Whois(ctx context.Context, growID string) (*models.Link, error) {
	growID = strings.TrimSpace(growID)
	if growID == "" {
		return nil, ErrNotFound
	}

	link, err := s.linkRepo.GetByGrowID(ctx, growID)
	if err != nil {
		return nil, storeError("lookup growid", err)
	}
	if link == nil {
		return nil, fmt.Errorf("growid %s: %w", growID, ErrNotFound)
	}
	return link, nil
}

// Unlink removes the target's link. Non-admins are rejected before any lookup.
func (s *linkService) Unlink(ctx context.Context, isAdmin bool, targetID int64) (*models.Link, error) {
	if !isAdmin {
		return nil, ErrPermissionDenied
	}

	link, err := s.linkRepo.GetByDiscordID(ctx, targetID)
	if err != nil {
		return nil, storeError("get link", err)
	}
	if link == nil {
		return nil, fmt.Errorf("link for %d: %w", targetID, ErrNotFound)
	}

	if _, err := s.linkRepo.DeleteByDiscordID(ctx, targetID); err != nil {
		return nil, storeError("delete link", err)
	}

	s.eventPublisher.Publish(events.AccountUnlinkedEvent{
		DiscordID: targetID,
		GrowID:    link.GrowID,
		Verified:  link.Verified,
	})

	return link, nil
}

// IssueCode creates a pending link row under a random negative placeholder
// id, which can never collide with a real Discord snowflake.
func (s *linkService) IssueCode(ctx context.Context, growID string, code string) (*models.Link, error) {
	growID = strings.TrimSpace(growID)
	code = NormalizeCode(code)
	if growID == "" || code == "" {
		return nil, fmt.Errorf("growid and code are required: %w", ErrInvalidCode)
	}

	link, err := s.linkRepo.CreatePending(ctx, placeholderID(), growID, code)
	if err != nil {
		return nil, storeError("create pending link", err)
	}
	return link, nil
}

func placeholderID() int64 {
	id := uuid.New()
	return -int64(binary.BigEndian.Uint64(id[:8])>>1) - 1
}
