package service

import (
	"context"
	"time"

	"vpbot/events"
	"vpbot/models"
)

// BalanceRepository defines the interface for Voice Point balance storage
type BalanceRepository interface {
	// UpsertIfAbsent creates a zero balance or returns the existing one, refreshing the display name
	UpsertIfAbsent(ctx context.Context, discordID int64, discordName string) (*models.Balance, error)

	// GetByDiscordID returns nil when the user has no balance row
	GetByDiscordID(ctx context.Context, discordID int64) (*models.Balance, error)

	// GetBalance returns the current VP, 0 when absent
	GetBalance(ctx context.Context, discordID int64) (int64, error)

	// Credit adds amount to both vp and total_earned and returns the new vp.
	// Returns 0 with no error when the user has no row.
	Credit(ctx context.Context, discordID int64, amount int64) (int64, error)

	// Debit subtracts amount only if vp >= amount
	Debit(ctx context.Context, discordID int64, amount int64) (bool, error)

	// TopEarners returns balances ordered by lifetime earnings
	TopEarners(ctx context.Context, limit int) ([]*models.Balance, error)
}

// LinkRepository defines the interface for GrowID link storage
type LinkRepository interface {
	// GetByDiscordID returns nil when the user has no link row
	GetByDiscordID(ctx context.Context, discordID int64) (*models.Link, error)

	// GetPendingByCode returns the unverified link carrying code, or nil
	GetPendingByCode(ctx context.Context, code string) (*models.Link, error)

	// GetByGrowID returns the link for a GrowID, preferring the verified one
	GetByGrowID(ctx context.Context, growID string) (*models.Link, error)

	// VerifyPending rebinds the unverified row carrying code to discordID.
	// Returns nil when no such row exists.
	VerifyPending(ctx context.Context, code string, discordID int64) (*models.Link, error)

	// CreatePending inserts an unverified link as the game server would
	CreatePending(ctx context.Context, placeholderID int64, growID string, code string) (*models.Link, error)

	// DeleteByDiscordID removes the user's link and returns the rows removed
	DeleteByDiscordID(ctx context.Context, discordID int64) (int64, error)

	// DeleteUnverifiedByDiscordID removes an unverified row keyed by the user
	// unless it carries exceptCode
	DeleteUnverifiedByDiscordID(ctx context.Context, discordID int64, exceptCode string) (int64, error)
}

// VoiceSessionRepository defines the interface for the voice session log
type VoiceSessionRepository interface {
	// Open starts a session. Fails if the user already has an open one.
	Open(ctx context.Context, discordID int64, channelID int64, joinedAt time.Time) (*models.VoiceSession, error)

	// CloseOpen closes the user's open session, returning nil if there was none
	CloseOpen(ctx context.Context, discordID int64, leftAt time.Time) (*models.VoiceSession, error)

	// AddEarned adds to the open session's vp_earned, false if none is open
	AddEarned(ctx context.Context, discordID int64, amount int64) (bool, error)

	// CloseAllOpen closes every open session and returns how many were closed
	CloseAllOpen(ctx context.Context, leftAt time.Time) (int64, error)

	// GetTotals aggregates the user's sessions, counting open ones up to now
	GetTotals(ctx context.Context, discordID int64, now time.Time) (*models.VoiceTotals, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// BalanceService defines the interface for Voice Point balance operations
type BalanceService interface {
	// GetOrCreate returns the user's balance, creating a zero one if needed
	GetOrCreate(ctx context.Context, discordID int64, discordName string) (*models.Balance, error)

	// GetBalance returns the current VP, 0 for unknown users
	GetBalance(ctx context.Context, discordID int64) (int64, error)

	// Credit grants VP to an existing balance
	Credit(ctx context.Context, discordID int64, amount int64, source events.AwardSource) (int64, error)

	// Debit spends VP and returns the new balance, failing with
	// ErrInsufficientBalance when vp < amount
	Debit(ctx context.Context, discordID int64, amount int64, reason string) (int64, error)

	// Leaderboard returns the top earners with ranks assigned
	Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// LinkService defines the interface for the GrowID verification handshake
type LinkService interface {
	// SubmitCode consumes a pending code and binds its GrowID to the submitter
	SubmitCode(ctx context.Context, discordID int64, discordName string, code string) (*models.Link, error)

	// GetOwnLink returns the caller's link, or nil if none exists
	GetOwnLink(ctx context.Context, discordID int64) (*models.Link, error)

	// Whois looks up the link for a GrowID, ErrNotFound if none
	Whois(ctx context.Context, growID string) (*models.Link, error)

	// Unlink removes the target's link. Only administrators may call it.
	Unlink(ctx context.Context, isAdmin bool, targetID int64) (*models.Link, error)

	// IssueCode creates a pending link row the way the game server does
	IssueCode(ctx context.Context, growID string, code string) (*models.Link, error)
}

// VoiceSessionService defines the interface for voice session bookkeeping
type VoiceSessionService interface {
	// Join opens a session, creating the user's balance on first activity
	Join(ctx context.Context, discordID int64, discordName string, channelID int64, at time.Time) error

	// Leave closes the open session if any
	Leave(ctx context.Context, discordID int64, at time.Time) error

	// Switch closes the open session and opens one in the new channel
	Switch(ctx context.Context, discordID int64, channelID int64, at time.Time) error

	// CreditMinutes credits accrued VP to the balance and the open session
	CreditMinutes(ctx context.Context, discordID int64, minutes int64, amount int64) (int64, error)

	// CloseOrphaned closes sessions left open by a previous process
	CloseOrphaned(ctx context.Context, at time.Time) (int64, error)

	// Totals returns the user's aggregated voice history
	Totals(ctx context.Context, discordID int64, now time.Time) (*models.VoiceTotals, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	BalanceRepository() BalanceRepository
	LinkRepository() LinkRepository
	VoiceSessionRepository() VoiceSessionRepository

	// EventBus returns the transactional event bus
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
