package repository

import (
	"context"
	"errors"
	"fmt"

	"vpbot/database"
	"vpbot/models"
	"vpbot/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	// Partial unique index allowing one verified row per GrowID
	verifiedGrowIDIndex = "idx_discord_links_verified_growid"
)

const linkColumns = `discord_id, growid, verified, linked_at, pending_code`

// LinkRepository implements the LinkRepository interface
type LinkRepository struct {
	q Queryable
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *database.DB) *LinkRepository {
	return &LinkRepository{q: db.Pool}
}

func newLinkRepositoryWithTx(tx Queryable) *LinkRepository {
	return &LinkRepository{q: tx}
}

func scanLink(row pgx.Row) (*models.Link, error) {
	var l models.Link
	err := row.Scan(
		&l.DiscordID,
		&l.GrowID,
		&l.Verified,
		&l.LinkedAt,
		&l.PendingCode,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// getOne runs a single-row link query, mapping no rows to nil
func (r *LinkRepository) getOne(ctx context.Context, query string, args ...any) (*models.Link, error) {
	link, err := scanLink(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return link, err
}

// GetByDiscordID returns the link keyed by the user, or nil
func (r *LinkRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Link, error) {
	link, err := r.getOne(ctx, `SELECT `+linkColumns+` FROM discord_links WHERE discord_id = $1`, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get link for %d: %w", discordID, err)
	}
	return link, nil
}

// GetPendingByCode returns the unverified link carrying code, or nil
func (r *LinkRepository) GetPendingByCode(ctx context.Context, code string) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM discord_links WHERE pending_code = $1 AND NOT verified`

	link, err := r.getOne(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending link by code: %w", err)
	}
	return link, nil
}

// GetByGrowID returns the verified link for a GrowID, falling back to a pending one
func (r *LinkRepository) GetByGrowID(ctx context.Context, growID string) (*models.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM discord_links
		WHERE growid = $1
		ORDER BY verified DESC, linked_at DESC NULLS LAST
		LIMIT 1
	`

	link, err := r.getOne(ctx, query, growID)
	if err != nil {
		return nil, fmt.Errorf("failed to get link for growid %s: %w", growID, err)
	}
	return link, nil
}

// VerifyPending rebinds the unverified row carrying code to discordID. The
// WHERE clause makes a code single use: a second caller matches no row.
func (r *LinkRepository) VerifyPending(ctx context.Context, code string, discordID int64) (*models.Link, error) {
	query := `
		UPDATE discord_links
		SET discord_id = $2, verified = TRUE, pending_code = NULL, linked_at = NOW()
		WHERE pending_code = $1 AND NOT verified
		RETURNING ` + linkColumns

	link, err := r.getOne(ctx, query, code, discordID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == verifiedGrowIDIndex {
		return nil, fmt.Errorf("verify code for %d: %w", discordID, service.ErrGrowIDTaken)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to verify pending link for %d: %w", discordID, err)
	}
	return link, nil
}

// CreatePending inserts an unverified link under a placeholder id
func (r *LinkRepository) CreatePending(ctx context.Context, placeholderID int64, growID string, code string) (*models.Link, error) {
	query := `
		INSERT INTO discord_links (discord_id, growid, verified, pending_code)
		VALUES ($1, $2, FALSE, $3)
		RETURNING ` + linkColumns

	link, err := scanLink(r.q.QueryRow(ctx, query, placeholderID, growID, code))
	if err != nil {
		return nil, fmt.Errorf("failed to create pending link for growid %s: %w", growID, err)
	}
	return link, nil
}

// DeleteByDiscordID removes the user's link regardless of state
func (r *LinkRepository) DeleteByDiscordID(ctx context.Context, discordID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM discord_links WHERE discord_id = $1`, discordID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete link for %d: %w", discordID, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteUnverifiedByDiscordID removes a stale pending row keyed by the user,
// sparing the row that carries exceptCode
func (r *LinkRepository) DeleteUnverifiedByDiscordID(ctx context.Context, discordID int64, exceptCode string) (int64, error) {
	query := `
		DELETE FROM discord_links
		WHERE discord_id = $1 AND NOT verified AND pending_code IS DISTINCT FROM $2
	`

	tag, err := r.q.Exec(ctx, query, discordID, exceptCode)
	if err != nil {
		return 0, fmt.Errorf("failed to delete unverified link for %d: %w", discordID, err)
	}
	return tag.RowsAffected(), nil
}
