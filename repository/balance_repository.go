package repository

import (
	"context"
	"errors"
	"fmt"

	"vpbot/database"
	"vpbot/models"

	"github.com/jackc/pgx/v5"
)

const balanceColumns = `discord_id, discord_name, vp, total_earned, last_seen, created_at`

// BalanceRepository implements the BalanceRepository interface
type BalanceRepository struct {
	q Queryable
}

// NewBalanceRepository creates a new balance repository
func NewBalanceRepository(db *database.DB) *BalanceRepository {
	return &BalanceRepository{q: db.Pool}
}

func newBalanceRepositoryWithTx(tx Queryable) *BalanceRepository {
	return &BalanceRepository{q: tx}
}

func scanBalance(row pgx.Row) (*models.Balance, error) {
	var b models.Balance
	err := row.Scan(
		&b.DiscordID,
		&b.DiscordName,
		&b.VP,
		&b.TotalEarned,
		&b.LastSeen,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpsertIfAbsent inserts a zero balance or returns the existing row with a refreshed name.
// An empty name keeps the stored one.
func (r *BalanceRepository) UpsertIfAbsent(ctx context.Context, discordID int64, discordName string) (*models.Balance, error) {
	query := `
		INSERT INTO vp_balance (discord_id, discord_name)
		VALUES ($1, $2)
		ON CONFLICT (discord_id) DO UPDATE SET
			discord_name = COALESCE(NULLIF(EXCLUDED.discord_name, ''), vp_balance.discord_name),
			last_seen = NOW()
		RETURNING ` + balanceColumns

	balance, err := scanBalance(r.q.QueryRow(ctx, query, discordID, discordName))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert balance for %d: %w", discordID, err)
	}
	return balance, nil
}

// GetByDiscordID returns the balance row or nil if the user has none
func (r *BalanceRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM vp_balance WHERE discord_id = $1`

	balance, err := scanBalance(r.q.QueryRow(ctx, query, discordID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for %d: %w", discordID, err)
	}
	return balance, nil
}

// GetBalance returns the current VP, 0 when the user has no row
func (r *BalanceRepository) GetBalance(ctx context.Context, discordID int64) (int64, error) {
	var vp int64
	err := r.q.QueryRow(ctx, `SELECT vp FROM vp_balance WHERE discord_id = $1`, discordID).Scan(&vp)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get vp for %d: %w", discordID, err)
	}
	return vp, nil
}

// Credit adds amount to vp and total_earned in a single statement
func (r *BalanceRepository) Credit(ctx context.Context, discordID int64, amount int64) (int64, error) {
	query := `
		UPDATE vp_balance
		SET vp = vp + $2, total_earned = total_earned + $2, last_seen = NOW()
		WHERE discord_id = $1
		RETURNING vp
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, discordID, amount).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit %d VP to %d: %w", amount, discordID, err)
	}
	return newBalance, nil
}

// Debit subtracts amount only when the balance covers it
func (r *BalanceRepository) Debit(ctx context.Context, discordID int64, amount int64) (bool, error) {
	query := `
		UPDATE vp_balance
		SET vp = vp - $2, last_seen = NOW()
		WHERE discord_id = $1 AND vp >= $2
	`

	tag, err := r.q.Exec(ctx, query, discordID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to debit %d VP from %d: %w", amount, discordID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// TopEarners returns balances by lifetime earnings, oldest first on ties
func (r *BalanceRepository) TopEarners(ctx context.Context, limit int) ([]*models.Balance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM vp_balance
		ORDER BY total_earned DESC, created_at ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top earners: %w", err)
	}
	defer rows.Close()

	var balances []*models.Balance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, balance)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top earners: %w", err)
	}

	return balances, nil
}
