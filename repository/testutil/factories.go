package testutil

import (
	"context"
	"fmt"
	"testing"

	"vpbot/database"

	"github.com/stretchr/testify/require"
)

// SeedBalance inserts a balance row directly, bypassing the repositories
func SeedBalance(t *testing.T, db *database.DB, discordID int64, name string, vp, totalEarned int64) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO vp_balance (discord_id, discord_name, vp, total_earned)
		VALUES ($1, $2, $3, $4)
	`, discordID, name, vp, totalEarned)
	require.NoError(t, err)
}

// SeedPendingLink inserts an unverified link the way the game server does
func SeedPendingLink(t *testing.T, db *database.DB, placeholderID int64, growID, code string) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO discord_links (discord_id, growid, verified, pending_code)
		VALUES ($1, $2, FALSE, $3)
	`, placeholderID, growID, code)
	require.NoError(t, err)
}

// SeedVerifiedLink inserts an already verified link
func SeedVerifiedLink(t *testing.T, db *database.DB, discordID int64, growID string) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO discord_links (discord_id, growid, verified, linked_at)
		VALUES ($1, $2, TRUE, NOW())
	`, discordID, growID)
	require.NoError(t, err)
}

// CountRows returns the number of rows in table
func CountRows(t *testing.T, db *database.DB, table string) int64 {
	t.Helper()
	var n int64
	err := db.QueryRow(context.Background(), fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	require.NoError(t, err)
	return n
}
