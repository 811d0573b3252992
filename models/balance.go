package models

import (
	"time"
)

// Balance is a user's Voice Point account
type Balance struct {
	DiscordID   int64     `db:"discord_id"`
	DiscordName string    `db:"discord_name"`
	VP          int64     `db:"vp"`
	TotalEarned int64     `db:"total_earned"` // Lifetime, never decreases
	LastSeen    time.Time `db:"last_seen"`
	CreatedAt   time.Time `db:"created_at"`
}

// LeaderboardEntry is one row of the lifetime earnings leaderboard
type LeaderboardEntry struct {
	Rank        int
	DiscordID   int64
	DiscordName string
	VP          int64
	TotalEarned int64
}
