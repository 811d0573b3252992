package models

import (
	"time"
)

// VoiceSession is one continuous stay in a voice channel
type VoiceSession struct {
	ID        int64      `db:"id"`
	DiscordID int64      `db:"discord_id"`
	ChannelID int64      `db:"channel_id"`
	JoinedAt  time.Time  `db:"joined_at"`
	LeftAt    *time.Time `db:"left_at"` // nil while the session is open
	VPEarned  int64      `db:"vp_earned"`
}

// IsOpen reports whether the user is still in the channel
func (s *VoiceSession) IsOpen() bool {
	return s.LeftAt == nil
}

// VoiceTotals aggregates a user's voice history
type VoiceTotals struct {
	Sessions  int64
	TimeSpent time.Duration // Open sessions count up to now
	VPEarned  int64
}
