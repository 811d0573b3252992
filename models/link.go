package models

import (
	"time"
)

// LinkStatus describes how far a Discord identity is through verification
type LinkStatus string

const (
	LinkStatusNone     LinkStatus = "none"
	LinkStatusPending  LinkStatus = "pending"
	LinkStatusVerified LinkStatus = "verified"
)

// Link binds a Discord identity to a GrowID. Pending rows are written by the
// game server and carry a one-time code.
type Link struct {
	DiscordID   int64      `db:"discord_id"`
	GrowID      string     `db:"growid"`
	Verified    bool       `db:"verified"`
	LinkedAt    *time.Time `db:"linked_at"`
	PendingCode *string    `db:"pending_code"`
}

// Status returns the verification state of the link. A nil link has none.
func (l *Link) Status() LinkStatus {
	switch {
	case l == nil:
		return LinkStatusNone
	case l.Verified:
		return LinkStatusVerified
	default:
		return LinkStatusPending
	}
}
