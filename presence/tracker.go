// Package presence keeps the in-memory view of who is sitting in which voice
// channel and turns elapsed time in the reward channel into VP.
package presence

import (
	"sort"
	"sync"
	"time"
)

// Transition is the state change produced by a voice update
type Transition int

const (
	// TransitionNone covers mute, deafen and duplicate updates
	TransitionNone Transition = iota
	TransitionJoined
	TransitionLeft
	TransitionSwitched
)

func (t Transition) String() string {
	switch t {
	case TransitionJoined:
		return "joined"
	case TransitionLeft:
		return "left"
	case TransitionSwitched:
		return "switched"
	default:
		return "none"
	}
}

// Entry is one user's current voice presence
type Entry struct {
	GuildID   string
	DiscordID int64
	ChannelID int64
	Since     time.Time // accrual baseline
}

// Tracker maps users to their current voice channel. Gateway handlers and the
// accrual worker run on different goroutines, so every access takes the lock.
type Tracker struct {
	mu      sync.Mutex
	entries map[int64]Entry
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[int64]Entry)}
}

// Apply records that discordID is now in channelID (0 meaning no channel) of
// guildID and returns the resulting transition along with the entry it
// replaced. The decision uses only the tracker's own state, so a stale or
// missing "before" state from the gateway cannot corrupt it. A leave reported
// by a guild other than the one the user is tracked in is ignored; a join in
// another guild moves the user there, since a user is in at most one voice
// channel at a time.
func (t *Tracker) Apply(guildID string, discordID, channelID int64, now time.Time) (Transition, Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, present := t.entries[discordID]

	switch {
	case !present && channelID == 0:
		return TransitionNone, Entry{}
	case !present:
		t.entries[discordID] = Entry{GuildID: guildID, DiscordID: discordID, ChannelID: channelID, Since: now}
		return TransitionJoined, Entry{}
	case channelID == 0:
		if prev.GuildID != guildID {
			return TransitionNone, prev
		}
		delete(t.entries, discordID)
		return TransitionLeft, prev
	case prev.ChannelID == channelID:
		return TransitionNone, prev
	default:
		t.entries[discordID] = Entry{GuildID: guildID, DiscordID: discordID, ChannelID: channelID, Since: now}
		return TransitionSwitched, prev
	}
}

// Get returns the user's entry if present
func (t *Tracker) Get(discordID int64) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[discordID]
	return e, ok
}

// SnapshotPresent copies the entries currently in channelID
func (t *Tracker) SnapshotPresent(channelID int64) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Entry
	for _, e := range t.entries {
		if e.ChannelID == channelID {
			out = append(out, e)
		}
	}
	return out
}

// SnapshotGuild copies the entries tracked from guildID
func (t *Tracker) SnapshotGuild(guildID string) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Entry
	for _, e := range t.entries {
		if e.GuildID == guildID {
			out = append(out, e)
		}
	}
	return out
}

// Snapshot copies every entry, ordered by user id
func (t *Tracker) Snapshot() []Entry {
	t.mu.Lock()
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].DiscordID < out[j].DiscordID })
	return out
}

// ResetBaseline moves the user's baseline to now, but only if the entry still
// carries expectedSince. A switch or rejoin between snapshot and reset wins.
func (t *Tracker) ResetBaseline(discordID int64, expectedSince, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[discordID]
	if !ok || !e.Since.Equal(expectedSince) {
		return false
	}
	e.Since = now
	t.entries[discordID] = e
	return true
}

// Len returns the number of users in any voice channel
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
