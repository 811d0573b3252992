package presence

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Crediter persists accrued VP for one user
type Crediter interface {
	CreditVoiceMinutes(ctx context.Context, discordID int64, minutes int64, amount int64) (int64, error)
}

// AccrualConfig controls which channels earn and how much
type AccrualConfig struct {
	RewardChannelID int64
	BonusChannelID  int64
	RatePerMinute   int64
	BonusMultiplier float64
}

// TickResult summarises one accrual pass
type TickResult struct {
	Awarded       int   // users credited
	Failed        int   // users whose credit failed
	VP            int64 // total VP credited
	BonusObserved int   // users seen in the bonus channel
}

// Accruer converts whole minutes spent in the reward channel into VP
type Accruer struct {
	tracker  *Tracker
	crediter Crediter
	cfg      AccrualConfig
	now      func() time.Time
}

// NewAccruer creates an accruer using the wall clock
func NewAccruer(tracker *Tracker, crediter Crediter, cfg AccrualConfig) *Accruer {
	return &Accruer{
		tracker:  tracker,
		crediter: crediter,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithClock replaces the clock, for tests
func (a *Accruer) WithClock(now func() time.Time) *Accruer {
	a.now = now
	return a
}

// Tick credits every user in the reward channel for the whole minutes since
// their baseline, then moves the baseline to now. A failed credit leaves the
// baseline where it was so the minutes are retried next tick.
func (a *Accruer) Tick(ctx context.Context) TickResult {
	var result TickResult
	now := a.now()

	if a.cfg.RewardChannelID != 0 && a.cfg.RatePerMinute > 0 {
		for _, e := range a.tracker.SnapshotPresent(a.cfg.RewardChannelID) {
			if ctx.Err() != nil {
				log.WithError(ctx.Err()).Warn("Accrual tick cancelled")
				break
			}

			minutes := int64(now.Sub(e.Since) / time.Minute)
			if minutes < 1 {
				continue
			}
			amount := minutes * a.cfg.RatePerMinute

			newBalance, err := a.crediter.CreditVoiceMinutes(ctx, e.DiscordID, minutes, amount)
			if err != nil {
				result.Failed++
				log.WithFields(log.Fields{
					"discordID": e.DiscordID,
					"minutes":   minutes,
					"amount":    amount,
				}).WithError(err).Error("Failed to credit voice VP")
				continue
			}

			// The partial minute is dropped, not carried over
			if !a.tracker.ResetBaseline(e.DiscordID, e.Since, now) {
				log.WithField("discordID", e.DiscordID).Debug("Presence changed during credit, baseline kept")
			}

			result.Awarded++
			result.VP += amount

			log.WithFields(log.Fields{
				"discordID":  e.DiscordID,
				"minutes":    minutes,
				"amount":     amount,
				"newBalance": newBalance,
			}).Debug("Credited voice VP")
		}
	}

	if a.cfg.BonusChannelID != 0 {
		result.BonusObserved = len(a.tracker.SnapshotPresent(a.cfg.BonusChannelID))
	}

	return result
}
