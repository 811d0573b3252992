package presence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCrediter keeps balances in memory
type fakeCrediter struct {
	mu       sync.Mutex
	balances map[int64]int64
	fail     map[int64]error
	calls    int
}

func newFakeCrediter() *fakeCrediter {
	return &fakeCrediter{balances: map[int64]int64{}, fail: map[int64]error{}}
}

func (f *fakeCrediter) CreditVoiceMinutes(ctx context.Context, discordID int64, minutes int64, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.fail[discordID]; err != nil {
		return 0, err
	}
	f.balances[discordID] += amount
	return f.balances[discordID], nil
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newTestAccruer(tracker *Tracker, crediter Crediter, c *clock) *Accruer {
	return NewAccruer(tracker, crediter, AccrualConfig{
		RewardChannelID: rewardChannel,
		BonusChannelID:  bonusChannel,
		RatePerMinute:   2,
		BonusMultiplier: 1.05,
	}).WithClock(c.Now)
}

func TestAccruer_TwoTicksAfterJoin(t *testing.T) {
	t.Parallel()
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := &clock{now: t0}
	tracker := NewTracker()
	crediter := newFakeCrediter()
	accruer := newTestAccruer(tracker, crediter, c)

	tracker.Apply(testGuild, 1, rewardChannel, t0)

	c.now = t0.Add(61 * time.Second)
	result := accruer.Tick(context.Background())
	assert.Equal(t, 1, result.Awarded)
	assert.Equal(t, int64(2), crediter.balances[1])

	c.now = t0.Add(121 * time.Second)
	accruer.Tick(context.Background())
	assert.Equal(t, int64(4), crediter.balances[1])
}

func TestAccruer_BeforeFirstMinute(t *testing.T) {
	t.Parallel()
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := &clock{now: t0.Add(59 * time.Second)}
	tracker := NewTracker()
	crediter := newFakeCrediter()
	accruer := newTestAccruer(tracker, crediter, c)

	tracker.Apply(testGuild, 1, rewardChannel, t0)

	result := accruer.Tick(context.Background())
	assert.Zero(t, result.Awarded)
	assert.Zero(t, crediter.calls)

	entry, _ := tracker.Get(1)
	assert.Equal(t, t0, entry.Since, "baseline untouched when nothing was granted")
}

func TestAccruer_PartialMinuteIsDropped(t *testing.T) {
	t.Parallel()
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := &clock{now: t0.Add(150 * time.Second)}
	tracker := NewTracker()
	crediter := newFakeCrediter()
	accruer := newTestAccruer(tracker, crediter, c)

	tracker.Apply(testGuild, 1, rewardChannel, t0)

	result := accruer.Tick(context.Background())
	assert.Equal(t, int64(4), result.VP)
	assert.Equal(t, int64(4), crediter.balances[1])

	entry, _ := tracker.Get(1)
	assert.Equal(t, c.now, entry.Since)

	result = accruer.Tick(context.Background())
	assert.Zero(t, result.VP)
	assert.Equal(t, int64(4), crediter.balances[1])
}

func TestAccruer_OnlyRewardChannelEarns(t *testing.T) {
	t.Parallel()
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := &clock{now: t0.Add(10 * time.Minute)}
	tracker := NewTracker()
	crediter := newFakeCrediter()
	accruer := newTestAccruer(tracker, crediter, c)

	tracker.Apply(testGuild, 1, rewardChannel, t0)
	tracker.Apply(testGuild, 2, bonusChannel, t0)
	tracker.Apply(testGuild, 3, otherChannel, t0)

	result := accruer.Tick(context.Background())
	assert.Equal(t, 1, result.Awarded)
	assert.Equal(t, 1, result.BonusObserved)
	assert.Equal(t, int64(20), crediter.balances[1])
	assert.Zero(t, crediter.balances[2])
	assert.Zero(t, crediter.balances[3])
}

func TestAccruer_FailedCreditIsRetried(t *testing.T) {
	t.Parallel()
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := &clock{now: t0.Add(2 * time.Minute)}
	tracker := NewTracker()
	crediter := newFakeCrediter()
	accruer := newTestAccruer(tracker, crediter, c)

	tracker.Apply(testGuild, 1, rewardChannel, t0)
	tracker.Apply(testGuild, 2, rewardChannel, t0)
	crediter.fail[1] = errors.New("store unavailable")

	result := accruer.Tick(context.Background())
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Awarded)
	assert.Equal(t, int64(4), crediter.balances[2], "other users still credited")

	entry, _ := tracker.Get(1)
	assert.Equal(t, t0, entry.Since)

	delete(crediter.fail, 1)
	c.now = t0.Add(3 * time.Minute)
	accruer.Tick(context.Background())
	assert.Equal(t, int64(6), crediter.balances[1], "all three minutes granted on retry")
}

// switchingCrediter moves the user to another channel mid-credit
type switchingCrediter struct {
	*fakeCrediter
	tracker *Tracker
	at      time.Time
}

func (s *switchingCrediter) CreditVoiceMinutes(ctx context.Context, discordID int64, minutes int64, amount int64) (int64, error) {
	s.tracker.Apply(testGuild, discordID, rewardChannel, s.at)
	s.tracker.Apply(testGuild, discordID, 0, s.at)
	s.tracker.Apply(testGuild, discordID, rewardChannel, s.at)
	return s.fakeCrediter.CreditVoiceMinutes(ctx, discordID, minutes, amount)
}

func TestAccruer_RejoinDuringCreditKeepsNewBaseline(t *testing.T) {
	t.Parallel()
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rejoinAt := t0.Add(90 * time.Second)
	c := &clock{now: t0.Add(2 * time.Minute)}
	tracker := NewTracker()
	crediter := &switchingCrediter{fakeCrediter: newFakeCrediter(), tracker: tracker, at: rejoinAt}
	accruer := newTestAccruer(tracker, crediter, c)

	tracker.Apply(testGuild, 1, rewardChannel, t0)
	accruer.Tick(context.Background())

	entry, ok := tracker.Get(1)
	require.True(t, ok)
	assert.Equal(t, rejoinAt, entry.Since)
}

func TestAccruer_DisabledWithoutRewardChannel(t *testing.T) {
	t.Parallel()
	tracker := NewTracker()
	crediter := newFakeCrediter()
	accruer := NewAccruer(tracker, crediter, AccrualConfig{RatePerMinute: 2})

	tracker.Apply(testGuild, 1, 0, time.Now())
	result := accruer.Tick(context.Background())
	assert.Zero(t, result.Awarded)
	assert.Zero(t, crediter.calls)
}
