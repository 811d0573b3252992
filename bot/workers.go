package bot

import (
	"context"
	"fmt"
	"time"

	"vpbot/infrastructure/observability"
	"vpbot/service"

	log "github.com/sirupsen/logrus"
)

// sessionCrediter credits accrued minutes to the balance and the open voice
// session in one transaction
type sessionCrediter struct {
	uowFactory service.UnitOfWorkFactory
}

func newSessionCrediter(uowFactory service.UnitOfWorkFactory) *sessionCrediter {
	return &sessionCrediter{uowFactory: uowFactory}
}

func (c *sessionCrediter) CreditVoiceMinutes(ctx context.Context, discordID int64, minutes int64, amount int64) (int64, error) {
	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balanceService := service.NewBalanceService(uow.BalanceRepository(), uow.EventBus())
	voiceService := service.NewVoiceSessionService(uow.BalanceRepository(), uow.VoiceSessionRepository(), uow.EventBus())

	// The join may have been seen while the store was down
	if _, err := balanceService.GetOrCreate(ctx, discordID, ""); err != nil {
		return 0, err
	}

	newBalance, err := voiceService.CreditMinutes(ctx, discordID, minutes, amount)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return newBalance, nil
}

// StartVoiceAccrualWorker starts a background worker that credits voice time
// every check interval. Returns a cleanup function that stops the worker and
// waits for an in-flight tick to finish.
func (b *Bot) StartVoiceAccrualWorker(ctx context.Context) func() {
	interval := b.config.CheckInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})
	done := make(chan struct{})

	// Start the worker goroutine
	go func() {
		defer close(done)
		log.WithFields(log.Fields{
			"interval":      interval,
			"rewardChannel": b.config.Accrual.RewardChannelID,
			"bonusChannel":  b.config.Accrual.BonusChannelID,
			"ratePerMinute": b.config.Accrual.RatePerMinute,
		}).Info("Voice accrual worker started")

		for {
			select {
			case <-ctx.Done():
				log.Info("Voice accrual worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Voice accrual worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				b.runAccrualTick(ctx)
			}
		}
	}()

	// Return cleanup function
	return func() {
		ticker.Stop()
		close(stopChan)
		<-done
	}
}

func (b *Bot) runAccrualTick(ctx context.Context) {
	start := time.Now()

	tickCtx := ctx
	if b.config.TickTimeout > 0 {
		var cancel context.CancelFunc
		tickCtx, cancel = context.WithTimeout(ctx, b.config.TickTimeout)
		defer cancel()
	}

	result := b.accruer.Tick(tickCtx)
	duration := time.Since(start)

	observability.GetMetrics().RecordAccrualTick(result.VP, result.Failed, result.BonusObserved, b.tracker.Len(), duration)

	fields := log.Fields{
		"awarded":       result.Awarded,
		"failed":        result.Failed,
		"vp":            result.VP,
		"bonusObserved": result.BonusObserved,
		"tracked":       b.tracker.Len(),
		"duration":      duration,
	}
	switch {
	case result.Failed > 0:
		log.WithFields(fields).Warn("Accrual tick completed with failures")
	case result.Awarded > 0:
		log.WithFields(fields).Info("Accrual tick completed")
	default:
		log.WithFields(fields).Debug("Accrual tick completed")
	}
}
