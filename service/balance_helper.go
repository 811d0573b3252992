package service

import (
	"context"

	"vpbot/events"
	"vpbot/models"
)

// ensureBalance returns the user's balance, creating it on first activity.
// BalanceCreatedEvent is published only when the row is new.
func ensureBalance(ctx context.Context, repo BalanceRepository, publisher EventPublisher, discordID int64, discordName string) (*models.Balance, error) {
	existing, err := repo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, storeError("check balance", err)
	}

	balance, err := repo.UpsertIfAbsent(ctx, discordID, discordName)
	if err != nil {
		return nil, storeError("create balance", err)
	}

	if existing == nil {
		publisher.Publish(events.BalanceCreatedEvent{
			DiscordID:   discordID,
			DiscordName: discordName,
		})
	}

	return balance, nil
}
