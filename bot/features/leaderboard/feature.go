package leaderboard

import (
	"context"

	"vpbot/bot/common"
	"vpbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature serves /leaderboard
type Feature struct {
	uowFactory service.UnitOfWorkFactory
	size       int
}

func New(uowFactory service.UnitOfWorkFactory, size int) *Feature {
	if size <= 0 {
		size = service.DefaultLeaderboardSize
	}
	return &Feature{
		uowFactory: uowFactory,
		size:       size,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "Error beginning transaction")
	}
	defer uow.Rollback()

	balanceService := service.NewBalanceService(uow.BalanceRepository(), uow.EventBus())

	entries, err := balanceService.Leaderboard(ctx, f.size)
	if err != nil {
		return common.FromServiceError(err, "Error getting leaderboard")
	}

	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "Error committing transaction")
	}

	if err := common.RespondWithEmbed(s, i, BuildLeaderboardEmbed(entries), false); err != nil {
		log.Errorf("Error responding to leaderboard command: %v", err)
	}
	return nil
}
