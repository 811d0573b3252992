package balance

import (
	"context"
	"time"

	"vpbot/bot/common"
	"vpbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleVP(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	discordID, err := common.ParseUserID(common.InteractionUserID(i))
	if err != nil {
		return common.NewSystemError(err, "Error parsing Discord ID")
	}
	displayName := common.InteractionDisplayName(i)

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "Error beginning transaction")
	}
	defer uow.Rollback()

	// Instantiate services with repositories from UnitOfWork
	balanceService := service.NewBalanceService(uow.BalanceRepository(), uow.EventBus())
	linkService := service.NewLinkService(uow.LinkRepository(), uow.BalanceRepository(), uow.EventBus())
	voiceService := service.NewVoiceSessionService(uow.BalanceRepository(), uow.VoiceSessionRepository(), uow.EventBus())

	balance, err := balanceService.GetOrCreate(ctx, discordID, displayName)
	if err != nil {
		return common.FromServiceError(err, "Error getting balance")
	}

	link, err := linkService.GetOwnLink(ctx, discordID)
	if err != nil {
		return common.FromServiceError(err, "Error getting link")
	}

	totals, err := voiceService.Totals(ctx, discordID, time.Now())
	if err != nil {
		return common.FromServiceError(err, "Error getting voice totals")
	}

	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "Error committing transaction")
	}

	view := BalanceView{
		Mention: common.GetUserMention(discordID),
		Balance: balance,
		Link:    link,
		Totals:  totals,
		Accrual: f.accrual,
	}
	if entry, ok := f.tracker.Get(discordID); ok {
		view.CurrentChannelID = entry.ChannelID
	}

	if err := common.RespondWithEmbed(s, i, BuildBalanceEmbed(view), true); err != nil {
		log.Errorf("Error responding to vp command: %v", err)
	}
	return nil
}
