package link

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vpbot/bot/common"
	"vpbot/infrastructure/observability"
	"vpbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleVerify(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	opts := common.OptionMap(i.ApplicationCommandData().Options)
	codeOpt, ok := opts["code"]
	if !ok {
		return common.NewUserError("Please provide the code from in-game.", "verify without code")
	}

	discordID, err := common.ParseUserID(common.InteractionUserID(i))
	if err != nil {
		return common.NewSystemError(err, "Error parsing Discord ID")
	}
	displayName := common.InteractionDisplayName(i)

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		observability.GetMetrics().RecordVerification(observability.VerificationError)
		return common.NewSystemError(err, "Error beginning transaction")
	}
	defer uow.Rollback()

	linkService := service.NewLinkService(uow.LinkRepository(), uow.BalanceRepository(), uow.EventBus())

	link, err := linkService.SubmitCode(ctx, discordID, displayName, codeOpt.StringValue())
	if err != nil {
		observability.GetMetrics().RecordVerification(verificationResult(err))
		botErr := common.FromServiceError(err, "Verification rejected")
		botErr.Context = log.Fields{"discordID": discordID}
		return botErr
	}

	if err := uow.Commit(); err != nil {
		observability.GetMetrics().RecordVerification(observability.VerificationError)
		return common.NewSystemError(err, "Error committing verification")
	}
	observability.GetMetrics().RecordVerification(observability.VerificationVerified)

	log.WithFields(log.Fields{
		"discordID": discordID,
		"name":      displayName,
		"growID":    link.GrowID,
	}).Info("Account verified")

	if err := common.RespondWithSuccess(s, i, FormatVerified(common.GetUserMention(discordID), link.GrowID), true); err != nil {
		log.Errorf("Error responding to verify command: %v", err)
	}
	return nil
}

func (f *Feature) handleMyLink(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	discordID, err := common.ParseUserID(common.InteractionUserID(i))
	if err != nil {
		return common.NewSystemError(err, "Error parsing Discord ID")
	}

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "Error beginning transaction")
	}
	defer uow.Rollback()

	linkService := service.NewLinkService(uow.LinkRepository(), uow.BalanceRepository(), uow.EventBus())
	balanceService := service.NewBalanceService(uow.BalanceRepository(), uow.EventBus())

	link, err := linkService.GetOwnLink(ctx, discordID)
	if err != nil {
		return common.FromServiceError(err, "Error getting link")
	}
	if link == nil {
		return common.NewUserError(NotLinkedMessage, "mylink without link")
	}

	vp, err := balanceService.GetBalance(ctx, discordID)
	if err != nil {
		return common.FromServiceError(err, "Error getting balance")
	}

	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "Error committing transaction")
	}

	if err := common.RespondWithEmbed(s, i, BuildMyLinkEmbed(link, vp), true); err != nil {
		log.Errorf("Error responding to mylink command: %v", err)
	}
	return nil
}

func (f *Feature) handleWhois(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	opts := common.OptionMap(i.ApplicationCommandData().Options)
	growIDOpt, ok := opts["growid"]
	if !ok {
		return common.NewUserError("Please provide a GrowID.", "whois without growid")
	}
	growID := strings.TrimSpace(growIDOpt.StringValue())

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "Error beginning transaction")
	}
	defer uow.Rollback()

	linkService := service.NewLinkService(uow.LinkRepository(), uow.BalanceRepository(), uow.EventBus())
	balanceService := service.NewBalanceService(uow.BalanceRepository(), uow.EventBus())

	link, err := linkService.Whois(ctx, growID)
	if errors.Is(err, service.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("**%s** is not linked to any Discord account.", growID), "whois miss")
	}
	if err != nil {
		return common.FromServiceError(err, "Error looking up GrowID")
	}

	var vp int64
	if link.Verified {
		vp, err = balanceService.GetBalance(ctx, link.DiscordID)
		if err != nil {
			return common.FromServiceError(err, "Error getting balance")
		}
	}

	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "Error committing transaction")
	}

	if err := common.RespondWithEmbed(s, i, BuildWhoisEmbed(link, vp), true); err != nil {
		log.Errorf("Error responding to whois command: %v", err)
	}
	return nil
}

func (f *Feature) handleUnlink(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	targetID, err := common.ParseUserID(common.InteractionUserID(i))
	if err != nil {
		return common.NewSystemError(err, "Error parsing Discord ID")
	}

	opts := common.OptionMap(i.ApplicationCommandData().Options)
	if userOpt, ok := opts["user"]; ok {
		targetID, err = common.ParseUserID(userOpt.UserValue(nil).ID)
		if err != nil {
			return common.NewSystemError(err, "Error parsing target Discord ID")
		}
	}
	target := common.GetUserMention(targetID)

	isAdmin := f.isAdmin != nil && f.isAdmin(i.Member)

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "Error beginning transaction")
	}
	defer uow.Rollback()

	linkService := service.NewLinkService(uow.LinkRepository(), uow.BalanceRepository(), uow.EventBus())

	link, err := linkService.Unlink(ctx, isAdmin, targetID)
	if errors.Is(err, service.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("%s is not linked!", target), "unlink miss")
	}
	if err != nil {
		botErr := common.FromServiceError(err, "Unlink rejected")
		botErr.Context = log.Fields{"invoker": common.InteractionUserID(i), "targetID": targetID}
		return botErr
	}

	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "Error committing unlink")
	}

	log.WithFields(log.Fields{
		"invoker":  common.InteractionUserID(i),
		"targetID": targetID,
		"growID":   link.GrowID,
	}).Info("Account unlinked")

	message := fmt.Sprintf("Unlinked %s from **%s**", target, link.GrowID)
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to unlink command: %v", err)
	}
	return nil
}

func verificationResult(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidCode):
		return observability.VerificationInvalidCode
	case errors.Is(err, service.ErrAlreadyVerified):
		return observability.VerificationAlreadyVerified
	case errors.Is(err, service.ErrGrowIDTaken):
		return observability.VerificationGrowIDTaken
	default:
		return observability.VerificationError
	}
}
