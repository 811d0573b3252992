package vpadmin

import (
	"context"
	"fmt"

	"vpbot/bot/common"
	"vpbot/events"
	"vpbot/infrastructure/observability"
	"vpbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// adjustment is a parsed /vpadmin invocation
type adjustment struct {
	action   string
	targetID int64
	amount   int64
	reason   string
}

func parseAdjustment(data discordgo.ApplicationCommandInteractionData) (*adjustment, error) {
	if len(data.Options) != 1 || data.Options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		return nil, common.NewUserError("Use `/vpadmin give` or `/vpadmin take`.", "vpadmin without subcommand")
	}

	adj := &adjustment{action: data.Options[0].Name}
	if adj.action != SubcommandGive && adj.action != SubcommandTake {
		return nil, common.NewUserError("Use `/vpadmin give` or `/vpadmin take`.", "unknown vpadmin subcommand")
	}

	opts := common.OptionMap(data.Options)

	userOpt, ok := opts["user"]
	if !ok {
		return nil, common.NewUserError("Please choose a user.", "vpadmin without user")
	}
	targetID, err := common.ParseUserID(userOpt.UserValue(nil).ID)
	if err != nil {
		return nil, common.NewSystemError(err, "Error parsing target Discord ID")
	}
	adj.targetID = targetID

	amountOpt, ok := opts["amount"]
	if !ok {
		return nil, common.NewUserError("Please provide an amount.", "vpadmin without amount")
	}
	adj.amount = amountOpt.IntValue()
	if adj.amount <= 0 || adj.amount > common.MaxAdminAmount {
		return nil, common.NewUserError(
			fmt.Sprintf("Amount must be between 1 and %s.", common.FormatBalance(common.MaxAdminAmount)),
			"vpadmin amount out of range")
	}

	if reasonOpt, ok := opts["reason"]; ok {
		adj.reason = reasonOpt.StringValue()
	}

	return adj, nil
}

func (f *Feature) handleAdjust(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	if f.isAdmin == nil || !f.isAdmin(i.Member) {
		return common.FromServiceError(service.ErrPermissionDenied, "Non-admin used vpadmin")
	}

	adj, err := parseAdjustment(i.ApplicationCommandData())
	if err != nil {
		return err
	}

	invokerID := common.InteractionUserID(i)
	reason := fmt.Sprintf("admin:%s", invokerID)
	if adj.reason != "" {
		reason = fmt.Sprintf("%s %s", reason, adj.reason)
	}

	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "Error beginning transaction")
	}
	defer uow.Rollback()

	balanceService := service.NewBalanceService(uow.BalanceRepository(), uow.EventBus())

	var newBalance int64
	switch adj.action {
	case SubcommandGive:
		if _, err := balanceService.GetOrCreate(ctx, adj.targetID, ""); err != nil {
			return common.FromServiceError(err, "Error ensuring target balance")
		}
		newBalance, err = balanceService.Credit(ctx, adj.targetID, adj.amount, events.AwardSourceAdmin)
	case SubcommandTake:
		newBalance, err = balanceService.Debit(ctx, adj.targetID, adj.amount, reason)
	}
	if err != nil {
		botErr := common.FromServiceError(err, "VP adjustment failed")
		botErr.Context = log.Fields{"action": adj.action, "targetID": adj.targetID, "amount": adj.amount}
		return botErr
	}

	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "Error committing VP adjustment")
	}

	if adj.action == SubcommandGive {
		observability.GetMetrics().RecordAdminAward(adj.amount)
	}

	log.WithFields(log.Fields{
		"invoker":    invokerID,
		"action":     adj.action,
		"targetID":   adj.targetID,
		"amount":     adj.amount,
		"newBalance": newBalance,
		"reason":     adj.reason,
	}).Info("Admin VP adjustment")

	if err := common.RespondWithSuccess(s, i, FormatAdjustment(adj.action, adj.targetID, adj.amount, newBalance), true); err != nil {
		log.Errorf("Error responding to vpadmin command: %v", err)
	}
	return nil
}

// FormatAdjustment is the reply to a successful /vpadmin call
func FormatAdjustment(action string, targetID, amount, newBalance int64) string {
	verb := "Gave"
	preposition := "to"
	if action == SubcommandTake {
		verb = "Took"
		preposition = "from"
	}
	return fmt.Sprintf("%s %s %s %s. New balance: %s",
		verb, common.FormatVP(amount), preposition, common.GetUserMention(targetID), common.FormatVP(newBalance))
}
