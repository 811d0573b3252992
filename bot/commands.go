package bot

import (
	"fmt"

	"vpbot/bot/common"
	"vpbot/bot/features/vpadmin"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Commands returns the slash command definitions
func Commands() []*discordgo.ApplicationCommand {
	minAmount := float64(1)

	adjustOptions := func(verb string) []*discordgo.ApplicationCommandOption {
		return []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: fmt.Sprintf("User to %s VP", verb),
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "amount",
				Description: "Amount of VP",
				Required:    true,
				MinValue:    &minAmount,
				MaxValue:    common.MaxAdminAmount,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Why the balance is adjusted",
				Required:    false,
				MaxLength:   200,
			},
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        common.CommandVP,
			Description: "Check your Voice Points balance",
		},
		{
			Name:        common.CommandLeaderboard,
			Description: "View top VP earners",
		},
		{
			Name:        common.CommandVerify,
			Description: "Verify your GrowID with the code from in-game",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "code",
					Description: "Verification code from the in-game /link command",
					Required:    true,
					MaxLength:   common.MaxCodeLength,
				},
			},
		},
		{
			Name:        common.CommandMyLink,
			Description: "Check your linked GrowID",
		},
		{
			Name:        common.CommandWhois,
			Description: "Check who a GrowID is linked to",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "growid",
					Description: "GrowID to look up",
					Required:    true,
					MaxLength:   common.MaxGrowIDLength,
				},
			},
		},
		{
			Name:        common.CommandUnlink,
			Description: "Unlink a Discord account from its GrowID (Admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to unlink (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        common.CommandHelp,
			Description: "Show bot commands and information",
		},
		{
			Name:        common.CommandVPAdmin,
			Description: "Adjust Voice Points balances (Admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        vpadmin.SubcommandGive,
					Description: "Give VP to a user",
					Options:     adjustOptions("give"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        vpadmin.SubcommandTake,
					Description: "Take VP from a user",
					Options:     adjustOptions("take"),
				},
			},
		},
	}
}

// registerCommands replaces the application's commands in one call, so
// commands removed from the list disappear from Discord too
func (b *Bot) registerCommands() error {
	commands := Commands()

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.config.GuildID, commands)
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}

	scope := "global"
	if b.config.GuildID != "" {
		scope = "guild " + b.config.GuildID
	}
	log.WithFields(log.Fields{
		"count": len(registered),
		"scope": scope,
	}).Info("Slash commands registered")

	return nil
}
