package link

import (
	"fmt"

	"vpbot/bot/common"
	"vpbot/models"

	"github.com/bwmarrin/discordgo"
)

// NotLinkedMessage is shown by /mylink when the caller has no link row
const NotLinkedMessage = "You are not linked!\nUse `/link` command **in-game** to get a verification code."

// FormatVerified is the reply to a successful /verify
func FormatVerified(mention, growID string) string {
	return fmt.Sprintf("**Verification Successful!**\n\n"+
		"**Discord:** %s\n"+
		"**GrowID:** %s\n\n"+
		"You can now earn VP by staying in voice channels!\n"+
		"Use `/vp` to check your balance.", mention, growID)
}

// BuildMyLinkEmbed shows the caller's own link
func BuildMyLinkEmbed(link *models.Link, vp int64) *discordgo.MessageEmbed {
	if !link.Verified {
		return &discordgo.MessageEmbed{
			Title: "⚠️ Pending Verification",
			Color: common.ColorWarning,
			Description: fmt.Sprintf("GrowID: **%s**\nYour link is not verified yet!\n\n"+
				"Check your in-game console for the verification code.", link.GrowID),
		}
	}

	return &discordgo.MessageEmbed{
		Title: "🔗 Your Account Link",
		Color: common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "GrowID", Value: fmt.Sprintf("**%s**", link.GrowID), Inline: true},
			{Name: "VP Balance", Value: common.FormatBalance(vp), Inline: true},
			{Name: "Status", Value: "✅ Verified", Inline: true},
			{Name: "Linked Since", Value: linkedSince(link)},
		},
	}
}

// BuildWhoisEmbed shows who a GrowID belongs to
func BuildWhoisEmbed(link *models.Link, vp int64) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🔗 Account Link Info",
		Color: common.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "GrowID", Value: fmt.Sprintf("**%s**", link.GrowID), Inline: true},
		},
	}

	// Pending rows are keyed by a placeholder until someone verifies them
	if !link.Verified {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Status", Value: "⚠️ Pending verification", Inline: true,
		})
		return embed
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Discord", Value: common.GetUserMention(link.DiscordID), Inline: true},
		&discordgo.MessageEmbedField{Name: "Linked Since", Value: linkedSince(link)},
		&discordgo.MessageEmbedField{Name: "VP Balance", Value: common.FormatBalance(vp), Inline: true},
	)
	return embed
}

func linkedSince(link *models.Link) string {
	if link.LinkedAt == nil {
		return "Unknown"
	}
	return common.FormatDiscordTimestamp(*link.LinkedAt, "f")
}
