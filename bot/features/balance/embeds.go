package balance

import (
	"fmt"

	"vpbot/bot/common"
	"vpbot/models"
	"vpbot/presence"

	"github.com/bwmarrin/discordgo"
)

// Footer hints by link status
const (
	FooterNotLinked = "Use /link in-game to get a verification code!"
	FooterPending   = "Complete verification with the code from in-game!"
	FooterVerified  = "Use /vpshop in-game to spend your VP!"
)

// BalanceView is everything /vp renders
type BalanceView struct {
	Mention          string
	Balance          *models.Balance
	Link             *models.Link
	Totals           *models.VoiceTotals
	CurrentChannelID int64 // 0 when not in voice
	Accrual          presence.AccrualConfig
}

// BuildBalanceEmbed creates the /vp embed
func BuildBalanceEmbed(view BalanceView) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "💎 Voice Points Balance",
		Color: common.ColorPurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Discord", Value: view.Mention, Inline: true},
			{Name: "GrowID", Value: growIDValue(view.Link), Inline: true},
			{Name: "Current VP", Value: common.FormatBalance(view.Balance.VP), Inline: true},
			{Name: "Total Earned", Value: common.FormatBalance(view.Balance.TotalEarned), Inline: true},
		},
	}

	if view.Totals != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Voice Time",
			Value:  common.FormatDuration(view.Totals.TimeSpent),
			Inline: true,
		})
	}

	if field := activeBonusField(view); field != nil {
		embed.Fields = append(embed.Fields, field)
	}

	embed.Footer = &discordgo.MessageEmbedFooter{Text: footerFor(view.Link.Status())}

	return embed
}

func growIDValue(link *models.Link) string {
	switch link.Status() {
	case models.LinkStatusVerified:
		return fmt.Sprintf("✅ **%s**", link.GrowID)
	case models.LinkStatusPending:
		return fmt.Sprintf("⚠️ %s (Pending)", link.GrowID)
	default:
		return "Not linked"
	}
}

func activeBonusField(view BalanceView) *discordgo.MessageEmbedField {
	channelID := view.CurrentChannelID
	switch {
	case channelID == 0:
		return nil
	case channelID == view.Accrual.RewardChannelID:
		return &discordgo.MessageEmbedField{
			Name:  "🎙️ Active Bonus",
			Value: fmt.Sprintf("Earning %d VP/min in %s", view.Accrual.RatePerMinute, common.FormatChannelMention(channelID)),
		}
	case channelID == view.Accrual.BonusChannelID:
		return &discordgo.MessageEmbedField{
			Name:  "💎 Active Bonus",
			Value: fmt.Sprintf("%gx Gems multiplier in %s", view.Accrual.BonusMultiplier, common.FormatChannelMention(channelID)),
		}
	default:
		return nil
	}
}

func footerFor(status models.LinkStatus) string {
	switch status {
	case models.LinkStatusVerified:
		return FooterVerified
	case models.LinkStatusPending:
		return FooterPending
	default:
		return FooterNotLinked
	}
}
