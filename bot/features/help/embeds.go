package help

import (
	"fmt"

	"vpbot/bot/common"
	"vpbot/presence"

	"github.com/bwmarrin/discordgo"
)

// BuildHelpEmbed lists the commands and how VP is earned
func BuildHelpEmbed(accrual presence.AccrualConfig) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎮 GTPS Voice Points Bot",
		Description: "Earn Voice Points by staying in voice channels!",
		Color:       common.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "🔗 Getting Started",
				Value: "1️⃣ Use `/link` command **in-game**\n" +
					"2️⃣ You'll receive a verification code\n" +
					"3️⃣ Use `/verify <code>` here in Discord\n" +
					"4️⃣ Start earning VP!",
			},
			{
				Name: "📝 Account Commands",
				Value: "`/verify <code>` - Verify with in-game code\n" +
					"`/mylink` - Check your linked GrowID\n" +
					"`/whois <growid>` - Check who owns a GrowID\n" +
					"`/unlink @user` - Unlink account (Admin)",
			},
			{
				Name: "💰 Voice Points",
				Value: "`/vp` - Check your VP balance\n" +
					"`/leaderboard` - View top earners\n" +
					"`/help` - Show this message\n" +
					"`/vpadmin give|take` - Adjust balances (Admin)",
			},
			{
				Name: "💎 Earning VP",
				Value: fmt.Sprintf("Stay in %s to earn **%d VP per minute**",
					common.FormatChannelMention(accrual.RewardChannelID), accrual.RatePerMinute),
			},
			{
				Name: "🎁 Gems Bonus",
				Value: fmt.Sprintf("Stay in %s for **%gx gems** while playing in-game",
					common.FormatChannelMention(accrual.BonusChannelID), accrual.BonusMultiplier),
			},
			{
				Name: "🛒 In-Game Commands",
				Value: "`/link` - Get verification code\n" +
					"`/vp` - Check your VP\n" +
					"`/vpshop` - Browse shop\n" +
					"`/vpbuy <id>` - Purchase items",
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Start with /link in-game to get your verification code!"},
	}
}
