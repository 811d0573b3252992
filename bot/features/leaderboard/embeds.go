package leaderboard

import (
	"fmt"

	"vpbot/bot/common"
	"vpbot/models"

	"github.com/bwmarrin/discordgo"
)

// getMedalForRank returns the appropriate medal emoji or rank number
func getMedalForRank(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("#%d", rank)
	}
}

// BuildLeaderboardEmbed lists the top lifetime earners
func BuildLeaderboardEmbed(entries []*models.LeaderboardEntry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🏆 Top Voice Point Earners",
		Description: "Earn VP by staying in voice channels!",
		Color:       common.ColorGold,
	}

	if len(entries) == 0 {
		embed.Description += "\n\nNobody has earned VP yet."
		return embed
	}

	for _, entry := range entries {
		name := entry.DiscordName
		if name == "" {
			name = common.GetUserMention(entry.DiscordID)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s %s", getMedalForRank(entry.Rank), name),
			Value: common.FormatVP(entry.TotalEarned),
		})
	}

	return embed
}
