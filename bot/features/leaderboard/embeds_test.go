package leaderboard

import (
	"testing"

	"vpbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMedalForRank(t *testing.T) {
	assert.Equal(t, "🥇", getMedalForRank(1))
	assert.Equal(t, "🥈", getMedalForRank(2))
	assert.Equal(t, "🥉", getMedalForRank(3))
	assert.Equal(t, "#4", getMedalForRank(4))
}

func TestBuildLeaderboardEmbed(t *testing.T) {
	entries := []*models.LeaderboardEntry{
		{Rank: 1, DiscordID: 1, DiscordName: "alice", TotalEarned: 12000},
		{Rank: 2, DiscordID: 2, DiscordName: "bob", TotalEarned: 800},
		{Rank: 3, DiscordID: 3, DiscordName: "carol", TotalEarned: 500},
		{Rank: 4, DiscordID: 4, DiscordName: "", TotalEarned: 20},
	}

	embed := BuildLeaderboardEmbed(entries)

	require.Len(t, embed.Fields, 4)
	assert.Equal(t, "🥇 alice", embed.Fields[0].Name)
	assert.Equal(t, "**12,000** VP", embed.Fields[0].Value)
	assert.Equal(t, "🥈 bob", embed.Fields[1].Name)
	assert.Equal(t, "🥉 carol", embed.Fields[2].Name)
	assert.Equal(t, "#4 <@4>", embed.Fields[3].Name)
}

func TestBuildLeaderboardEmbed_Empty(t *testing.T) {
	embed := BuildLeaderboardEmbed(nil)

	assert.Empty(t, embed.Fields)
	assert.Contains(t, embed.Description, "Nobody has earned VP yet.")
}
