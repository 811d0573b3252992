package common

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		member   *discordgo.Member
		expected string
	}{
		{"nil member", nil, "Unknown"},
		{"nickname wins", &discordgo.Member{Nick: "Nick", User: &discordgo.User{Username: "user", GlobalName: "Global"}}, "Nick"},
		{"global name", &discordgo.Member{User: &discordgo.User{Username: "user", GlobalName: "Global"}}, "Global"},
		{"username", &discordgo.Member{User: &discordgo.User{Username: "user"}}, "user"},
		{"no user", &discordgo.Member{}, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MemberDisplayName(tt.member))
		})
	}
}

func TestInteractionUser(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "1"}},
	}}
	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "2", Username: "dm-user"},
	}}
	empty := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}

	assert.Equal(t, "1", InteractionUserID(guild))
	assert.Equal(t, "2", InteractionUserID(dm))
	assert.Equal(t, "dm-user", InteractionDisplayName(dm))
	assert.Equal(t, "", InteractionUserID(empty))
}

func TestParseChannelID(t *testing.T) {
	id, err := ParseChannelID("")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)

	id, err = ParseChannelID("789012")
	require.NoError(t, err)
	assert.Equal(t, int64(789012), id)

	_, err = ParseChannelID("general")
	assert.Error(t, err)
}

func TestGetUserMention(t *testing.T) {
	assert.Equal(t, "<@111111>", GetUserMention(111111))
}

func TestIsMemberAdmin(t *testing.T) {
	adminRole := func(roleID string) bool { return roleID == "mod" }

	tests := []struct {
		name     string
		member   *discordgo.Member
		expected bool
	}{
		{"nil member", nil, false},
		{"administrator permission", &discordgo.Member{Permissions: discordgo.PermissionAdministrator}, true},
		{"configured role", &discordgo.Member{Roles: []string{"everyone", "mod"}}, true},
		{"regular member", &discordgo.Member{Roles: []string{"everyone"}, Permissions: discordgo.PermissionSendMessages}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsMemberAdmin(tt.member, adminRole))
		})
	}

	assert.False(t, IsMemberAdmin(&discordgo.Member{Roles: []string{"mod"}}, nil))
}
