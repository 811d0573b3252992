package common

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// MemberDisplayName returns the nickname, global name or username of a member
func MemberDisplayName(member *discordgo.Member) string {
	if member == nil {
		return "Unknown"
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User == nil {
		return "Unknown"
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

// InteractionUser returns the invoking user for guild and DM interactions alike
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// InteractionUserID returns the invoking user's ID, or "" if unknown
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if u := InteractionUser(i); u != nil {
		return u.ID
	}
	return ""
}

// InteractionDisplayName returns the invoking user's display name
func InteractionDisplayName(i *discordgo.InteractionCreate) string {
	if i.Member != nil {
		return MemberDisplayName(i.Member)
	}
	if i.User != nil {
		return i.User.Username
	}
	return "Unknown"
}

// ParseUserID converts a Discord user ID string to int64
func ParseUserID(userID string) (int64, error) {
	return strconv.ParseInt(userID, 10, 64)
}

// ParseChannelID converts a Discord channel ID to int64, "" meaning no channel
func ParseChannelID(channelID string) (int64, error) {
	if channelID == "" {
		return 0, nil
	}
	return strconv.ParseInt(channelID, 10, 64)
}

// FormatUserID converts an int64 user ID to string
func FormatUserID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatUserID(userID) + ">"
}

// IsMemberAdmin checks the member's resolved permissions for Administrator,
// then its roles against the configured admin roles.
func IsMemberAdmin(member *discordgo.Member, isAdminRole func(roleID string) bool) bool {
	if member == nil {
		return false
	}

	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	if isAdminRole == nil {
		return false
	}
	for _, roleID := range member.Roles {
		if isAdminRole(roleID) {
			return true
		}
	}

	return false
}
