package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatBalance formats a VP amount with thousand separators
func FormatBalance(balance int64) string {
	if balance < 0 {
		return "-" + FormatBalance(-balance)
	}

	// Convert to string
	str := fmt.Sprintf("%d", balance)

	// Add commas for thousands
	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatVP formats an amount for embeds, e.g. "**1,234** VP"
func FormatVP(amount int64) string {
	return fmt.Sprintf("**%s** VP", FormatBalance(amount))
}

// FormatDuration renders a duration as hours and minutes, dropping seconds
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "0m"
	}

	hours := int64(d / time.Hour)
	minutes := int64((d % time.Hour) / time.Minute)

	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", minutes)
	case minutes == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatChannelMention returns a channel mention, or "not configured" for 0
func FormatChannelMention(channelID int64) string {
	if channelID == 0 {
		return "*not configured*"
	}
	return fmt.Sprintf("<#%d>", channelID)
}
