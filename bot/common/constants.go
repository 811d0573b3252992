package common

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorError   = 0xED4245 // Red (alias for ColorDanger)
	ColorWarning = 0xFEE75C // Yellow
	ColorInfo    = 0x3498DB // Blue
	ColorGold    = 0xF1C40F
	ColorPurple  = 0x9B59B6
)

// Slash command names
const (
	CommandVP          = "vp"
	CommandLeaderboard = "leaderboard"
	CommandVerify      = "verify"
	CommandMyLink      = "mylink"
	CommandWhois       = "whois"
	CommandUnlink      = "unlink"
	CommandHelp        = "help"
	CommandVPAdmin     = "vpadmin"
)

// Command option limits
const (
	MaxCodeLength   = 32
	MaxGrowIDLength = 64
	MaxAdminAmount  = 1_000_000
)
