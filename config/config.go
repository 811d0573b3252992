package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"vpbot/database"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	GuildID      string // Commands are registered to this guild when set, globally otherwise

	// Database configuration
	DatabaseURL  string
	DatabaseName string
	AutoMigrate  bool

	// Voice Points configuration
	RewardChannelID int64 // VP_CHANNEL_ID, earns VP
	BonusChannelID  int64 // GEMS_CHANNEL_ID, observed only
	VPPerMinute     int64
	BonusMultiplier float64 // Applied by the game server
	CheckInterval   time.Duration
	TickTimeout     time.Duration
	LeaderboardSize int
	AdminRoleIDs    []string // Roles treated as administrators besides the Administrator permission

	// NATS configuration
	NATSServers string // Comma-separated, empty disables the game-server notifier

	// Debug API
	DebugAPIPort int // 0 disables

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// OpenTelemetry
	OTELEnabled          bool
	OTELExporterType     string // "console", "otlp" or "none"
	OTELOTLPEndpoint     string
	OTELServiceName      string
	OTELExportIntervalMS int

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance. It panics if the
// configuration is invalid; call Load first at startup to report errors.
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Load reads and validates the configuration, installing it as the global
// instance on success.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	SetTestConfig(cfg)
	return cfg, nil
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsAdminRole reports whether roleID is one of the configured admin roles
func (c *Config) IsAdminRole(roleID string) bool {
	for _, id := range c.AdminRoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// load loads configuration from an optional .env file and the environment
func load() (*Config, error) {
	// Values already in the environment win over .env
	_ = godotenv.Load()

	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		GuildID:      os.Getenv("GUILD_ID"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),
		AutoMigrate:  getEnvBool("AUTO_MIGRATE", true),

		VPPerMinute:     getEnvInt64("VP_PER_MINUTE", 2),
		BonusMultiplier: getEnvFloat("GEMS_MULTIPLIER", 1.05),
		CheckInterval:   time.Duration(getEnvInt64("CHECK_INTERVAL_SECONDS", 60)) * time.Second,
		TickTimeout:     time.Duration(getEnvInt64("ACCRUAL_TICK_TIMEOUT_SECONDS", 30)) * time.Second,
		LeaderboardSize: int(getEnvInt64("LEADERBOARD_SIZE", 10)),
		AdminRoleIDs:    splitList(os.Getenv("ADMIN_ROLE_IDS")),

		NATSServers: os.Getenv("NATS_SERVERS"),

		DebugAPIPort: int(getEnvInt64("DEBUG_API_PORT", 8899)),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		OTELEnabled:          getEnvBool("OTEL_ENABLED", false),
		OTELExporterType:     getEnvWithDefault("OTEL_EXPORTER_TYPE", "none"),
		OTELOTLPEndpoint:     getEnvWithDefault("OTEL_OTLP_ENDPOINT", "localhost:4317"),
		OTELServiceName:      getEnvWithDefault("OTEL_SERVICE_NAME", "vpbot"),
		OTELExportIntervalMS: int(getEnvInt64("OTEL_EXPORT_INTERVAL_MS", 30000)),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	var err error
	if config.RewardChannelID, err = getEnvID("VP_CHANNEL_ID"); err != nil {
		return nil, err
	}
	if config.BonusChannelID, err = getEnvID("GEMS_CHANNEL_ID"); err != nil {
		return nil, err
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	if config.VPPerMinute < 0 {
		return nil, fmt.Errorf("VP_PER_MINUTE must not be negative")
	}
	if config.CheckInterval <= 0 {
		return nil, fmt.Errorf("CHECK_INTERVAL_SECONDS must be positive")
	}
	if config.LeaderboardSize <= 0 || config.LeaderboardSize > 25 {
		// Discord embeds hold at most 25 fields
		return nil, fmt.Errorf("LEADERBOARD_SIZE must be between 1 and 25")
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvID parses a Discord snowflake, 0 when unset
func getEnvID(key string) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a Discord ID: %w", key, err)
	}
	return id, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:      "test",
		RewardChannelID:  100,
		BonusChannelID:   200,
		VPPerMinute:      2,
		BonusMultiplier:  1.05,
		CheckInterval:    time.Minute,
		TickTimeout:      30 * time.Second,
		LeaderboardSize:  10,
		LogLevel:         "info",
		LogFormat:        "text",
		OTELExporterType: "none",
		OTELServiceName:  "vpbot",
	}
}
