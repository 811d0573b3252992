package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"vpbot/bot"
	"vpbot/config"
	"vpbot/database"
	"vpbot/events"
	"vpbot/infrastructure"
	"vpbot/infrastructure/observability"
	"vpbot/presence"
	"vpbot/repository"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the global logger
func ConfigureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)

	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Run initializes and starts the application from the loaded configuration
func Run(ctx context.Context) error {
	cfg := config.Get()
	log.Info("Starting vpbot...")

	// Run migrations before anything touches the schema
	if cfg.AutoMigrate {
		log.Info("Running database migrations...")
		if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Failed to initialize metrics, continuing without them")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
			log.WithError(err).Warn("Error shutting down metrics")
		}
	}()

	// Initialize event bus
	eventBus := events.NewBus()

	// Forward events to the game server when NATS is configured
	if cfg.NATSServers != "" {
		natsClient, err := connectNATS(ctx, cfg.NATSServers)
		if err != nil {
			return err
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Warn("Error closing NATS connection")
			}
		}()

		infrastructure.NewNATSEventPublisher(natsClient).SubscribeToBus(eventBus)
		log.Info("Game-server notifier enabled")
	} else {
		log.Info("NATS_SERVERS not set, game-server notifier disabled")
	}

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:           cfg.DiscordToken,
		GuildID:         cfg.GuildID,
		IsAdminRole:     cfg.IsAdminRole,
		LeaderboardSize: cfg.LeaderboardSize,
		CheckInterval:   cfg.CheckInterval,
		TickTimeout:     cfg.TickTimeout,
		DebugAPIPort:    cfg.DebugAPIPort,
		Accrual: presence.AccrualConfig{
			RewardChannelID: cfg.RewardChannelID,
			BonusChannelID:  cfg.BonusChannelID,
			RatePerMinute:   cfg.VPPerMinute,
			BonusMultiplier: cfg.BonusMultiplier,
		},
	}
	if botConfig.Accrual.RewardChannelID == 0 {
		log.Warn("VP_CHANNEL_ID not set, no voice channel earns VP")
	}

	discordBot, err := bot.New(botConfig, uowFactory, presence.NewTracker())
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	log.Info("Shutdown completed")
	return nil
}

func connectNATS(ctx context.Context, servers string) (*infrastructure.NATSClient, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := infrastructure.NewNATSClient(servers)
	if err := client.Connect(connectCtx); err != nil {
		return nil, err
	}

	if err := client.EnsureStream(infrastructure.StreamName, infrastructure.AllSubjects()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ensure NATS stream: %w", err)
	}

	return client, nil
}
