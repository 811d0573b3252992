package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"vpbot/bot/common"
	"vpbot/bot/features/balance"
	"vpbot/bot/features/help"
	"vpbot/bot/features/leaderboard"
	"vpbot/bot/features/link"
	"vpbot/bot/features/vpadmin"
	"vpbot/infrastructure/observability"
	"vpbot/presence"
	"vpbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token           string
	GuildID         string // Commands are registered here when set, globally otherwise
	IsAdminRole     func(roleID string) bool // Roles treated as admin besides the Administrator permission
	LeaderboardSize int
	CheckInterval   time.Duration
	TickTimeout     time.Duration
	DebugAPIPort    int // 0 disables the debug API
	Accrual         presence.AccrualConfig
}

// CommandHandler handles one slash command. A returned error is reported to
// the invoking user by the dispatcher.
type CommandHandler func(s *discordgo.Session, i *discordgo.InteractionCreate) error

// Bot manages the Discord bot and all feature modules
type Bot struct {
	// Core components
	config     Config
	session    *discordgo.Session
	uowFactory service.UnitOfWorkFactory
	tracker    *presence.Tracker
	accruer    *presence.Accruer

	// Slash command dispatch table
	handlers map[string]CommandHandler

	// Feature modules
	balance     *balance.Feature
	leaderboard *leaderboard.Feature
	link        *link.Feature
	help        *help.Feature
	vpadmin     *vpadmin.Feature

	// Worker cleanup functions
	stopAccrualWorker func()
	debugServer       *http.Server
}

// New creates a bot, connects it to Discord and starts the accrual worker
func New(config Config, uowFactory service.UnitOfWorkFactory, tracker *presence.Tracker) (*Bot, error) {
	// Create Discord session
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	bot := newBot(config, dg, uowFactory, tracker)

	// Sessions left open by a previous process end now; guild create
	// reopens them for users still in voice
	ctx := context.Background()
	if err := bot.closeOrphanedSessions(ctx, time.Now()); err != nil {
		return nil, err
	}

	// Register handlers
	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleVoiceStateUpdate)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Start background workers
	bot.stopAccrualWorker = bot.StartVoiceAccrualWorker(ctx)
	log.Info("Background workers started")

	if config.DebugAPIPort > 0 {
		if err := bot.StartDebugAPI(config.DebugAPIPort); err != nil {
			log.Warnf("Failed to start debug API on port %d: %v", config.DebugAPIPort, err)
		}
	}

	return bot, nil
}

// newBot wires features and the dispatch table without touching the network
func newBot(config Config, session *discordgo.Session, uowFactory service.UnitOfWorkFactory, tracker *presence.Tracker) *Bot {
	bot := &Bot{
		config:     config,
		session:    session,
		uowFactory: uowFactory,
		tracker:    tracker,
		accruer:    presence.NewAccruer(tracker, newSessionCrediter(uowFactory), config.Accrual),
	}

	// Create feature modules
	bot.balance = balance.New(uowFactory, tracker, config.Accrual)
	bot.leaderboard = leaderboard.New(uowFactory, config.LeaderboardSize)
	bot.link = link.New(uowFactory, bot.isAdmin)
	bot.help = help.New(config.Accrual)
	bot.vpadmin = vpadmin.New(uowFactory, bot.isAdmin)

	bot.handlers = map[string]CommandHandler{
		common.CommandVP:          bot.balance.HandleCommand,
		common.CommandLeaderboard: bot.leaderboard.HandleCommand,
		common.CommandVerify:      bot.link.HandleVerify,
		common.CommandMyLink:      bot.link.HandleMyLink,
		common.CommandWhois:       bot.link.HandleWhois,
		common.CommandUnlink:      bot.link.HandleUnlink,
		common.CommandHelp:        bot.help.HandleCommand,
		common.CommandVPAdmin:     bot.vpadmin.HandleCommand,
	}

	return bot
}

// Close stops the workers, closes every open voice session and disconnects
func (b *Bot) Close() error {
	// Stop background workers
	if b.stopAccrualWorker != nil {
		b.stopAccrualWorker()
	}
	log.Info("Background workers stopped")

	if b.debugServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.debugServer.Shutdown(ctx); err != nil {
			log.Warnf("Error shutting down debug API: %v", err)
		}
	}

	if err := b.closeOrphanedSessions(context.Background(), time.Now()); err != nil {
		log.WithError(err).Warn("Failed to close voice sessions on shutdown")
	}

	return b.session.Close()
}

func (b *Bot) isAdmin(member *discordgo.Member) bool {
	return common.IsMemberAdmin(member, b.config.IsAdminRole)
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Connected to Discord")
}

// handleCommands routes slash commands through the dispatch table
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	handler, ok := b.handlers[name]
	if !ok {
		log.Warnf("No handler registered for command %q", name)
		return
	}

	// Every invocation creates the caller's balance record
	if err := b.ensureInvokerBalance(context.Background(), i); err != nil {
		log.WithFields(log.Fields{
			"command": name,
			"user":    common.InteractionUserID(i),
		}).WithError(err).Warn("Failed to ensure invoker balance")
	}

	err := handler(s, i)
	observability.GetMetrics().RecordCommand(name, err == nil)
	if err != nil {
		common.HandleError(s, i, err)
	}
}

func (b *Bot) ensureInvokerBalance(ctx context.Context, i *discordgo.InteractionCreate) error {
	discordID, err := common.ParseUserID(common.InteractionUserID(i))
	if err != nil {
		return fmt.Errorf("invalid invoker id: %w", err)
	}

	uow := b.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balanceService := service.NewBalanceService(uow.BalanceRepository(), uow.EventBus())
	if _, err := balanceService.GetOrCreate(ctx, discordID, common.InteractionDisplayName(i)); err != nil {
		return err
	}

	return uow.Commit()
}

func (b *Bot) closeOrphanedSessions(ctx context.Context, at time.Time) error {
	uow := b.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	voiceService := service.NewVoiceSessionService(uow.BalanceRepository(), uow.VoiceSessionRepository(), uow.EventBus())

	closed, err := voiceService.CloseOrphaned(ctx, at)
	if err != nil {
		return fmt.Errorf("failed to close open voice sessions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if closed > 0 {
		log.WithField("sessions", closed).Info("Closed open voice sessions")
	}
	return nil
}
