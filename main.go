package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vpbot/cmd"
	"vpbot/config"
	"vpbot/database"
	"vpbot/events"
	"vpbot/repository"
	"vpbot/service"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Values already in the environment win over .env
	_ = godotenv.Load()

	// Check for maintenance subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(); err != nil {
				log.Fatal("Migration error: ", err)
			}
			return
		case "issue-code":
			if err := handleIssueCode(); err != nil {
				log.Fatal("Issue code error: ", err)
			}
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}
	cmd.ConfigureLogging(cfg)

	// Normal bot operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// Run the application
	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: vpbot migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleIssueCode writes a pending link the way the game server's /link does
func handleIssueCode() error {
	if len(os.Args) < 4 {
		return fmt.Errorf("usage: vpbot issue-code <growid> <code>")
	}
	growID, code := os.Args[2], os.Args[3]

	ctx := context.Background()
	db, err := database.NewConnection(ctx, database.EnvDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Nothing subscribes here, so published events go nowhere
	uowFactory := repository.NewUnitOfWorkFactory(db, events.NewBus())
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	linkService := service.NewLinkService(uow.LinkRepository(), uow.BalanceRepository(), uow.EventBus())
	link, err := linkService.IssueCode(ctx, growID, code)
	if err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"growID": link.GrowID,
		"code":   *link.PendingCode,
	}).Info("Pending link created")
	return nil
}
