// Package server provides the main bot initialization and run logic.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rooclub/roobot/internal/audit"
	"github.com/rooclub/roobot/internal/bot"
	"github.com/rooclub/roobot/internal/broadcast"
	"github.com/rooclub/roobot/internal/command"
	"github.com/rooclub/roobot/internal/config"
	"github.com/rooclub/roobot/internal/db"
	"github.com/rooclub/roobot/internal/ledger"
	"github.com/rooclub/roobot/internal/logger"
	"github.com/rooclub/roobot/internal/panda"
	"github.com/rooclub/roobot/internal/platform"
	"github.com/rooclub/roobot/internal/platform/discord"
	"github.com/rooclub/roobot/internal/rbac"
	"github.com/rooclub/roobot/internal/roles"

	"gorm.io/gorm"
)

// Config holds the server configuration options.
type Config struct {
	ConfigFile string // Path to the config file ("" = search defaults)
	Version    string // Version string to report
}

// Platform is everything the bot needs from the chat platform.
type Platform interface {
	platform.Directory
	platform.Messenger
}

// Run starts the bot with the given configuration and blocks until the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	// Load configuration
	appCfg, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	log := logger.Init(appCfg.Log.Format, appCfg.Log.Level)
	log.Info("Starting roobot", "version", cfg.Version, "prefix", appCfg.Discord.Prefix)

	// Propagate app log level to database if not explicitly set
	if appCfg.Database.LogLevel == "" {
		appCfg.Database.LogLevel = appCfg.Log.Level
	}

	database, err := OpenDatabase(appCfg)
	if err != nil {
		return err
	}

	history, err := createHistory(appCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize broadcast history: %w", err)
	}
	defer history.Close()
	log.Info("Broadcast history initialized", "type", appCfg.Partner.History)

	client, err := discord.New(appCfg.Discord.Token, appCfg.Roles.SeparatorRoleID, log)
	if err != nil {
		return err
	}

	dispatcher, err := Build(appCfg, database, client, history, log)
	if err != nil {
		return err
	}

	// Handlers outlive shutdown so in-flight commands can finish their platform calls.
	msgCtx := context.WithoutCancel(ctx)
	client.OnMessage(func(msg platform.Message) {
		dispatcher.OnMessage(msgCtx, msg)
	})

	if err := client.Open(); err != nil {
		return err
	}
	log.Info("Gateway connected")

	// Wait for context cancellation
	<-ctx.Done()
	log.Info("Shutting down...")

	if err := client.Close(); err != nil {
		log.Warn("Failed to close gateway", "error", err)
	}
	dispatcher.Wait()

	log.Info("roobot exited")
	return nil
}

// OpenDatabase connects and migrates the configured database.
func OpenDatabase(appCfg *config.Config) (*gorm.DB, error) {
	database, err := db.New(appCfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Database initialized", "driver", appCfg.Database.Driver)

	if err := db.Migrate(database); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")
	return database, nil
}

// Build wires every feature onto p and returns the message dispatcher.
func Build(appCfg *config.Config, database *gorm.DB, p Platform, history broadcast.History, log *slog.Logger) (*bot.Dispatcher, error) {
	policy, err := rbac.NewPolicy(database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize role policy: %w", err)
	}

	l := ledger.New(NewLedgerStore(appCfg, database))
	svc := roles.NewService(l, p, policy, audit.NewRecorder(database), log)

	pandas := panda.NewStore(database)
	counter := panda.NewCounter(appCfg.Panda.ThresholdMin, appCfg.Panda.ThresholdMax, nil)
	awarder := panda.NewAwarder(appCfg.Panda.ChannelID, appCfg.Panda.EmojiName, counter, pandas, p, log)

	partners := make([]broadcast.Partner, 0, len(appCfg.Partner.Channels))
	for _, ch := range appCfg.Partner.Channels {
		partners = append(partners, broadcast.Partner{Name: ch.Name, ChannelID: ch.ChannelID})
	}
	relay := broadcast.NewRelay(appCfg.Partner.AuthorizedUserID, partners, p, history, log)

	router := command.NewRouter(appCfg.Discord.Prefix, p, log)
	router.Register("role", command.NewRoleCommand(svc))
	router.Register("panda", command.NewPandaCommand(pandas, p, p, appCfg.Panda.EmojiName, log))
	router.Register("imitate", command.NewImitateCommand(p, p, log))
	router.Register("help", command.Help)
	router.Register("ping", command.Ping)
	log.Info("Commands registered", "commands", router.Names())

	return bot.NewDispatcher(router, relay, awarder, 0, log), nil
}

// NewLedgerStore returns the configured ledger backend.
func NewLedgerStore(appCfg *config.Config, database *gorm.DB) ledger.Store {
	if appCfg.Ledger.Backend == "file" {
		return ledger.NewFileStore(appCfg.Ledger.Path)
	}
	return ledger.NewGormStore(database)
}

// RunWithSignalHandling starts the bot and handles OS signals for graceful shutdown.
func RunWithSignalHandling(cfg Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Run bot in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, cfg)
	}()

	// Wait for signal or error
	select {
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig)
		cancel()
		// Wait for bot to finish
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// createHistory creates the broadcast history based on configuration.
func createHistory(cfg *config.Config) (broadcast.History, error) {
	switch cfg.Partner.History {
	case "memory":
		return broadcast.NewMemoryHistory(cfg.Partner.Keep), nil
	case "valkey":
		if cfg.Partner.ValkeyAddr == "" {
			return nil, fmt.Errorf("valkey address is required when partner history is valkey")
		}
		return broadcast.NewValkeyHistory(cfg.Partner.ValkeyAddr, cfg.Partner.Keep)
	default:
		return nil, fmt.Errorf("unsupported partner history: %s (supported: memory, valkey)", cfg.Partner.History)
	}
}
