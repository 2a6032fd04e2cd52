package main

import (
	"fmt"

	"github.com/rooclub/roobot/internal/config"
	"github.com/rooclub/roobot/internal/logger"
	"github.com/rooclub/roobot/internal/server"
	"gorm.io/gorm"
)

// openState loads config and the migrated database for admin commands.
// Admin output goes to stdout, so logs are kept to warnings.
func openState() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger.Init(cfg.Log.Format, "warn")
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "error"
	}
	database, err := server.OpenDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, database, nil
}
