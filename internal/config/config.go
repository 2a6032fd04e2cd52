package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Discord  DiscordConfig  `mapstructure:"discord"`
	Database DatabaseConfig `mapstructure:"database"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Roles    RolesConfig    `mapstructure:"roles"`
	Panda    PandaConfig    `mapstructure:"panda"`
	Partner  PartnerConfig  `mapstructure:"partner"`
	Log      LogConfig      `mapstructure:"log"`
}

// DiscordConfig holds gateway credentials and the command prefix
type DiscordConfig struct {
	Token  string `mapstructure:"token"`
	Prefix string `mapstructure:"prefix"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`            // "sqlite" or "postgres"
	DSN             string `mapstructure:"dsn"`               // Connection string
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // Maximum idle connections (Postgres)
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // Maximum open connections (Postgres)
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // Connection max lifetime in minutes (Postgres)
	LogLevel        string `mapstructure:"log_level"`         // gorm logger level, defaults to log.level
}

// LedgerConfig selects where color role ownership is persisted
type LedgerConfig struct {
	Backend string `mapstructure:"backend"` // "database" or "file"
	Path    string `mapstructure:"path"`    // JSON file path (if backend=file)
}

// RolesConfig holds color role settings
type RolesConfig struct {
	SeparatorRoleID string `mapstructure:"separator_role_id"` // New roles are placed right below this role
}

// PandaConfig holds the passive message reward settings
type PandaConfig struct {
	ChannelID    string `mapstructure:"channel_id"`
	EmojiName    string `mapstructure:"emoji_name"`
	ThresholdMin int    `mapstructure:"threshold_min"`
	ThresholdMax int    `mapstructure:"threshold_max"`
}

// PartnerChannel is one broadcast destination
type PartnerChannel struct {
	Name      string `mapstructure:"name"`
	ChannelID string `mapstructure:"channel_id"`
}

// PartnerConfig holds the DM broadcast relay settings
type PartnerConfig struct {
	AuthorizedUserID string           `mapstructure:"authorized_user_id"`
	Channels         []PartnerChannel `mapstructure:"channels"`
	History          string           `mapstructure:"history"`     // "memory" or "valkey"
	ValkeyAddr       string           `mapstructure:"valkey_addr"` // Valkey address (if history=valkey)
	Keep             int              `mapstructure:"keep"`        // Sent message ids remembered per channel
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string `mapstructure:"format"` // "json" or "text"
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
}

// Load reads configuration from file and environment variables.
// An empty configFile searches ./config.yaml and /etc/roobot/config.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("discord.token", "")
	v.SetDefault("discord.prefix", "!")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./roobot.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60) // 60 minutes
	v.SetDefault("database.log_level", "")
	v.SetDefault("ledger.backend", "database")
	v.SetDefault("ledger.path", "./data/roles.json")
	v.SetDefault("roles.separator_role_id", "")
	v.SetDefault("panda.channel_id", "")
	v.SetDefault("panda.emoji_name", "SN_RooHappi")
	v.SetDefault("panda.threshold_min", 30)
	v.SetDefault("panda.threshold_max", 40)
	v.SetDefault("partner.authorized_user_id", "")
	v.SetDefault("partner.history", "memory")
	v.SetDefault("partner.valkey_addr", "localhost:6379")
	v.SetDefault("partner.keep", 3)
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/roobot/")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, using defaults
	}

	// Environment variables override
	v.SetEnvPrefix("ROOBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("discord.token", "ROOBOT_DISCORD_TOKEN", "DISCORD_TOKEN"); err != nil {
		return nil, fmt.Errorf("error binding token env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the bot cannot start with.
func (c *Config) Validate() error {
	switch c.Ledger.Backend {
	case "database", "file":
	default:
		return fmt.Errorf("unsupported ledger backend: %s", c.Ledger.Backend)
	}
	switch c.Partner.History {
	case "memory", "valkey":
	default:
		return fmt.Errorf("unsupported partner history: %s", c.Partner.History)
	}
	if c.Panda.ThresholdMin <= 0 || c.Panda.ThresholdMax < c.Panda.ThresholdMin {
		return fmt.Errorf("invalid panda thresholds: min=%d max=%d", c.Panda.ThresholdMin, c.Panda.ThresholdMax)
	}
	if c.Partner.Keep <= 0 {
		return fmt.Errorf("partner.keep must be positive, got %d", c.Partner.Keep)
	}
	return nil
}
