package main

import (
	"fmt"
	"os"

	"github.com/rooclub/roobot/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to Discord and run the bot",
	Long: `Start the bot and keep it connected until interrupted.

Examples:
  roobot serve
  roobot serve --config /etc/roobot/config.yaml

Environment variables:
  DISCORD_TOKEN                 Bot token (or ROOBOT_DISCORD_TOKEN)
  ROOBOT_DATABASE_DRIVER        Database driver: sqlite, postgres
  ROOBOT_DATABASE_DSN           Database connection string
  ROOBOT_LEDGER_BACKEND         Ledger backend: database, file
  ROOBOT_PARTNER_HISTORY        Broadcast history: memory, valkey`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := server.Config{
		ConfigFile: configFile,
		Version:    Version,
	}

	if err := server.RunWithSignalHandling(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
