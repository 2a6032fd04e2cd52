package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time
var Version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "roobot",
	Short: "Roobot - color roles, pandas and partner broadcasts for Discord",
	Long:  `Roobot runs the community Discord bot and inspects its stored state.`,
	Example: `  # Run the bot
  roobot serve --config ./config.yaml

  # Inspect and migrate color role ownership
  roobot ledger list --guild 123456789
  roobot ledger import ./data/roles.json`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./config.yaml or /etc/roobot/config.yaml)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "bot", Title: "Bot Commands:"},
		&cobra.Group{ID: "admin", Title: "Admin Commands:"},
	)

	serveCmd.GroupID = "bot"
	ledgerCmd.GroupID = "admin"
	auditCmd.GroupID = "admin"
	pandaCmd.GroupID = "admin"
	policyCmd.GroupID = "admin"

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(pandaCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
