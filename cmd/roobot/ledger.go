package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rooclub/roobot/internal/ledger"
	"github.com/rooclub/roobot/internal/server"
	"github.com/spf13/cobra"
)

var ledgerGuild string

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and migrate color role ownership",
}

var ledgerListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List color roles of a guild",
	Long: `List the color roles recorded for a guild, in creation order.

Examples:
  roobot ledger list --guild 123456789`,
	Args: cobra.NoArgs,
	RunE: runLedgerList,
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show <role-id>",
	Short: "Show one color role of a guild",
	Long: `Show the recorded name, colors and owner of a role.

Examples:
  roobot ledger show 987654321 --guild 123456789`,
	Args: cobra.ExactArgs(1),
	RunE: runLedgerShow,
}

var ledgerImportCmd = &cobra.Command{
	Use:   "import <roles.json>",
	Short: "Import a legacy roles.json ledger",
	Long: `Import color roles from the legacy whole-file ledger, keyed by guild then role id.
Roles already known to the ledger are left untouched.

Examples:
  roobot ledger import ./data/roles.json`,
	Args: cobra.ExactArgs(1),
	RunE: runLedgerImport,
}

func init() {
	ledgerListCmd.Flags().StringVarP(&ledgerGuild, "guild", "g", "", "Guild ID")
	_ = ledgerListCmd.MarkFlagRequired("guild")
	ledgerShowCmd.Flags().StringVarP(&ledgerGuild, "guild", "g", "", "Guild ID")
	_ = ledgerShowCmd.MarkFlagRequired("guild")

	ledgerCmd.AddCommand(ledgerListCmd)
	ledgerCmd.AddCommand(ledgerShowCmd)
	ledgerCmd.AddCommand(ledgerImportCmd)
}

func openLedger() (*ledger.Ledger, error) {
	cfg, database, err := openState()
	if err != nil {
		return nil, err
	}
	return ledger.New(server.NewLedgerStore(cfg, database)), nil
}

func runLedgerList(cmd *cobra.Command, args []string) error {
	l, err := openLedger()
	if err != nil {
		return err
	}

	roles, err := l.List(context.Background(), ledgerGuild)
	if err != nil {
		return fmt.Errorf("listing roles: %w", err)
	}
	if len(roles) == 0 {
		fmt.Fprintln(os.Stderr, "No color roles recorded for this guild.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE ID\tNAME\tCOLOR\tOWNER")
	for _, r := range roles {
		color := r.PrimaryColor
		if r.IsGradient() {
			color += " -> " + r.SecondaryColor
		}
		owner := r.OwnerID
		if owner == "" {
			owner = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.RoleID, r.Name, color, owner)
	}
	return w.Flush()
}

func runLedgerShow(cmd *cobra.Command, args []string) error {
	l, err := openLedger()
	if err != nil {
		return err
	}

	r, ok, err := l.Get(context.Background(), ledgerGuild, args[0])
	if err != nil {
		return fmt.Errorf("reading role: %w", err)
	}
	if !ok {
		return fmt.Errorf("role %s is not recorded for guild %s", args[0], ledgerGuild)
	}

	owner := r.OwnerID
	if owner == "" {
		owner = "Unassigned"
	}
	fmt.Printf("Role:    %s\n", r.RoleID)
	fmt.Printf("Name:    %s\n", r.Name)
	if r.IsGradient() {
		fmt.Printf("Colors:  %s -> %s (gradient)\n", r.PrimaryColor, r.SecondaryColor)
	} else {
		fmt.Printf("Color:   %s\n", r.PrimaryColor)
	}
	fmt.Printf("Owner:   %s\n", owner)
	return nil
}

func runLedgerImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	defer f.Close()

	guilds, err := parseLegacyLedger(f)
	if err != nil {
		return err
	}

	l, err := openLedger()
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, g := range guilds {
		added, err := l.Import(ctx, g.GuildID, g.Roles)
		if err != nil {
			return fmt.Errorf("importing guild %s: %w", g.GuildID, err)
		}
		fmt.Fprintf(os.Stderr, "Guild %s: imported %d of %d roles\n", g.GuildID, added, len(g.Roles))
	}
	return nil
}
