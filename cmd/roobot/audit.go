package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rooclub/roobot/internal/audit"
	"github.com/spf13/cobra"
)

var (
	auditGuild string
	auditLimit int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect color role changes",
}

var auditListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent color role changes of a guild",
	Long: `List recent color role changes, newest first.

Examples:
  roobot audit list --guild 123456789
  roobot audit list --guild 123456789 --limit 50`,
	Args: cobra.NoArgs,
	RunE: runAuditList,
}

func init() {
	auditListCmd.Flags().StringVarP(&auditGuild, "guild", "g", "", "Guild ID")
	auditListCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "Maximum number of entries")
	_ = auditListCmd.MarkFlagRequired("guild")

	auditCmd.AddCommand(auditListCmd)
}

func runAuditList(cmd *cobra.Command, args []string) error {
	_, database, err := openState()
	if err != nil {
		return err
	}

	entries, err := audit.NewRecorder(database).Recent(context.Background(), auditGuild, auditLimit)
	if err != nil {
		return fmt.Errorf("listing audit log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No changes recorded for this guild.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTOR\tACTION\tRESOURCE\tDETAILS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format(time.DateTime), e.ActorID, e.Action, e.Resource, e.DetailsJSON)
	}
	return w.Flush()
}
