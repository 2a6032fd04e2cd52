package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rooclub/roobot/internal/panda"
	"github.com/spf13/cobra"
)

var (
	pandaGuild string
	pandaLimit int
)

var pandaCmd = &cobra.Command{
	Use:   "panda",
	Short: "Inspect panda rewards",
}

var pandaTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the panda leaderboard of a guild",
	Long: `Show the members holding the most pandas and the guild total.

Examples:
  roobot panda top --guild 123456789
  roobot panda top --guild 123456789 --limit 25`,
	Args: cobra.NoArgs,
	RunE: runPandaTop,
}

func init() {
	pandaTopCmd.Flags().StringVarP(&pandaGuild, "guild", "g", "", "Guild ID")
	pandaTopCmd.Flags().IntVarP(&pandaLimit, "limit", "n", 10, "Maximum number of members")
	_ = pandaTopCmd.MarkFlagRequired("guild")

	pandaCmd.AddCommand(pandaTopCmd)
}

func runPandaTop(cmd *cobra.Command, args []string) error {
	_, database, err := openState()
	if err != nil {
		return err
	}
	store := panda.NewStore(database)
	ctx := context.Background()

	board, err := store.Leaderboard(ctx, pandaGuild, pandaLimit)
	if err != nil {
		return err
	}
	if len(board) == 0 {
		fmt.Fprintln(os.Stderr, "No pandas collected in this guild yet.")
		return nil
	}
	total, err := store.Total(ctx, pandaGuild)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tUSER ID\tUSERNAME\tPANDAS")
	for i, e := range board {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", i+1, e.UserID, e.Username, e.Count)
	}
	fmt.Fprintf(w, "\t\tTOTAL\t%d\n", total)
	return w.Flush()
}
