package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rooclub/roobot/internal/rbac"
	"github.com/spf13/cobra"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect role authorization rules",
}

var policyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List authorization rules",
	Long: `List the stored authorization rules. The defaults are seeded on first start.

Examples:
  roobot policy list`,
	Args: cobra.NoArgs,
	RunE: runPolicyList,
}

func init() {
	policyCmd.AddCommand(policyListCmd)
}

func runPolicyList(cmd *cobra.Command, args []string) error {
	_, database, err := openState()
	if err != nil {
		return err
	}
	policy, err := rbac.NewPolicy(database, slog.Default())
	if err != nil {
		return fmt.Errorf("loading policy: %w", err)
	}
	rules, err := policy.Rules()
	if err != nil {
		return fmt.Errorf("listing rules: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tRULE")
	for _, r := range rules {
		if len(r) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", r[0], strings.Join(r[1:], ", "))
	}
	return w.Flush()
}
