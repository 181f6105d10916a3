package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pitchrank/pitchrank-engine/pkg/handlers"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history [team-id]",
		Short: "Show the merge audit ledger",
		Long: `Show merge and revert entries from the audit ledger, newest first.
With a team ID, only entries touching that team are shown; without one,
the most recent entries across the whole registry.

Examples:
  pitchctl history
  pitchctl history 7f1f3c5a-... --limit 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			teamID := ""
			if len(args) == 1 {
				teamID = args[0]
			}
			return runHistory(cmd.Context(), teamID, limit, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries (0 uses the server default)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runHistory(ctx context.Context, teamID string, limit int, jsonOutput bool) error {
	client := newAPIClient(serverURL)

	var (
		list *handlers.AuditListResponse
		err  error
	)
	if teamID != "" {
		list, err = client.teamHistory(ctx, teamID, limit)
	} else {
		list, err = client.recentAudit(ctx, limit)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(list)
	}

	if len(list.Entries) == 0 {
		fmt.Println("No ledger entries.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tDEPRECATED\tCANONICAL\tOPERATOR\tREVERTED")
	for _, entry := range list.Entries {
		reverted := ""
		if entry.Reverted() {
			reverted = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.CreatedAt.Format(time.RFC3339), entry.Action,
			entry.DeprecatedTeamID, entry.CanonicalTeamID,
			entry.Operator, reverted)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d entries shown.\n", len(list.Entries))
	return nil
}
