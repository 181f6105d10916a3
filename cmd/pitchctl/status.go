package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newTeamCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "team <team-id>",
		Short: "Show a registry team and its provider aliases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTeam(cmd.Context(), args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runTeam(ctx context.Context, teamID string, jsonOutput bool) error {
	client := newAPIClient(serverURL)
	detail, err := client.team(ctx, teamID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(detail)
	}

	team := detail.Team
	fmt.Printf("%s  (%s)\n", team.Name, team.ID)
	if team.ClubName != "" {
		fmt.Printf("  Club:      %s\n", team.ClubName)
	}
	fmt.Printf("  Cohort:    %s %s\n", team.AgeGroup, team.Gender)
	if team.State != "" {
		fmt.Printf("  State:     %s\n", team.State)
	}
	if team.Deprecated {
		fmt.Println("  Status:    deprecated (merged away)")
	} else {
		fmt.Println("  Status:    active")
	}

	if len(detail.Aliases) == 0 {
		fmt.Println("\nNo provider aliases point at this team.")
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tPROVIDER TEAM ID\tMETHOD\tCONFIDENCE")
	for _, alias := range detail.Aliases {
		confidence := "-"
		if alias.Confidence != nil {
			confidence = fmt.Sprintf("%.3f", *alias.Confidence)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", alias.Provider, alias.ProviderTeamID, alias.MatchMethod, confidence)
	}
	return w.Flush()
}

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status <team-id>",
		Short: "Show whether a team is active or merged away",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runStatus(ctx context.Context, teamID string, jsonOutput bool) error {
	client := newAPIClient(serverURL)
	status, err := client.mergeStatus(ctx, teamID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(status)
	}

	if !status.Deprecated {
		fmt.Printf("%q is active.\n", status.TeamName)
		return nil
	}

	if status.Merge == nil {
		// Deprecated with no edge happens mid-revert or after manual surgery.
		fmt.Printf("%q is deprecated but has no merge record.\n", status.TeamName)
		return nil
	}

	fmt.Printf("%q was merged into %q (%s)\n", status.TeamName, status.Merge.CanonicalTeamName, status.Merge.CanonicalTeamID)
	fmt.Printf("  By:       %s on %s\n", status.Merge.Operator, status.Merge.MergedAt.Format(time.RFC3339))
	if status.Merge.Reason != nil {
		fmt.Printf("  Reason:   %s\n", *status.Merge.Reason)
	}
	if status.Merge.Confidence != nil {
		fmt.Printf("  Confidence: %.3f\n", *status.Merge.Confidence)
	}
	fmt.Printf("  Merge ID: %s (undo with \"pitchctl revert %s\")\n", status.Merge.MergeID, status.Merge.MergeID)
	return nil
}
