package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSuggestCmd() *cobra.Command {
	var (
		ageGroup      string
		gender        string
		state         string
		minConfidence float64
		limit         int
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Scan a cohort for probable duplicate teams",
		Long: `Scan active teams for probable duplicates and print scored merge
candidates. Filters narrow the scanned pool; teams only pair within the
same age group and gender regardless of filters.

Examples:
  pitchctl suggest --age-group 2014 --gender boys --state CO
  pitchctl suggest --min-confidence 0.85 --limit 20 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd.Context(), ageGroup, gender, state, minConfidence, limit, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&ageGroup, "age-group", "", "Birth-year cohort, e.g. 2014")
	cmd.Flags().StringVar(&gender, "gender", "", "boys or girls")
	cmd.Flags().StringVar(&state, "state", "", "Two-letter state code")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "Minimum confidence (0 uses the server default)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum suggestions (0 uses the server default)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runSuggest(ctx context.Context, ageGroup, gender, state string, minConfidence float64, limit int, jsonOutput bool) error {
	client := newAPIClient(serverURL)
	report, err := client.suggestions(ctx, ageGroup, gender, state, minConfidence, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(report)
	}

	if len(report.Suggestions) == 0 {
		msg := report.Message
		if msg == "" {
			msg = "No merge suggestions above the confidence threshold."
		}
		fmt.Println(msg)
		fmt.Printf("Teams analyzed: %d\n", report.TeamsAnalyzed)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONFIDENCE\tTIER\tSOURCE\tTARGET\tSOURCE ID\tTARGET ID")
	for _, s := range report.Suggestions {
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\t%s\t%s\n",
			s.Confidence, s.Tier, s.SourceTeamName, s.TargetTeamName, s.SourceTeamID, s.TargetTeamID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d suggestion(s) from %d team(s) analyzed; %d pair(s) skipped as distinct squads\n",
		len(report.Suggestions), report.TeamsAnalyzed, report.SkippedDifferentTeams)
	fmt.Println(`Inspect a pair with "pitchctl team <id>", then merge with "pitchctl merge".`)
	return nil
}
