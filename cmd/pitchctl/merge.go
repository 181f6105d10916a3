package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pitchrank/pitchrank-engine/pkg/handlers"
)

func newMergeCmd() *cobra.Command {
	var (
		operator   string
		reason     string
		confidence float64
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "merge <deprecated-team-id> <canonical-team-id>",
		Short: "Fold a duplicate team into its canonical record",
		Long: `Execute a merge: the deprecated team's provider aliases repoint to the
canonical team and the deprecated team leaves ranking. The merge is
recorded in the audit ledger and can be undone with pitchctl revert.

Examples:
  pitchctl merge 7f1f3c5a-... 8a2b4d6c-... --operator lee@pitchrank.io
  pitchctl merge 7f1f3c5a-... 8a2b4d6c-... --operator lee@pitchrank.io \
      --reason "same roster imported twice" --confidence 0.94`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd.Context(), args[0], args[1], operator, reason, confidence, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&operator, "operator", "", "Who is executing the merge (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "Why these records are the same team")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Scan confidence backing this merge")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	_ = cmd.MarkFlagRequired("operator")

	return cmd
}

func runMerge(ctx context.Context, deprecatedID, canonicalID, operator, reason string, confidence float64, jsonOutput bool) error {
	req := handlers.MergeTeamsRequest{
		DeprecatedTeamID: deprecatedID,
		CanonicalTeamID:  canonicalID,
		Operator:         operator,
	}
	if reason != "" {
		req.Reason = &reason
	}
	if confidence > 0 {
		req.Confidence = &confidence
	}

	client := newAPIClient(serverURL)
	result, err := client.merge(ctx, req)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}

	fmt.Println(result.Summary)
	fmt.Printf("Merge ID: %s (undo with \"pitchctl revert %s\")\n", result.MergeID, result.MergeID)
	return nil
}

func newRevertCmd() *cobra.Command {
	var (
		operator   string
		reason     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "revert <merge-id>",
		Short: "Undo a recorded merge",
		Long: `Revert a merge from the audit ledger: the deprecated team returns to
active status and the provider aliases it brought are repointed back.
Aliases attached to the canonical team after the merge stay put.

Example:
  pitchctl revert 9c3d5e7f-... --operator lee@pitchrank.io --reason "merged the wrong pair"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRevert(cmd.Context(), args[0], operator, reason, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&operator, "operator", "", "Who is reverting the merge (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the merge was wrong")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	_ = cmd.MarkFlagRequired("operator")

	return cmd
}

func runRevert(ctx context.Context, mergeID, operator, reason string, jsonOutput bool) error {
	req := handlers.RevertMergeRequest{
		Operator: operator,
	}
	if reason != "" {
		req.Reason = &reason
	}

	client := newAPIClient(serverURL)
	result, err := client.revert(ctx, mergeID, req)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}

	fmt.Println(result.Summary)
	fmt.Printf("Aliases restored: %d\n", result.AliasesRestored)
	return nil
}
