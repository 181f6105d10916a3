// Package main provides pitchctl, the operator CLI for pitchrank-engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// serverURL is the engine base URL, shared by every subcommand.
var serverURL string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pitchctl",
		Short: "Operator CLI for the pitchrank team registry",
		Long: `pitchctl drives the pitchrank-engine merge workflow: scan a cohort for
probable duplicate teams, execute operator-confirmed merges, and revert
mistakes from the audit ledger.

The engine address comes from --server or the PITCHRANK_SERVER
environment variable.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "Base URL of the pitchrank-engine API")

	cmd.AddCommand(newSuggestCmd())
	cmd.AddCommand(newMergeCmd())
	cmd.AddCommand(newRevertCmd())
	cmd.AddCommand(newTeamCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}

func defaultServerURL() string {
	if v := os.Getenv("PITCHRANK_SERVER"); v != "" {
		return v
	}
	return "http://localhost:8090"
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
