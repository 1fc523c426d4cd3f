// Package main provides the entry point for the govcrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for govcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "govcrawl",
		Short: "Archive the content of government websites",
		Long: `govcrawl crawls government websites from seed URLs and writes one
standalone HTML artifact per page, keeping only the data-bearing
content region of each page.

The crawl stays inside a configurable scope, fetches politely with a
per-host delay, retries transient failures, and records the outcome of
every URL in a local SQLite history.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
