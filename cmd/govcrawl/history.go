package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/govcrawl/govcrawl/internal/config"
	"github.com/govcrawl/govcrawl/internal/database"
	"github.com/govcrawl/govcrawl/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past crawl runs or show one run in detail",
		Long: `History lists the crawl runs recorded in the local database, newest
first. Pass a run ID to show that run's full summary, including every
URL and its outcome.

Examples:
  # List all recorded runs
  govcrawl history

  # Show one run in detail
  govcrawl history 3

  # Machine-readable detail
  govcrawl history 3 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output run detail as JSON")
	cmd.Flags().Bool("delete", false, "Delete the given run instead of showing it")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if len(args) == 0 {
		return listRuns(cmd, db)
	}

	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID %q", args[0])
	}

	if del, _ := cmd.Flags().GetBool("delete"); del {
		if err := db.DeleteRun(cmd.Context(), runID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %d\n", runID)
		return nil
	}

	return showRun(cmd, db, runID)
}

// listRuns prints a table of all stored runs.
func listRuns(cmd *cobra.Command, db *database.CrawlDB) error {
	runs, err := db.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet. Run `govcrawl crawl` first.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"ID", "Started", "Duration", "Scope", "URLs", "Written", "Failed", "Status"})
	for _, run := range runs {
		status := "complete"
		if run.Cancelled {
			status = "cancelled"
		}
		t.AppendRow(table.Row{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second),
			run.Scope,
			run.Total,
			run.Written,
			run.Failed,
			status,
		})
	}
	t.Render()
	return nil
}

// showRun prints one run's full summary.
func showRun(cmd *cobra.Command, db *database.CrawlDB, runID int64) error {
	summary, err := db.GetRunSummary(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if summary == nil {
		return fmt.Errorf("run %d not found", runID)
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	}

	writer := report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(true))
	_, err = writer.Write(summary)
	return err
}
