package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/govcrawl/govcrawl/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-URL listing in addition to the counts.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the per-URL record listing.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// titleCaser renders status names like "fetch_failed" as section
// headings.
var titleCaser = cases.Title(language.English)

func statusHeading(status string) string {
	return titleCaser.String(strings.ReplaceAll(status, "_", " "))
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.CrawlSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCounts(&sb, summary)
	w.writeFailures(&sb, summary)
	if w.verbose {
		w.writeRecords(&sb, summary)
	}

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         GOVCRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Scope:        %s\n", summary.Scope))
	sb.WriteString(fmt.Sprintf("Seeds:        %s\n", strings.Join(summary.Seeds, ", ")))
	sb.WriteString(fmt.Sprintf("Started:      %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:     %s\n", summary.Duration().Round(time.Millisecond)))

	if summary.Cancelled {
		sb.WriteString("Status:       CANCELLED (partial results)\n")
	} else {
		sb.WriteString("Status:       Complete\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCounts(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("URLs seen:    %d\n", summary.Total()))
	sb.WriteString(fmt.Sprintf("Written:      %d\n", summary.Written()))
	sb.WriteString(fmt.Sprintf("Failed:       %d\n", summary.Failed()))

	statuses := make([]string, 0, len(summary.Counts))
	for status := range summary.Counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		sb.WriteString(fmt.Sprintf("  %-18s %d\n", statusHeading(status)+":", summary.Counts[status]))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFailures(sb *strings.Builder, summary *model.CrawlSummary) {
	if len(summary.Failures) == 0 {
		return
	}

	sb.WriteString("FAILURES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	for _, f := range summary.Failures {
		sb.WriteString(fmt.Sprintf("[%s/%s] %s\n", f.Status, f.ErrorKind, f.URL))
		if f.Detail != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", f.Detail))
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRecords(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString("ALL URLS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	for _, rec := range summary.Records {
		sb.WriteString(fmt.Sprintf("%-15s %s\n", rec.Status.String(), rec.URL))
		if rec.ArtifactPath != "" {
			sb.WriteString(fmt.Sprintf("    -> %s\n", rec.ArtifactPath))
		}
	}
	sb.WriteString("\n")
}
