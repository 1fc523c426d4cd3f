package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/govcrawl/govcrawl/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.CrawlSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounts(md, summary)
	w.writeFailures(md, summary)
	w.writeArtifacts(md, summary)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Scope", "`" + summary.Scope + "`"},
			{"Seeds", "`" + strings.Join(summary.Seeds, "`, `") + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration().String()},
			{"Status", w.statusText(summary)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) statusText(summary *model.CrawlSummary) string {
	if summary.Cancelled {
		return "⚠️ Cancelled (partial results)"
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H2("Summary")
	md.PlainText("")

	rows := [][]string{
		{"URLs seen", strconv.Itoa(summary.Total())},
		{"Written", strconv.Itoa(summary.Written())},
		{"Failed", strconv.Itoa(summary.Failed())},
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, summary *model.CrawlSummary) {
	if len(summary.Failures) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, 0, len(summary.Failures))
	for _, f := range summary.Failures {
		rows = append(rows, []string{"`" + f.URL + "`", f.Status, f.ErrorKind})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Error Kind"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeArtifacts(md *markdown.Markdown, summary *model.CrawlSummary) {
	var rows [][]string
	for _, rec := range summary.Records {
		if rec.Status != model.StatusWritten {
			continue
		}
		rows = append(rows, []string{"`" + rec.URL + "`", "`" + rec.ArtifactPath + "`"})
	}
	if len(rows) == 0 {
		return
	}

	md.H2("Artifacts")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"URL", "File"},
		Rows:   rows,
	})
}
