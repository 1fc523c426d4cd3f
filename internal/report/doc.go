// Package report renders a finished crawl summary in several output
// formats: human-readable text for the terminal, JSON for tool
// integration, and Markdown for documentation.
package report
