package model

import (
	"html"
	"sort"
	"strings"
)

// Render serializes the extracted content as a self-contained HTML
// document, so every artifact is independently viewable in a browser.
// The output is deterministic for identical content: metadata keys are
// emitted in sorted order and no timestamps are included, which keeps
// re-crawls of an unchanged page byte-identical.
func (c *ExtractedContent) Render() string {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")

	keys := make([]string, 0, len(c.Metadata))
	for k := range c.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString("<meta name=\"")
		sb.WriteString(html.EscapeString(k))
		sb.WriteString("\" content=\"")
		sb.WriteString(html.EscapeString(c.Metadata[k]))
		sb.WriteString("\">\n")
	}

	sb.WriteString("<link rel=\"canonical\" href=\"")
	sb.WriteString(html.EscapeString(c.URL))
	sb.WriteString("\">\n")

	sb.WriteString("<title>")
	sb.WriteString(html.EscapeString(c.Title))
	sb.WriteString("</title>\n</head>\n<body>\n")

	sb.WriteString(c.ContentHTML)

	sb.WriteString("\n</body>\n</html>\n")

	return sb.String()
}
