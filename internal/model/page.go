package model

import (
	"strings"
)

// MaxPageSize is the default cap on raw page content kept in memory,
// used when no explicit body size limit is configured.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// Page represents one fetched page during a crawl.
// It exists only for the duration of processing a single URL: the raw
// body is handed from the fetcher to the extractor and discarded once
// the artifact is written.
type Page struct {
	// URL is the normalized absolute URL the page was fetched from.
	URL string

	// StatusCode is the HTTP response status code.
	StatusCode int

	// ContentType is the MIME type from the Content-Type header.
	ContentType string

	// Attempts is the number of fetch attempts it took to retrieve
	// the page, including the successful one.
	Attempts int

	// Headers contains the HTTP response headers.
	Headers map[string][]string

	// Raw is the response body, capped at the configured body size
	// limit.
	Raw []byte
}

// GetHeader returns the first value of the named header, or "" if absent.
// Go's http package canonicalizes header names, so lookups use the
// canonical form.
func (p *Page) GetHeader(name string) string {
	if values, ok := p.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// IsHTML reports whether the page content type indicates HTML.
func (p *Page) IsHTML() bool {
	return strings.HasPrefix(p.ContentType, "text/html") ||
		strings.HasPrefix(p.ContentType, "application/xhtml+xml")
}

// TruncateRaw caps the raw body at limit bytes. A non-positive limit
// falls back to MaxPageSize. Call this after setting Raw.
func (p *Page) TruncateRaw(limit int64) {
	if limit <= 0 {
		limit = MaxPageSize
	}
	if int64(len(p.Raw)) > limit {
		p.Raw = p.Raw[:limit]
	}
}

// ExtractedContent is the normalized subset of a page judged to be
// "the data": a title, the selected content region as HTML, and any
// configured metadata fields. It is always representable as a valid,
// self-contained HTML document via its Render method.
type ExtractedContent struct {
	// URL is the page the content was extracted from.
	URL string `json:"url"`

	// Title is the page title, from the configured title selector.
	Title string `json:"title"`

	// ContentHTML is the selected main content as HTML markup.
	ContentHTML string `json:"content_html"`

	// Metadata holds named fields pulled by the configured metadata
	// selectors (e.g., description, author). Keys are the configured
	// field names.
	Metadata map[string]string `json:"metadata,omitempty"`
}
