package extractor

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/govcrawl/govcrawl/internal/config"
	"github.com/govcrawl/govcrawl/internal/model"
)

// Extractor maps raw HTML to the normalized content subset defined by
// its selector rules.
type Extractor struct {
	rules config.ExtractionRules
}

// New creates an Extractor with the given selector rules.
func New(rules config.ExtractionRules) *Extractor {
	return &Extractor{rules: rules}
}

// Extract parses raw HTML and selects the configured content.
// It tolerates the malformed markup common on old government pages;
// only input that cannot be interpreted as HTML at all is rejected.
func (e *Extractor) Extract(pageURL string, raw []byte) (*model.ExtractedContent, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &Error{Kind: KindMalformed, URL: pageURL}
	}
	if !utf8.Valid(raw) {
		return nil, &Error{Kind: KindMalformed, URL: pageURL}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &Error{Kind: KindMalformed, URL: pageURL, Err: err}
	}

	content := &model.ExtractedContent{
		URL:   pageURL,
		Title: e.extractTitle(doc),
	}

	contentHTML, ok := e.extractContent(doc)
	if !ok {
		return nil, &Error{Kind: KindNoContent, URL: pageURL}
	}
	content.ContentHTML = contentHTML

	if meta := e.extractMetadata(doc); len(meta) > 0 {
		content.Metadata = meta
	}

	return content, nil
}

// extractTitle returns the text of the title selector's first match,
// falling back to og:title the way news pages often require.
func (e *Extractor) extractTitle(doc *goquery.Document) string {
	selector := e.rules.TitleSelector
	if selector == "" {
		selector = "title"
	}

	if title := strings.TrimSpace(doc.Find(selector).First().Text()); title != "" {
		return title
	}

	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		return strings.TrimSpace(ogTitle)
	}

	return ""
}

// extractContent tries the content selectors in order and returns the
// inner HTML of the first selector with a non-empty match.
func (e *Extractor) extractContent(doc *goquery.Document) (string, bool) {
	for _, selector := range e.rules.ContentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}

		// Strip elements that are never "the data".
		sel.Find("script, style, noscript").Remove()

		inner, err := sel.Html()
		if err != nil {
			continue
		}
		if strings.TrimSpace(sel.Text()) == "" && strings.TrimSpace(inner) == "" {
			continue
		}

		return strings.TrimSpace(inner), true
	}

	return "", false
}

// extractMetadata pulls the configured metadata fields. Meta elements
// contribute their content attribute; other elements their text.
func (e *Extractor) extractMetadata(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)

	for field, selector := range e.rules.MetadataSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}

		value := ""
		if content, exists := sel.Attr("content"); exists {
			value = content
		} else {
			value = sel.Text()
		}

		value = strings.TrimSpace(value)
		if value != "" {
			meta[field] = value
		}
	}

	return meta
}
