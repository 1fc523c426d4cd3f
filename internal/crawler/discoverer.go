package crawler

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// skippedSchemes lists href schemes that never lead to fetchable
// documents.
var skippedSchemes = map[string]struct{}{
	"mailto":     {},
	"javascript": {},
	"tel":        {},
	"data":       {},
	"ftp":        {},
}

// Discoverer extracts candidate links from fetched HTML. It resolves
// relative references against the page URL and drops anything that is
// not a plain http(s) document link; scope filtering happens later at
// the frontier.
type Discoverer struct{}

// NewDiscoverer returns a Discoverer.
func NewDiscoverer() *Discoverer {
	return &Discoverer{}
}

// Discover parses raw HTML and returns the absolute, normalized URLs
// of all anchor targets, deduplicated, in document order. The base URL
// must be the final URL of the fetched page so relative links resolve
// correctly after redirects. A page that cannot be parsed yields no
// links; discovery failures never fail the page.
func (d *Discoverer) Discover(pageURL string, raw []byte) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]struct{})
	for n := range root.Descendants() {
		if n.Type != html.ElementNode || n.Data != "a" {
			continue
		}
		href, ok := hrefAttr(n)
		if !ok {
			continue
		}
		normalized, ok := d.resolve(base, href)
		if !ok {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		links = append(links, normalized)
	}
	return links
}

// resolve turns one href into an absolute normalized URL, reporting
// false for fragments, non-document schemes and unparseable values.
func (d *Discoverer) resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if _, skip := skippedSchemes[strings.ToLower(ref.Scheme)]; skip {
		return "", false
	}
	abs := base.ResolveReference(ref)
	normalized, err := NormalizeURL(abs.String())
	if err != nil {
		return "", false
	}
	return normalized, true
}

func hrefAttr(n *html.Node) (string, bool) {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, "href") {
			return attr.Val, true
		}
	}
	return "", false
}
