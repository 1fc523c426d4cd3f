package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnsupportedScheme is returned when a URL uses a scheme other than
// http or https.
var ErrUnsupportedScheme = errors.New("crawler: unsupported URL scheme")

// NormalizeURL canonicalizes rawURL so that trivially different
// spellings of the same resource map to one frontier key:
//   - scheme and host are lowercased
//   - the fragment is dropped
//   - a default port (:80 for http, :443 for https) is stripped
//   - an empty path becomes "/"
//   - query parameters are re-encoded in sorted key order
//
// Only absolute http and https URLs are accepted.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("crawler: parse URL %q: %w", rawURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, rawURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("crawler: URL %q has no host", rawURL)
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	host, port, ok := strings.Cut(u.Host, ":")
	if ok {
		if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
			u.Host = host
		}
	}

	if u.Path == "" {
		u.Path = "/"
	}

	// url.Values.Encode sorts by key, which makes the query order
	// deterministic regardless of how the author wrote the link.
	if u.RawQuery != "" {
		u.RawQuery = u.Query().Encode()
	}

	return u.String(), nil
}
