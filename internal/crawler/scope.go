package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmptyScope is returned when a scope prefix parses to nothing.
var ErrEmptyScope = errors.New("crawler: empty scope prefix")

// Scope bounds a crawl to one host, optionally narrowed to a path
// prefix. A URL is in scope when its host matches the scope host (or
// is a subdomain of it) and its path sits under the prefix.
type Scope struct {
	// Host is the lowercase scope host, e.g. "www.legislation.gov.uk".
	Host string
	// PathPrefix narrows the scope to paths under this prefix. Empty
	// means the whole host. Always starts with "/" when set.
	PathPrefix string
}

// ParseScope builds a Scope from a prefix string such as
// "www.legislation.gov.uk" or "https://www.gov.uk/guidance". A scheme
// is accepted and ignored; matching is on host and path only.
func ParseScope(prefix string) (Scope, error) {
	s := strings.TrimSpace(prefix)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if s == "" {
		return Scope{}, ErrEmptyScope
	}

	host, path, _ := strings.Cut(s, "/")
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return Scope{}, fmt.Errorf("%w: %q", ErrEmptyScope, prefix)
	}

	scope := Scope{Host: host}
	if path != "" {
		scope.PathPrefix = "/" + strings.Trim(path, "/")
	}
	return scope, nil
}

// ScopeFromURL derives the widest natural scope for a seed: its host
// with no path restriction.
func ScopeFromURL(rawURL string) (Scope, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Scope{}, fmt.Errorf("crawler: parse seed %q: %w", rawURL, err)
	}
	host := strings.ToLower(u.Hostname())
	if u.Port() != "" {
		host = host + ":" + u.Port()
	}
	if host == "" {
		return Scope{}, fmt.Errorf("crawler: seed %q has no host", rawURL)
	}
	return Scope{Host: host}, nil
}

// Contains reports whether the already-normalized URL is inside the
// scope. Malformed URLs are out of scope.
func (s Scope) Contains(normalizedURL string) bool {
	u, err := url.Parse(normalizedURL)
	if err != nil {
		return false
	}
	host := u.Host
	if host != s.Host && !strings.HasSuffix(host, "."+s.Host) {
		return false
	}
	if s.PathPrefix == "" {
		return true
	}
	path := u.Path
	if path == s.PathPrefix {
		return true
	}
	return strings.HasPrefix(path, s.PathPrefix+"/")
}

// String renders the scope in the form it was configured in.
func (s Scope) String() string {
	return s.Host + s.PathPrefix
}
