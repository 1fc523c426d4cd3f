package crawler

import (
	"errors"
	"testing"
)

func TestParseScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		want   Scope
	}{
		{
			name:   "bare host",
			prefix: "www.legislation.gov.uk",
			want:   Scope{Host: "www.legislation.gov.uk"},
		},
		{
			name:   "scheme is ignored",
			prefix: "https://www.gov.uk",
			want:   Scope{Host: "www.gov.uk"},
		},
		{
			name:   "host with path prefix",
			prefix: "www.gov.uk/guidance",
			want:   Scope{Host: "www.gov.uk", PathPrefix: "/guidance"},
		},
		{
			name:   "trailing slash trimmed",
			prefix: "www.gov.uk/guidance/",
			want:   Scope{Host: "www.gov.uk", PathPrefix: "/guidance"},
		},
		{
			name:   "host lowercased",
			prefix: "WWW.Legislation.GOV.UK",
			want:   Scope{Host: "www.legislation.gov.uk"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseScope(tt.prefix)
			if err != nil {
				t.Fatalf("ParseScope(%q) error = %v", tt.prefix, err)
			}
			if got != tt.want {
				t.Errorf("ParseScope(%q) = %+v, want %+v", tt.prefix, got, tt.want)
			}
		})
	}

	t.Run("empty prefix", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseScope("  "); !errors.Is(err, ErrEmptyScope) {
			t.Errorf("ParseScope error = %v, want ErrEmptyScope", err)
		}
	})
}

func TestScopeContains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		scope Scope
		url   string
		want  bool
	}{
		{
			name:  "same host",
			scope: Scope{Host: "www.gov.uk"},
			url:   "https://www.gov.uk/guidance",
			want:  true,
		},
		{
			name:  "subdomain of scope host",
			scope: Scope{Host: "gov.uk"},
			url:   "https://www.legislation.gov.uk/ukpga/2010/15",
			want:  true,
		},
		{
			name:  "different host",
			scope: Scope{Host: "www.gov.uk"},
			url:   "https://external.example.com/page",
			want:  false,
		},
		{
			name:  "host suffix without dot boundary",
			scope: Scope{Host: "gov.uk"},
			url:   "https://notgov.uk/page",
			want:  false,
		},
		{
			name:  "path inside prefix",
			scope: Scope{Host: "www.gov.uk", PathPrefix: "/guidance"},
			url:   "https://www.gov.uk/guidance/tax",
			want:  true,
		},
		{
			name:  "path equals prefix",
			scope: Scope{Host: "www.gov.uk", PathPrefix: "/guidance"},
			url:   "https://www.gov.uk/guidance",
			want:  true,
		},
		{
			name:  "path outside prefix",
			scope: Scope{Host: "www.gov.uk", PathPrefix: "/guidance"},
			url:   "https://www.gov.uk/news/latest",
			want:  false,
		},
		{
			name:  "prefix is not a path-segment match",
			scope: Scope{Host: "www.gov.uk", PathPrefix: "/guidance"},
			url:   "https://www.gov.uk/guidance-archive",
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.scope.Contains(tt.url); got != tt.want {
				t.Errorf("Scope%+v.Contains(%q) = %v, want %v", tt.scope, tt.url, got, tt.want)
			}
		})
	}
}

func TestScopeFromURL(t *testing.T) {
	t.Parallel()

	scope, err := ScopeFromURL("http://localhost:8080/ukpga/2010/15")
	if err != nil {
		t.Fatal(err)
	}
	if scope.Host != "localhost:8080" {
		t.Errorf("Host = %q, want %q", scope.Host, "localhost:8080")
	}
	if scope.PathPrefix != "" {
		t.Errorf("PathPrefix = %q, want empty", scope.PathPrefix)
	}

	if _, err := ScopeFromURL("not a url\x7f://"); err == nil {
		t.Error("ScopeFromURL accepted a malformed URL")
	}
}
