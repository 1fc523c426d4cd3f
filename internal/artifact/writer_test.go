package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/govcrawl/govcrawl/internal/model"
)

func testContent(url string) *model.ExtractedContent {
	return &model.ExtractedContent{
		URL:         url,
		Title:       "Test Act 2024",
		ContentHTML: "<p>provision text</p>",
	}
}

// TestPath tests deterministic, collision-free path derivation.
func TestPath(t *testing.T) {
	t.Parallel()

	w := NewWriter("/out")

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		a := w.Path("https://www.legislation.gov.uk/ukpga/2018/12/data.html")
		b := w.Path("https://www.legislation.gov.uk/ukpga/2018/12/data.html")
		if a != b {
			t.Errorf("same URL produced different paths: %q vs %q", a, b)
		}
	})

	t.Run("distinct URLs get distinct paths", func(t *testing.T) {
		t.Parallel()

		urls := []string{
			"https://www.legislation.gov.uk/ukpga/2018/12",
			"https://www.legislation.gov.uk/ukpga/2018/13",
			"https://www.legislation.gov.uk/ukpga/2018/12?view=extent",
			// Same slug after sanitization, different URL.
			"https://www.legislation.gov.uk/ukpga/2018.12",
		}

		seen := make(map[string]string)
		for _, u := range urls {
			p := w.Path(u)
			if prev, dup := seen[p]; dup {
				t.Errorf("path collision: %q and %q both map to %q", prev, u, p)
			}
			seen[p] = u
		}
	})

	t.Run("groups by host with readable slug", func(t *testing.T) {
		t.Parallel()

		p := w.Path("https://www.legislation.gov.uk/ukpga/2018/12")
		if !strings.Contains(p, filepath.Join("/out", "www.legislation.gov.uk")) {
			t.Errorf("expected host directory in %q", p)
		}
		if !strings.Contains(p, "ukpga-2018-12") {
			t.Errorf("expected readable slug in %q", p)
		}
		if !strings.HasSuffix(p, ".html") {
			t.Errorf("expected .html suffix in %q", p)
		}
	})

	t.Run("root URL maps to index", func(t *testing.T) {
		t.Parallel()

		p := w.Path("https://www.legislation.gov.uk/")
		if !strings.Contains(filepath.Base(p), "index-") {
			t.Errorf("expected index slug for root URL, got %q", p)
		}
	})

	t.Run("long paths are capped", func(t *testing.T) {
		t.Parallel()

		long := "https://example.gov.uk/" + strings.Repeat("segment/", 60)
		base := filepath.Base(w.Path(long))
		if len(base) > maxSlugLen+14 { // slug + "-" + hash8 + ".html"
			t.Errorf("file name too long (%d): %q", len(base), base)
		}
	})
}

// TestWrite tests artifact writing.
func TestWrite(t *testing.T) {
	t.Parallel()

	t.Run("writes a valid standalone artifact", func(t *testing.T) {
		t.Parallel()

		w := NewWriter(t.TempDir())
		url := "https://www.legislation.gov.uk/ukpga/2018/12"

		path, err := w.Write(url, testContent(url))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path) //nolint:gosec // Test reads its own output
		if err != nil {
			t.Fatalf("failed to read artifact: %v", err)
		}

		text := string(data)
		if !strings.HasPrefix(text, "<!DOCTYPE html>") {
			t.Errorf("artifact is not a standalone document: %q", text[:40])
		}
		if !strings.Contains(text, "<title>Test Act 2024</title>") {
			t.Error("artifact missing title")
		}
		if !strings.Contains(text, "<p>provision text</p>") {
			t.Error("artifact missing content")
		}
	})

	t.Run("rewrite of same URL is idempotent", func(t *testing.T) {
		t.Parallel()

		w := NewWriter(t.TempDir())
		url := "https://www.legislation.gov.uk/ukpga/2018/12"

		path1, err := w.Write(url, testContent(url))
		if err != nil {
			t.Fatal(err)
		}
		first, err := os.ReadFile(path1) //nolint:gosec // Test reads its own output
		if err != nil {
			t.Fatal(err)
		}

		path2, err := w.Write(url, testContent(url))
		if err != nil {
			t.Fatal(err)
		}
		if path1 != path2 {
			t.Errorf("rewrite produced a different path: %q vs %q", path1, path2)
		}
		second, err := os.ReadFile(path2) //nolint:gosec // Test reads its own output
		if err != nil {
			t.Fatal(err)
		}

		if string(first) != string(second) {
			t.Error("expected byte-identical artifacts for identical content")
		}
	})

	t.Run("Exists reflects written artifacts", func(t *testing.T) {
		t.Parallel()

		w := NewWriter(t.TempDir())
		url := "https://www.legislation.gov.uk/ukpga/2018/12"

		if w.Exists(url) {
			t.Error("expected Exists false before write")
		}
		if _, err := w.Write(url, testContent(url)); err != nil {
			t.Fatal(err)
		}
		if !w.Exists(url) {
			t.Error("expected Exists true after write")
		}
	})

	t.Run("permission failure yields typed error", func(t *testing.T) {
		t.Parallel()

		if os.Geteuid() == 0 {
			t.Skip("running as root; permission checks do not apply")
		}

		dir := t.TempDir()
		hostDir := filepath.Join(dir, "www.legislation.gov.uk")
		if err := os.MkdirAll(hostDir, 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.Chmod(hostDir, 0550); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Chmod(hostDir, 0750) })

		w := NewWriter(dir)
		url := "https://www.legislation.gov.uk/ukpga/2018/12"

		_, err := w.Write(url, testContent(url))
		var writeErr *Error
		if !errors.As(err, &writeErr) {
			t.Fatalf("expected *Error, got %v", err)
		}
		if writeErr.Kind != KindPermission {
			t.Errorf("expected permission kind, got %s", writeErr.Kind)
		}
		if writeErr.Path == "" {
			t.Error("expected path in error")
		}
	})
}

// TestSlugify tests the slug sanitizer.
func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"ukpga/2018/12", "ukpga-2018-12"},
		{"UKPGA/2018", "ukpga-2018"},
		{"a b//c", "a-b-c"},
		{"data.html", "data.html"},
		{"", ""},
		{"///", ""},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
