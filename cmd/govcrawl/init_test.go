package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/govcrawl/govcrawl/internal/config"
)

func runInit(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewInitCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates config file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".govcrawl")

		out, err := runInit(t, "-o", path)
		if err != nil {
			t.Fatalf("init error = %v", err)
		}
		if !strings.Contains(out, "Created configuration file") {
			t.Errorf("unexpected output: %s", out)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("file mode = %o, want 0600", perm)
		}
	})

	t.Run("generated file loads cleanly", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".govcrawl")
		if _, err := runInit(t, "-o", path); err != nil {
			t.Fatal(err)
		}

		file, err := config.LoadConfigFile(path)
		if err != nil {
			t.Fatalf("generated config does not load: %v", err)
		}
		site := file.GetSiteConfig("www.legislation.gov.uk")
		if site.Rules == nil || len(site.Rules.ContentSelectors) == 0 {
			t.Error("legislation example lost its content selectors")
		}
		if len(site.UnavailableTexts) == 0 {
			t.Error("legislation example lost its unavailable markers")
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".govcrawl")
		if _, err := runInit(t, "-o", path); err != nil {
			t.Fatal(err)
		}

		if _, err := runInit(t, "-o", path); err == nil {
			t.Error("second init without -f succeeded")
		}
		if _, err := runInit(t, "-o", path, "-f"); err != nil {
			t.Errorf("init with -f failed: %v", err)
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
		if _, err := runInit(t, "-o", path); err != nil {
			t.Fatalf("init into nested path failed: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("nested config not created: %v", err)
		}
	})
}
