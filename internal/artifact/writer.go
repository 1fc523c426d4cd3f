package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/govcrawl/govcrawl/internal/model"
)

// maxSlugLen caps the readable part of an artifact file name. The hash
// suffix carries the uniqueness, the slug only has to stay legible and
// below filesystem name limits.
const maxSlugLen = 120

// ErrorKind classifies write failures.
type ErrorKind int

// Write error kinds.
const (
	// KindPermission covers permission-denied failures.
	KindPermission ErrorKind = iota

	// KindDiskFull covers out-of-space failures.
	KindDiskFull

	// KindPathTooLong covers name/path length limit failures.
	KindPathTooLong

	// KindIO covers all other filesystem failures.
	KindIO
)

// String returns the snake_case name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindPermission:
		return "permission"
	case KindDiskFull:
		return "disk_full"
	case KindPathTooLong:
		return "path_too_long"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a typed write failure scoped to a single artifact.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Path is the artifact path that could not be written.
	Path string

	// Err is the underlying filesystem error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("write %s: %s: %v", e.Path, e.Kind, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Writer persists extracted content under a root directory, one HTML
// file per URL. It never touches the frontier and records failures per
// artifact rather than aborting the crawl.
type Writer struct {
	// dir is the artifact root directory.
	dir string
}

// NewWriter creates a Writer rooted at dir. The directory is expected
// to exist and be writable; startup validation checks that before any
// fetch happens.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Path returns the deterministic artifact path for a normalized URL:
//
//	<dir>/<host>/<path-slug>-<hash8>.html
//
// The slug keeps the path human-readable; the 8-hex-digit SHA-256
// prefix of the full normalized URL makes distinct URLs collide-free
// even when their slugs coincide (query strings, truncation).
func (w *Writer) Path(normalizedURL string) string {
	host := "unknown-host"
	slug := "index"

	if u, err := url.Parse(normalizedURL); err == nil && u.Host != "" {
		host = slugify(u.Host)
		if s := slugify(strings.TrimPrefix(u.Path, "/")); s != "" {
			slug = s
		}
	}

	sum := sha256.Sum256([]byte(normalizedURL))
	hash8 := hex.EncodeToString(sum[:])[:8]

	return filepath.Join(w.dir, host, slug+"-"+hash8+".html")
}

// Exists reports whether an artifact for the URL is already on disk.
// Used by skip-existing mode to resume an interrupted run.
func (w *Writer) Exists(normalizedURL string) bool {
	_, err := os.Stat(w.Path(normalizedURL))
	return err == nil
}

// Write serializes the content to the URL's artifact path and returns
// that path. The file handle is released before Write returns, even
// when the write fails midway.
func (w *Writer) Write(normalizedURL string, content *model.ExtractedContent) (string, error) {
	path := w.Path(normalizedURL)

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", classify(path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600) //nolint:gosec // Path is derived, not user input
	if err != nil {
		return "", classify(path, err)
	}

	_, writeErr := f.WriteString(content.Render())
	closeErr := f.Close()

	if writeErr != nil {
		return "", classify(path, writeErr)
	}
	if closeErr != nil {
		return "", classify(path, closeErr)
	}

	return path, nil
}

// slugify maps an arbitrary URL component to a filesystem-safe name:
// lowercase, with every run of unsafe characters collapsed to one '-'.
func slugify(s string) string {
	var sb strings.Builder
	lastDash := false

	for _, r := range strings.ToLower(s) {
		safe := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_'
		switch {
		case safe:
			sb.WriteRune(r)
			lastDash = false
		case !lastDash:
			sb.WriteByte('-')
			lastDash = true
		}
	}

	slug := strings.Trim(sb.String(), "-.")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-.")
	}
	return slug
}

// classify maps a filesystem error to a typed artifact error.
func classify(path string, err error) *Error {
	kind := KindIO
	switch {
	case errors.Is(err, os.ErrPermission):
		kind = KindPermission
	case errors.Is(err, syscall.ENOSPC):
		kind = KindDiskFull
	case errors.Is(err, syscall.ENAMETOOLONG):
		kind = KindPathTooLong
	}
	return &Error{Kind: kind, Path: path, Err: err}
}
