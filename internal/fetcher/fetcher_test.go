package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/govcrawl/govcrawl/internal/model"
)

// testFetcher returns a Fetcher with no backoff for fast tests.
func testFetcher(opts ...Option) *Fetcher {
	base := []Option{WithBackoff(0), WithMaxRetries(3)}
	return New(5*time.Second, 10, append(base, opts...)...)
}

// TestFetchSuccess tests a plain successful fetch.
func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "govcrawl-test/1.0" {
			t.Errorf("unexpected user agent %q", ua)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><head><title>OK</title></head><body>data</body></html>")
	}))
	defer srv.Close()

	f := testFetcher(WithUserAgent("govcrawl-test/1.0"))

	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", page.StatusCode)
	}
	if !page.IsHTML() {
		t.Errorf("expected HTML content type, got %q", page.ContentType)
	}
	if len(page.Raw) == 0 {
		t.Error("expected non-empty body")
	}
	if page.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", page.Attempts)
	}
}

// TestFetchRetriesOn503 tests that a persistent 503 produces exactly
// maxRetries attempts and then a terminal http_status error.
func TestFetchRetriesOn503(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := testFetcher(WithMaxRetries(3))

	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if fetchErr.Kind != KindHTTPStatus {
		t.Errorf("expected http_status kind, got %s", fetchErr.Kind)
	}
	if fetchErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", fetchErr.StatusCode)
	}
	if fetchErr.Attempts != 3 {
		t.Errorf("expected 3 recorded attempts, got %d", fetchErr.Attempts)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("expected server to see 3 requests, got %d", got)
	}
}

// TestFetchRecoversAfterTransientFailure tests that a 5xx followed by
// a 200 succeeds within the retry bound.
func TestFetchRecoversAfterTransientFailure(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "<html><body>recovered</body></html>")
	}))
	defer srv.Close()

	f := testFetcher()

	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", page.StatusCode)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
	if page.Attempts != 3 {
		t.Errorf("expected page to record 3 attempts, got %d", page.Attempts)
	}
}

// TestFetchBodySizeLimit tests that the configured body size limit is
// the only cap applied to the response body.
func TestFetchBodySizeLimit(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("x", 1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	t.Run("small limit truncates", func(t *testing.T) {
		t.Parallel()

		f := testFetcher(WithMaxBodySize(64))
		page, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Raw) != 64 {
			t.Errorf("expected 64 bytes, got %d", len(page.Raw))
		}
	})

	t.Run("large limit keeps full body", func(t *testing.T) {
		t.Parallel()

		f := testFetcher(WithMaxBodySize(model.MaxPageSize * 2))
		page, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Raw) != len(body) {
			t.Errorf("expected %d bytes, got %d", len(body), len(page.Raw))
		}
	})
}

// TestFetch404IsTerminal tests that a 404 is not retried.
func TestFetch404IsTerminal(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := testFetcher()

	_, err := f.Fetch(context.Background(), srv.URL)
	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if fetchErr.Kind != KindHTTPStatus || fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("unexpected error: %+v", fetchErr)
	}
	if fetchErr.Attempts != 1 {
		t.Errorf("expected 1 attempt for 404, got %d", fetchErr.Attempts)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("expected server to see 1 request, got %d", got)
	}
}

// TestFetchUnavailableMarker tests sentinel body text detection.
func TestFetchUnavailableMarker(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body>The page you requested could not be found.</body></html>")
	}))
	defer srv.Close()

	f := testFetcher(WithUnavailableTexts([]string{"could not be found"}))

	_, err := f.Fetch(context.Background(), srv.URL)
	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if fetchErr.Kind != KindUnavailable {
		t.Errorf("expected unavailable kind, got %s", fetchErr.Kind)
	}
	if fetchErr.Attempts != 1 {
		t.Errorf("expected no retries for unavailable page, got %d attempts", fetchErr.Attempts)
	}
}

// TestFetchRedirectLimit tests that redirect loops are cut off.
func TestFetchRedirectLimit(t *testing.T) {
	t.Parallel()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Redirect to self forever.
		http.Redirect(w, r, srv.URL+r.URL.Path, http.StatusFound)
	}))
	defer srv.Close()

	f := New(5*time.Second, 3, WithBackoff(0))

	_, err := f.Fetch(context.Background(), srv.URL+"/loop")
	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if fetchErr.Kind != KindTooManyRedirects {
		t.Errorf("expected too_many_redirects kind, got %s", fetchErr.Kind)
	}
}

// TestFetchTimeout tests that a slow server yields a timeout error kind.
func TestFetchTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, "too late")
	}))
	defer srv.Close()

	f := New(50*time.Millisecond, 10, WithBackoff(0), WithMaxRetries(2))

	_, err := f.Fetch(context.Background(), srv.URL)
	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if fetchErr.Kind != KindTimeout {
		t.Errorf("expected timeout kind, got %s", fetchErr.Kind)
	}
	if fetchErr.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", fetchErr.Attempts)
	}
}

// TestFetchSendsSiteHeaders tests per-site headers and cookies.
func TestFetchSendsSiteHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Custom") != "yes" {
			t.Errorf("missing custom header")
		}
		if r.Header.Get("Cookie") != "session=abc" {
			t.Errorf("missing cookie, got %q", r.Header.Get("Cookie"))
		}
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	f := testFetcher(
		WithHeaders(map[string]string{"X-Custom": "yes"}),
		WithCookie("session=abc"),
	)

	if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestErrorKindString tests the kind names used in records and reports.
func TestErrorKindString(t *testing.T) {
	t.Parallel()

	tests := map[ErrorKind]string{
		KindNetwork:          "network",
		KindTimeout:          "timeout",
		KindHTTPStatus:       "http_status",
		KindUnavailable:      "unavailable",
		KindTooManyRedirects: "too_many_redirects",
		ErrorKind(42):        "unknown",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
