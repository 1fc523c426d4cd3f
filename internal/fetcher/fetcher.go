package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/govcrawl/govcrawl/internal/model"
)

// Fetcher issues HTTP GET requests with timeout, bounded retry and
// redirect limits. It has no access to the frontier or storage: its
// only side effect is network I/O.
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// userAgent identifies the crawler to the target server.
	userAgent string

	// maxRetries is the total number of attempts per URL.
	maxRetries int

	// backoff is the base wait before a retry; it doubles per attempt.
	backoff time.Duration

	// maxBodySize limits how much of a response body is read.
	maxBodySize int64

	// headers are extra request headers from the site configuration.
	headers map[string]string

	// cookie is an optional Cookie header value.
	cookie string

	// unavailableTexts are body markers that fail a 200 response.
	unavailableTexts []string

	// logger receives per-attempt debug output.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client. Used in tests and
// when the caller needs custom transport settings.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithUserAgent sets the User-Agent header value.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxRetries sets the total attempt bound per URL.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxRetries = n
		}
	}
}

// WithBackoff sets the base wait between attempts.
func WithBackoff(d time.Duration) Option {
	return func(f *Fetcher) {
		f.backoff = d
	}
}

// WithMaxBodySize sets the response body read limit.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithHeaders sets extra request headers.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithCookie sets the Cookie header value.
func WithCookie(cookie string) Option {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithUnavailableTexts sets the body markers treated as failures.
func WithUnavailableTexts(texts []string) Option {
	return func(f *Fetcher) {
		f.unavailableTexts = texts
	}
}

// WithLogger sets the logger for per-attempt debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// errRedirectLimit marks a redirect chain that exceeded the hop bound.
var errRedirectLimit = errors.New("redirect hop limit reached")

// New creates a Fetcher with the given per-request timeout and
// redirect hop bound.
func New(timeout time.Duration, maxRedirects int, opts ...Option) *Fetcher {
	f := &Fetcher{
		userAgent:   "govcrawl/1.0",
		maxRetries:  3,
		backoff:     2 * time.Second,
		maxBodySize: 5 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errRedirectLimit
				}
				return nil
			},
		}
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f
}

// Fetch retrieves pageURL and returns the page, or a *Error describing
// why it could not be retrieved. The retry policy is an explicit
// bounded loop: transient failures wait backoff*2^(attempt-1) and try
// again, up to maxRetries total attempts.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*model.Page, error) {
	var lastErr *Error

	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if attempt > 1 {
			wait := f.backoff << (attempt - 2)
			f.logger.Debug("retrying fetch", "url", pageURL, "attempt", attempt, "wait", wait)
			select {
			case <-ctx.Done():
				lastErr.Attempts = attempt - 1
				return nil, lastErr
			case <-time.After(wait):
			}
		}

		page, fetchErr := f.fetchOnce(ctx, pageURL)
		if fetchErr == nil {
			page.Attempts = attempt
			return page, nil
		}

		fetchErr.Attempts = attempt
		lastErr = fetchErr

		if !retryable(fetchErr) {
			return nil, fetchErr
		}
	}

	return nil, lastErr
}

// fetchOnce performs a single GET attempt. The returned error always
// has type *Error with Attempts left for the caller to fill in.
func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (*model.Page, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: pageURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classifyTransportError(pageURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, f.classifyTransportError(pageURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindHTTPStatus, URL: pageURL, StatusCode: resp.StatusCode}
	}

	text := string(body)
	for _, marker := range f.unavailableTexts {
		if marker != "" && strings.Contains(text, marker) {
			return nil, &Error{Kind: KindUnavailable, URL: pageURL, StatusCode: resp.StatusCode}
		}
	}

	// The final URL after redirects; discovered links must resolve
	// against this, not the requested URL.
	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	page := &model.Page{
		URL:         finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Headers:     resp.Header,
		Raw:         body,
	}
	page.TruncateRaw(f.maxBodySize)

	return page, nil
}

// classifyTransportError maps a transport-level error to a typed kind.
func (f *Fetcher) classifyTransportError(pageURL string, err error) *Error {
	if errors.Is(err, errRedirectLimit) {
		return &Error{Kind: KindTooManyRedirects, URL: pageURL, Err: err}
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return &Error{Kind: KindTimeout, URL: pageURL, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, URL: pageURL, Err: err}
	}

	return &Error{Kind: KindNetwork, URL: pageURL, Err: err}
}

// retryable reports whether another attempt could succeed.
// Timeouts, connection failures, 5xx and 429 are transient; everything
// else is terminal for the URL.
func retryable(e *Error) bool {
	switch e.Kind {
	case KindNetwork, KindTimeout:
		return true
	case KindHTTPStatus:
		return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// String implements fmt.Stringer for debug output of the attempt bound.
func (f *Fetcher) String() string {
	return fmt.Sprintf("fetcher(retries=%d, backoff=%s)", f.maxRetries, f.backoff)
}
