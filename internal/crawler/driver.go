package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/govcrawl/govcrawl/internal/artifact"
	"github.com/govcrawl/govcrawl/internal/extractor"
	"github.com/govcrawl/govcrawl/internal/fetcher"
	"github.com/govcrawl/govcrawl/internal/model"
)

// Fetcher retrieves one URL. Implementations classify failures with
// fetcher.Error so the driver can record the kind.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*model.Page, error)
}

// Extractor turns raw page HTML into normalized content.
type Extractor interface {
	Extract(pageURL string, raw []byte) (*model.ExtractedContent, error)
}

// ArtifactWriter persists extracted content and reports whether a URL
// already has an artifact on disk.
type ArtifactWriter interface {
	Write(normalizedURL string, content *model.ExtractedContent) (string, error)
	Exists(normalizedURL string) bool
}

// Observer receives progress updates as URLs reach terminal states.
type Observer interface {
	// Update is called after each URL completes. completed counts
	// terminal URLs, discovered counts every URL ever admitted to the
	// frontier; discovered grows as the crawl finds new links.
	Update(completed, discovered int)
}

type noopObserver struct{}

func (noopObserver) Update(int, int) {}

// Driver runs the crawl loop: it drains the frontier, moves every URL
// through fetch, extract and write, and feeds discovered links back in.
// One Driver runs one crawl; create a new one per run.
type Driver struct {
	frontier   *Frontier
	discoverer *Discoverer
	fetch      Fetcher
	extract    Extractor
	write      ArtifactWriter
	limiter    *HostLimiter
	observer   Observer
	logger     *slog.Logger

	workers      int
	maxPages     int
	skipExisting bool

	mu      sync.Mutex
	records map[string]*model.VisitRecord
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithWorkers sets the number of URLs processed concurrently.
// Values below 1 are treated as 1.
func WithWorkers(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithMaxPages caps how many URLs the driver will process. Zero means
// unlimited.
func WithMaxPages(n int) DriverOption {
	return func(d *Driver) { d.maxPages = n }
}

// WithSkipExisting makes the driver skip URLs whose artifact already
// exists on disk, so an interrupted crawl can resume without
// re-fetching finished pages.
func WithSkipExisting(skip bool) DriverOption {
	return func(d *Driver) { d.skipExisting = skip }
}

// WithLimiter sets the per-host politeness limiter.
func WithLimiter(l *HostLimiter) DriverOption {
	return func(d *Driver) { d.limiter = l }
}

// WithObserver sets the progress observer.
func WithObserver(o Observer) DriverOption {
	return func(d *Driver) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithDriverLogger sets the structured logger.
func WithDriverLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDriver wires a Driver over its collaborators. The frontier's
// scope decides which discovered links are admitted.
func NewDriver(frontier *Frontier, fetch Fetcher, extract Extractor, write ArtifactWriter, opts ...DriverOption) *Driver {
	d := &Driver{
		frontier:   frontier,
		discoverer: NewDiscoverer(),
		fetch:      fetch,
		extract:    extract,
		write:      write,
		observer:   noopObserver{},
		logger:     slog.Default(),
		workers:    1,
		records:    make(map[string]*model.VisitRecord),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run crawls from seeds until the frontier is empty, the page cap is
// reached, or ctx is cancelled. Cancellation is cooperative: in-flight
// URLs finish, queued URLs stay pending, and the summary is still
// returned with Cancelled set. Per-URL failures are recorded, not
// returned; Run's error is reserved for the crawl being unable to
// start at all.
func (d *Driver) Run(ctx context.Context, seeds []string) (*model.CrawlSummary, error) {
	started := time.Now()

	admitted := 0
	for _, seed := range seeds {
		normalized, ok := d.frontier.Enqueue(seed, "")
		if !ok {
			if d.frontier.Seen(normalized) {
				continue // duplicate seed
			}
			return nil, &SeedError{Seed: seed, Scope: d.frontier.scope}
		}
		d.ensureRecord(normalized, "")
		admitted++
	}
	if admitted == 0 {
		return nil, ErrNoSeedsAdmitted
	}

	cancelled := d.drain(ctx)

	summary := model.NewCrawlSummary(seeds, d.frontier.scope.String(), d.snapshotRecords())
	summary.StartedAt = started
	summary.FinishedAt = time.Now()
	summary.Cancelled = cancelled
	return summary, nil
}

// drain processes the frontier in waves: each wave drains the queue as
// it stood, processes its items with at most workers goroutines, and
// lets discoveries made during the wave form the next one. It reports
// whether the crawl stopped due to cancellation.
func (d *Driver) drain(ctx context.Context) bool {
	processed := 0
	for {
		if ctx.Err() != nil {
			return true
		}

		var wave []Item
		for d.frontier.Len() > 0 {
			if d.maxPages > 0 && processed+len(wave) >= d.maxPages {
				break
			}
			item, ok := d.frontier.Dequeue()
			if !ok {
				break
			}
			wave = append(wave, item)
		}
		if len(wave) == 0 {
			return false
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.workers)
		for _, item := range wave {
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				d.process(gctx, item)
				return nil
			})
		}
		// Workers never return errors; per-URL failures are recorded
		// on the visit instead.
		_ = g.Wait()

		processed += len(wave)
		if d.maxPages > 0 && processed >= d.maxPages {
			return false
		}
	}
}

// process moves one URL through the pipeline. Every exit path leaves
// the visit record in a terminal state and notifies the observer.
func (d *Driver) process(ctx context.Context, item Item) {
	rec := d.ensureRecord(item.URL, item.Referrer)
	logger := d.logger.With(slog.String("url", item.URL))

	defer func() {
		d.frontier.MarkVisited(item.URL)
		d.observer.Update(d.frontier.Completed(), d.frontier.Discovered())
	}()

	if d.skipExisting && d.write.Exists(item.URL) {
		d.setStatus(rec, model.StatusSkipped)
		logger.Debug("artifact exists, skipping")
		return
	}

	if host := hostOf(item.URL); host != "" {
		if err := d.limiter.Wait(ctx, host); err != nil {
			d.fail(rec, model.StatusFetchFailed, "cancelled", err)
			return
		}
	}

	d.setStatus(rec, model.StatusFetching)
	page, err := d.fetch.Fetch(ctx, item.URL)
	if err != nil {
		d.fail(rec, model.StatusFetchFailed, fetchKind(err), err)
		logger.Debug("fetch failed", slog.String("kind", rec.ErrorKind), slog.String("error", err.Error()))
		return
	}
	d.recordAttempts(rec, page.Attempts)
	d.setStatus(rec, model.StatusFetched)

	if !page.IsHTML() {
		err := &extractor.Error{Kind: extractor.KindNotHTML, URL: item.URL}
		d.fail(rec, model.StatusExtractFailed, err.Kind.String(), err)
		logger.Debug("not an HTML page", slog.String("content_type", page.ContentType))
		return
	}

	d.setStatus(rec, model.StatusExtracting)
	content, err := d.extract.Extract(item.URL, page.Raw)
	if err != nil {
		d.fail(rec, model.StatusExtractFailed, extractKind(err), err)
		logger.Debug("extract failed", slog.String("kind", rec.ErrorKind))
		return
	}
	d.setStatus(rec, model.StatusExtracted)

	d.enqueueLinks(item.URL, page)

	d.setStatus(rec, model.StatusWriting)
	path, err := d.write.Write(item.URL, content)
	if err != nil {
		d.fail(rec, model.StatusWriteFailed, writeKind(err), err)
		logger.Warn("write failed", slog.String("kind", rec.ErrorKind), slog.String("error", err.Error()))
		return
	}

	d.mu.Lock()
	rec.ArtifactPath = path
	d.mu.Unlock()
	d.setStatus(rec, model.StatusWritten)
	logger.Debug("page written", slog.String("path", path))
}

// enqueueLinks feeds a page's outbound links back into the frontier.
// The page's final URL is the resolution base so links survive
// redirects.
func (d *Driver) enqueueLinks(pageURL string, page *model.Page) {
	base := page.URL
	if base == "" {
		base = pageURL
	}
	for _, link := range d.discoverer.Discover(base, page.Raw) {
		normalized, ok := d.frontier.Enqueue(link, pageURL)
		if ok {
			d.ensureRecord(normalized, pageURL)
		}
	}
}

func (d *Driver) ensureRecord(normalizedURL, referrer string) *model.VisitRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	if rec, ok := d.records[normalizedURL]; ok {
		return rec
	}
	rec := model.NewVisitRecord(normalizedURL, referrer)
	d.records[normalizedURL] = rec
	return rec
}

func (d *Driver) setStatus(rec *model.VisitRecord, status model.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec.SetStatus(status)
}

func (d *Driver) fail(rec *model.VisitRecord, status model.Status, kind string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec.SetError(status, kind, err.Error())
	var fe *fetcher.Error
	if errors.As(err, &fe) {
		rec.Attempts = fe.Attempts
	}
}

func (d *Driver) recordAttempts(rec *model.VisitRecord, attempts int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if attempts < 1 {
		attempts = 1
	}
	rec.Attempts = attempts
}

func (d *Driver) snapshotRecords() map[string]*model.VisitRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]*model.VisitRecord, len(d.records))
	for url, rec := range d.records {
		out[url] = rec
	}
	return out
}

func hostOf(normalizedURL string) string {
	u, err := url.Parse(normalizedURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func fetchKind(err error) string {
	var fe *fetcher.Error
	if errors.As(err, &fe) {
		return fe.Kind.String()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return "network"
}

func extractKind(err error) string {
	var ee *extractor.Error
	if errors.As(err, &ee) {
		return ee.Kind.String()
	}
	return "malformed"
}

func writeKind(err error) string {
	var ae *artifact.Error
	if errors.As(err, &ae) {
		return ae.Kind.String()
	}
	return "io"
}
