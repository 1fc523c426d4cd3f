package config

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Where the original legislation scraper
// had an explicit setting, its value is kept.
const (
	// DefaultTimeout is the per-request connection/read timeout.
	// Government sites answer quickly; anything slower than this is
	// treated as a transient failure and retried.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxRetries is the total number of fetch attempts per URL
	// before the URL is recorded as failed.
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the base wait between fetch attempts.
	// The wait doubles after each failed attempt.
	DefaultRetryBackoff = 2 * time.Second

	// DefaultMaxRedirects bounds redirect following so redirect loops
	// cannot hang the crawl.
	DefaultMaxRedirects = 10

	// DefaultCrawlDelay is the politeness delay between requests to
	// the same host.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultWorkers is the number of URLs processed concurrently.
	// One worker means strictly sequential crawling, which is the
	// politest mode and the default.
	DefaultWorkers = 1

	// DefaultMaxPages limits the total number of pages per run.
	// Zero means unlimited.
	DefaultMaxPages = 0

	// DefaultUserAgent identifies govcrawl in HTTP requests so site
	// operators can recognize crawler traffic in their logs.
	DefaultUserAgent = "govcrawl/1.0 (+https://github.com/govcrawl/govcrawl)"

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "govcrawl"
)

// DefaultOutputDir is the directory artifacts are written to when no
// --output flag is given. Relative to the working directory, matching
// the original scraper's layout.
const DefaultOutputDir = "crawl_data"

// DefaultUnavailableTexts are body markers that identify a page served
// with status 200 but no usable content. The legislation site answers
// this way for items that exist in its index but have no publishable
// text. A page containing any of these markers is a terminal fetch
// failure of kind "unavailable".
func DefaultUnavailableTexts() []string {
	return []string{
		"isn’t available on this site",
		"The page you requested could not be found.",
		"Your request is not recognised.",
	}
}

// ExtractionRules configures which parts of a page count as "the data".
// Selectors use CSS selector syntax.
type ExtractionRules struct {
	// TitleSelector selects the element whose text becomes the title.
	TitleSelector string `yaml:"titleSelector,omitempty"`

	// ContentSelectors select the content regions, tried in order;
	// the first selector with a match wins.
	ContentSelectors []string `yaml:"contentSelectors,omitempty"`

	// MetadataSelectors map field names to selectors whose text (or
	// content attribute, for meta elements) is captured as metadata.
	MetadataSelectors map[string]string `yaml:"metadataSelectors,omitempty"`
}

// DefaultExtractionRules returns the selector set used when the config
// file does not override it. The defaults match the legislation site's
// markup: the data lives in div#content and the title in <title>.
func DefaultExtractionRules() ExtractionRules {
	return ExtractionRules{
		TitleSelector:    "title",
		ContentSelectors: []string{"#content", "main", "article", "body"},
		MetadataSelectors: map[string]string{
			"description": "meta[name='description']",
		},
	}
}

// Config holds all options for one crawl run. It is populated from CLI
// flags and the optional YAML file, then passed through the application
// by dependency injection rather than global state.
type Config struct {
	// Seeds are the starting URLs. At least one is required.
	Seeds []string

	// ScopePrefix restricts discovered links. A bare host ("gov.uk")
	// restricts to that host; a host with path ("legislation.gov.uk/ukpga")
	// additionally requires the path prefix. Empty means the host of
	// the first seed.
	ScopePrefix string

	// OutputDir is the root directory for HTML artifacts.
	OutputDir string

	// Timeout is the connection/read timeout for each request.
	Timeout time.Duration

	// MaxRetries is the total number of fetch attempts per URL.
	MaxRetries int

	// RetryBackoff is the base wait between attempts, doubling each time.
	RetryBackoff time.Duration

	// MaxRedirects bounds redirect hops per request.
	MaxRedirects int

	// CrawlDelay is the politeness delay between requests to one host.
	CrawlDelay time.Duration

	// Workers is the number of URLs processed concurrently.
	Workers int

	// MaxPages caps the number of pages processed; 0 means unlimited.
	MaxPages int

	// UserAgent is the User-Agent header for all requests.
	UserAgent string

	// MaxBodySize is the response body read limit in bytes.
	MaxBodySize int64

	// Rules select what counts as extractable content.
	Rules ExtractionRules

	// UnavailableTexts are body markers treated as fetch failures.
	UnavailableTexts []string

	// SkipExisting skips URLs whose artifact file already exists,
	// allowing a crude resume of an interrupted run.
	SkipExisting bool

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// ConfigFilePath is the explicit path of the YAML config file.
	// Empty means search the usual locations.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// JSONReport and MarkdownReport select the summary output format.
	// Mutually exclusive; default is the human-readable text report.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the summary to this path instead of stdout.
	ReportFile string

	// NoProgress disables the live progress display.
	NoProgress bool

	// DBDir is the directory of the SQLite database recording visit
	// history. Empty disables persistence.
	DBDir string
}

// NewConfig creates a Config with default values. Many defaults are
// non-zero, so a constructor also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		OutputDir:        DefaultOutputDir,
		Timeout:          DefaultTimeout,
		MaxRetries:       DefaultMaxRetries,
		RetryBackoff:     DefaultRetryBackoff,
		MaxRedirects:     DefaultMaxRedirects,
		CrawlDelay:       DefaultCrawlDelay,
		Workers:          DefaultWorkers,
		MaxPages:         DefaultMaxPages,
		UserAgent:        DefaultUserAgent,
		MaxBodySize:      DefaultMaxBodySize,
		Rules:            DefaultExtractionRules(),
		UnavailableTexts: DefaultUnavailableTexts(),
	}
}

// XDGDataDir returns the XDG data directory for govcrawl.
// On Linux: ~/.local/share/govcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for govcrawl.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem
// found. It runs once after flag parsing, before any fetch, so that
// configuration errors are fatal and reported up front.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}

	for _, seed := range c.Seeds {
		u, err := url.Parse(seed)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return &InvalidSeedError{Seed: seed}
		}
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRetries <= 0 {
		return ErrInvalidMaxRetries
	}
	if c.MaxRedirects < 0 {
		return ErrInvalidMaxRedirects
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if len(c.Rules.ContentSelectors) == 0 {
		return ErrNoContentSelectors
	}

	return nil
}

// EnsureOutputDir creates the output directory and verifies it is
// writable by creating and removing a probe file. An unwritable output
// directory is a startup error, detected before any fetch occurs.
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.OutputDir, 0750); err != nil {
		return &OutputDirError{Dir: c.OutputDir, Err: err}
	}

	probe, err := os.CreateTemp(c.OutputDir, ".govcrawl-probe-*")
	if err != nil {
		return &OutputDirError{Dir: c.OutputDir, Err: err}
	}
	name := probe.Name()
	if err := probe.Close(); err != nil {
		return &OutputDirError{Dir: c.OutputDir, Err: err}
	}
	return os.Remove(name)
}
