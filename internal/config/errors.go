package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors. Package-level sentinel errors let
// callers use errors.Is for programmatic handling while keeping the
// messages human-readable.
var (
	// ErrNoSeeds is returned when no seed URL is specified.
	ErrNoSeeds = errors.New("no seed URLs specified: provide at least one URL to crawl")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxRetries is returned when the retry bound is not positive.
	// Every URL needs at least one attempt.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be positive")

	// ErrInvalidMaxRedirects is returned when the redirect bound is negative.
	// Zero disables redirect following entirely.
	ErrInvalidMaxRedirects = errors.New("invalid max redirects: must be non-negative")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidMaxBodySize is returned when the body size limit is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoContentSelectors is returned when the extraction rules have
	// no content selectors, which would make every page empty.
	ErrNoContentSelectors = errors.New("extraction rules have no content selectors")
)

// InvalidSeedError reports a seed URL that could not be parsed as an
// absolute http(s) URL.
type InvalidSeedError struct {
	Seed string
}

// Error implements the error interface.
func (e *InvalidSeedError) Error() string {
	return fmt.Sprintf("invalid seed URL %q: must be an absolute http(s) URL", e.Seed)
}

// OutputDirError reports an output directory that could not be created
// or written to at startup.
type OutputDirError struct {
	Dir string
	Err error
}

// Error implements the error interface.
func (e *OutputDirError) Error() string {
	return fmt.Sprintf("output directory %q is not writable: %v", e.Dir, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *OutputDirError) Unwrap() error {
	return e.Err
}
