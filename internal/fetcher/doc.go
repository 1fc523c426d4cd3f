// Package fetcher retrieves pages over HTTP with a bounded
// retry-with-backoff policy and a typed error taxonomy.
//
// The retry policy is an explicit loop rather than exception-style
// control flow so the failure behavior is visible and testable with a
// fake server. Transient failures (timeouts, connection errors, 5xx
// and 429 responses) are retried up to the configured bound; other
// HTTP errors and "unavailable" marker pages fail the URL immediately.
// A failed fetch never fails the crawl, only the URL that produced it.
package fetcher
