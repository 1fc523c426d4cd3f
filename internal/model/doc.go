// Package model defines the core data types shared across the crawl
// pipeline: fetched pages, extracted content, per-URL visit records,
// and the end-of-run summary.
package model
