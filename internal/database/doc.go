// Package database persists crawl runs and their per-URL visit
// records in SQLite, so past runs can be listed and inspected after
// the process exits.
package database
