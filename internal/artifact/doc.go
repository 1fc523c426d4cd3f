// Package artifact persists extracted page content as HTML files.
//
// Every URL maps to exactly one deterministic, filesystem-safe path, so
// distinct pages never overwrite each other and re-crawling a page in
// the same run overwrites only its own prior artifact.
package artifact
