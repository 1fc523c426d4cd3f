// Package extractor selects "the data" from a fetched page using
// configured CSS selectors and produces content that always renders as
// a valid standalone HTML document.
//
// The extractor is a pure function of its input: it performs no
// network or filesystem access, and the same HTML always yields the
// same content. Unusable input fails only the page that produced it.
package extractor
