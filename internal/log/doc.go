// Package log provides slog logger construction for govcrawl.
// Site configurations may carry session cookies and authorization
// headers, so the logger wraps its handler with one that masks those
// values before they reach the output.
package log
