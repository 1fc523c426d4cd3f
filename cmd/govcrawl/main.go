// Package main provides the entry point for the govcrawl CLI.
//
// govcrawl archives the data-bearing content of government websites.
// It crawls in scope from one or more seed URLs, extracts the content
// region of each page, and writes one standalone HTML artifact per URL.
//
// Usage:
//
//	govcrawl crawl <seed-url>
//	govcrawl crawl --scope legislation.gov.uk <seed-url>
//
// See --help for all available options.
package main

// main is the entry point for govcrawl.
func main() {
	Execute()
}
