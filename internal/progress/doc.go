// Package progress renders live crawl progress on the terminal. The
// total grows as the crawl discovers new links, so the bar tracks a
// moving target rather than a fixed count.
package progress
