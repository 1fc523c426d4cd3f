// Package crawler contains the crawl loop: the URL frontier, the link
// discoverer, per-host politeness, and the driver that moves each URL
// through fetch, extract and write.
//
// # Architecture
//
// The frontier is a FIFO queue with a seen-set; the two form a single
// atomic membership test, so no URL is ever dequeued twice and no
// dequeued URL can re-enter via a later discovery. The driver pulls
// from the frontier until it is empty, which is the crawl's normal
// termination, and feeds links discovered on successfully extracted
// pages back into the frontier. Failures are scoped to the URL that
// produced them; nothing a single page does can abort the run.
//
// The feedback edge is a queue plus a membership index rather than
// recursion, keeping memory bounded on deep link graphs. All mutable
// crawl state (seen-set, records, counters) is owned by one Driver
// instance with an explicit lifecycle, so several independent crawls
// can run in one process.
package crawler
