package crawler

import "sync"

// Item is one frontier entry: a normalized URL plus the page it was
// discovered on. Seeds have an empty Referrer.
type Item struct {
	URL      string
	Referrer string
}

// Frontier is the crawl's work queue. It pairs a FIFO queue with a
// seen-set so that enqueue is also the deduplication point: a URL is
// admitted at most once for the lifetime of the frontier, whether it
// is currently queued, in flight, or long since processed.
//
// All methods are safe for concurrent use.
type Frontier struct {
	mu      sync.Mutex
	queue   []Item
	seen    map[string]struct{}
	visited map[string]struct{}
	scope   Scope
}

// NewFrontier returns an empty frontier bounded to scope.
func NewFrontier(scope Scope) *Frontier {
	return &Frontier{
		seen:    make(map[string]struct{}),
		visited: make(map[string]struct{}),
		scope:   scope,
	}
}

// Enqueue normalizes rawURL and appends it to the queue if it is in
// scope and has never been seen. It returns the normalized URL and
// whether the URL was admitted. Out-of-scope, duplicate and malformed
// URLs are rejected silently; rejection is the common case on a dense
// link graph and is not an error.
func (f *Frontier) Enqueue(rawURL, referrer string) (string, bool) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return "", false
	}
	if !f.scope.Contains(normalized) {
		return "", false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seen[normalized]; ok {
		return normalized, false
	}
	f.seen[normalized] = struct{}{}
	f.queue = append(f.queue, Item{URL: normalized, Referrer: referrer})
	return normalized, true
}

// Dequeue removes and returns the oldest queued item. The second
// return value is false when the queue is empty, which is the crawl's
// normal termination signal.
func (f *Frontier) Dequeue() (Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return Item{}, false
	}
	item := f.queue[0]
	f.queue = f.queue[1:]
	return item, true
}

// MarkVisited records that the URL's processing reached a terminal
// state. The seen-set already prevents re-enqueueing; this feeds the
// completed counter used for progress reporting.
func (f *Frontier) MarkVisited(normalizedURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visited[normalizedURL] = struct{}{}
}

// Seen reports whether the URL has ever been admitted.
func (f *Frontier) Seen(normalizedURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.seen[normalizedURL]
	return ok
}

// Len returns the number of currently queued items.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Discovered returns the total number of URLs ever admitted.
func (f *Frontier) Discovered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

// Completed returns the number of URLs marked visited.
func (f *Frontier) Completed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}
