package crawler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a politeness delay between successive requests
// to the same host. Each host gets its own token bucket so a crawl
// touching several hosts never serializes across them.
type HostLimiter struct {
	mu       sync.Mutex
	delay    time.Duration
	limiters map[string]*rate.Limiter
}

// NewHostLimiter returns a limiter that spaces requests to one host at
// least delay apart. A zero or negative delay disables limiting.
func NewHostLimiter(delay time.Duration) *HostLimiter {
	return &HostLimiter{
		delay:    delay,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the host's next request slot is available or the
// context is cancelled. The first request to each host proceeds
// immediately.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if l == nil || l.delay <= 0 {
		return nil
	}
	return l.limiterFor(host).Wait(ctx)
}

func (l *HostLimiter) limiterFor(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.delay), 1)
		l.limiters[host] = lim
	}
	return lim
}
