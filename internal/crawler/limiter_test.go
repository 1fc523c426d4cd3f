package crawler

import (
	"context"
	"testing"
	"time"
)

func TestHostLimiterSpacing(t *testing.T) {
	t.Parallel()

	const delay = 50 * time.Millisecond
	l := NewHostLimiter(delay)
	ctx := context.Background()

	start := time.Now()
	if err := l.Wait(ctx, "www.gov.uk"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > delay/2 {
		t.Errorf("first request waited %v, want immediate", elapsed)
	}

	start = time.Now()
	if err := l.Wait(ctx, "www.gov.uk"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < delay/2 {
		t.Errorf("second request waited only %v, want about %v", elapsed, delay)
	}
}

func TestHostLimiterIndependentHosts(t *testing.T) {
	t.Parallel()

	const delay = 200 * time.Millisecond
	l := NewHostLimiter(delay)
	ctx := context.Background()

	if err := l.Wait(ctx, "a.gov.uk"); err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	if err := l.Wait(ctx, "b.gov.uk"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > delay/2 {
		t.Errorf("different host waited %v, want immediate", elapsed)
	}
}

func TestHostLimiterZeroDelay(t *testing.T) {
	t.Parallel()

	l := NewHostLimiter(0)
	ctx := context.Background()
	start := time.Now()
	for range 10 {
		if err := l.Wait(ctx, "www.gov.uk"); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("zero-delay limiter blocked for %v", elapsed)
	}
}

func TestHostLimiterCancellation(t *testing.T) {
	t.Parallel()

	l := NewHostLimiter(time.Minute)
	ctx := context.Background()
	if err := l.Wait(ctx, "www.gov.uk"); err != nil {
		t.Fatal(err)
	}

	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()
	if err := l.Wait(cancelCtx, "www.gov.uk"); err == nil {
		t.Error("Wait returned nil on a cancelled context")
	}
}

func TestHostLimiterNil(t *testing.T) {
	t.Parallel()

	var l *HostLimiter
	if err := l.Wait(context.Background(), "www.gov.uk"); err != nil {
		t.Errorf("nil limiter Wait returned %v", err)
	}
}
