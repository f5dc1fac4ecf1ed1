package throttle

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostThrottle limits how fast feed fetches hit any single origin. Feed
// fetches are not latency-critical, so Acquire blocks until a token is free
// instead of failing fast like the per-service LLM limiters.
type HostThrottle struct {
	enabled    bool
	ratePerSec float64
	burst      int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewHostThrottle(enabled bool, ratePerSec float64, burst int) *HostThrottle {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &HostThrottle{
		enabled:    enabled,
		ratePerSec: ratePerSec,
		burst:      burst,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Acquire suspends the calling goroutine until a token for the host is
// available or the context is cancelled.
func (t *HostThrottle) Acquire(ctx context.Context, host string) error {
	if !t.enabled || host == "" {
		return nil
	}
	return t.limiterFor(host).Wait(ctx)
}

func (t *HostThrottle) limiterFor(host string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	limiter, ok := t.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(t.ratePerSec), t.burst)
		t.limiters[host] = limiter
	}
	return limiter
}

// HostCount reports how many distinct hosts have been throttled so far.
func (t *HostThrottle) HostCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.limiters)
}

// HostOf extracts the throttle key (URL authority, lowercased) from a feed
// URL. Unparseable URLs map to the empty key, which Acquire ignores.
func HostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}
