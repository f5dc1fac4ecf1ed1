package resilience

import (
	"sync"
	"time"
)

const outcomeRingCap = 1000

// recentWindow bounds how many ring entries feed the recent-rate figures
// reported by GetStats.
const recentWindow = 100

// TokenBucket throttles calls to one downstream service. Capacity is
// expressed in tokens per minute; refill happens lazily on each Consume call
// based on elapsed wall time, so there is no background refill goroutine.
type TokenBucket struct {
	name     string
	capacity float64

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	outcomes   []Outcome
	allowed    int64
	denied     int64

	now func() time.Time
}

// Outcome records one Consume decision for observability. The ring is bounded
// at outcomeRingCap entries, evicted FIFO.
type Outcome struct {
	Time      time.Time
	Allowed   bool
	UsageRate float64
}

func NewTokenBucket(name string, tokensPerMinute float64) *TokenBucket {
	if tokensPerMinute <= 0 {
		tokensPerMinute = 60
	}
	b := &TokenBucket{
		name:     name,
		capacity: tokensPerMinute,
		tokens:   tokensPerMinute,
		now:      time.Now,
	}
	b.lastRefill = b.now()
	return b
}

// Consume attempts to take n tokens. It never blocks: callers get an
// immediate yes or no. A request for more tokens than the bucket can ever
// hold is a permanent denial.
func (b *TokenBucket) Consume(n float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked()

	allowed := n <= b.capacity && b.tokens >= n
	if allowed {
		b.tokens -= n
		b.allowed++
	} else {
		b.denied++
	}

	b.recordLocked(Outcome{
		Time:      b.now(),
		Allowed:   allowed,
		UsageRate: 1 - b.tokens/b.capacity,
	})

	return allowed
}

// Available reports the current token count after a lazy refill.
func (b *TokenBucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	return b.tokens
}

func (b *TokenBucket) refillLocked() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens += elapsed * b.capacity / 60
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now
}

func (b *TokenBucket) recordLocked(o Outcome) {
	if len(b.outcomes) >= outcomeRingCap {
		b.outcomes = b.outcomes[1:]
	}
	b.outcomes = append(b.outcomes, o)
}

type BucketStats struct {
	Name      string  `json:"name"`
	Capacity  float64 `json:"capacity"`
	Available float64 `json:"available"`
	Allowed   int64   `json:"allowed"`
	Denied    int64   `json:"denied"`
	UsageRate float64 `json:"usage_rate"`
	// Recent figures are computed over the tail of the outcome ring, so they
	// reflect current pressure rather than lifetime totals.
	RecentDenyRate  float64 `json:"recent_deny_rate"`
	RecentUsageRate float64 `json:"recent_usage_rate"`
	RecentWindow    int     `json:"recent_window"`
}

// GetStats returns a point-in-time view of the bucket. Read-only, suitable
// for the ops endpoints.
func (b *TokenBucket) GetStats() BucketStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()

	stats := BucketStats{
		Name:      b.name,
		Capacity:  b.capacity,
		Available: b.tokens,
		Allowed:   b.allowed,
		Denied:    b.denied,
		UsageRate: 1 - b.tokens/b.capacity,
	}

	tail := b.outcomes
	if len(tail) > recentWindow {
		tail = tail[len(tail)-recentWindow:]
	}
	if len(tail) > 0 {
		denied := 0
		usage := 0.0
		for _, o := range tail {
			if !o.Allowed {
				denied++
			}
			usage += o.UsageRate
		}
		stats.RecentDenyRate = float64(denied) / float64(len(tail))
		stats.RecentUsageRate = usage / float64(len(tail))
		stats.RecentWindow = len(tail)
	}
	return stats
}
