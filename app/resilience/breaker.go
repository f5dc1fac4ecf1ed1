package resilience

import (
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"
)

type BreakerState string

const (
	StateClosed   BreakerState = "closed"
	StateOpen     BreakerState = "open"
	StateHalfOpen BreakerState = "half_open"
)

type BreakerConfig struct {
	// FailureThreshold opens the circuit after this many consecutive failures.
	FailureThreshold int
	// FailureRateThreshold opens the circuit when the failure rate since the
	// last state change reaches this fraction, provided VolumeThreshold
	// requests have been seen.
	FailureRateThreshold float64
	VolumeThreshold      int
	// RecoveryTimeout is how long an open circuit waits before the next call
	// is allowed through as a half-open probe.
	RecoveryTimeout time.Duration
	// HalfOpenSuccesses is the number of consecutive successful probes needed
	// to close a half-open circuit.
	HalfOpenSuccesses int
	// Backoff parameters for the retry-after hint carried by CircuitOpenError.
	BackoffBase time.Duration
	BackoffMax  time.Duration
	JitterFrac  float64
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold:     5,
		FailureRateThreshold: 0.5,
		VolumeThreshold:      10,
		RecoveryTimeout:      60 * time.Second,
		HalfOpenSuccesses:    2,
		BackoffBase:          time.Second,
		BackoffMax:           5 * time.Minute,
		JitterFrac:           0.2,
	}
}

// Breaker is a failure-aware gate in front of one downstream service.
// State transitions happen under the breaker's lock; the wrapped call runs
// outside it so a slow downstream never blocks other callers.
type Breaker struct {
	name string
	cfg  BreakerConfig

	mu                   sync.Mutex
	state                BreakerState
	consecutiveFailures  int
	consecutiveSuccesses int
	windowRequests       int
	windowFailures       int
	totalRequests        int64
	failedRequests       int64
	lastStateChange      time.Time
	lastFailure          time.Time
	errorKinds           map[Kind]int64

	now func() time.Time
}

func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	b := &Breaker{
		name:       name,
		cfg:        cfg,
		state:      StateClosed,
		errorKinds: make(map[Kind]int64),
		now:        time.Now,
	}
	b.lastStateChange = b.now()
	return b
}

// Do runs fn through the breaker. When the circuit is open and the recovery
// timeout has not elapsed, fn is not invoked and a CircuitOpenError carrying
// a retry-after hint is returned. The error from fn is passed through
// unchanged so callers keep the root cause.
func (b *Breaker) Do(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}

	err := fn()
	b.after(err)
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.lastStateChange) >= b.cfg.RecoveryTimeout {
			b.transitionLocked(StateHalfOpen, "recovery timeout elapsed")
		} else {
			return &CircuitOpenError{Service: b.name, RetryAfter: b.retryAfterLocked()}
		}
	}
	return nil
}

func (b *Breaker) after(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalRequests++
	b.windowRequests++

	if err != nil {
		b.failedRequests++
		b.windowFailures++
		b.consecutiveFailures++
		b.consecutiveSuccesses = 0
		b.lastFailure = b.now()
		b.errorKinds[KindOf(err)]++

		switch b.state {
		case StateHalfOpen:
			b.transitionLocked(StateOpen, "failure during half-open probe")
		case StateClosed:
			if b.consecutiveFailures >= b.cfg.FailureThreshold {
				b.transitionLocked(StateOpen, "consecutive failure threshold reached")
			} else if b.windowRequests >= b.cfg.VolumeThreshold &&
				float64(b.windowFailures)/float64(b.windowRequests) >= b.cfg.FailureRateThreshold {
				b.transitionLocked(StateOpen, "failure rate threshold reached")
			}
		}
		return
	}

	b.consecutiveSuccesses++
	b.consecutiveFailures = 0
	if b.state == StateHalfOpen && b.consecutiveSuccesses >= b.cfg.HalfOpenSuccesses {
		b.transitionLocked(StateClosed, "half-open probes succeeded")
	}
}

func (b *Breaker) transitionLocked(next BreakerState, reason string) {
	prev := b.state
	b.state = next
	b.lastStateChange = b.now()
	b.windowRequests = 0
	b.windowFailures = 0
	if next == StateClosed {
		b.consecutiveFailures = 0
	}
	if next == StateHalfOpen {
		b.consecutiveSuccesses = 0
	}

	slog.Warn("Circuit breaker state change",
		"service", b.name, "from", string(prev), "to", string(next), "reason", reason)
}

// retryAfterLocked computes an exponential backoff seeded by the consecutive
// failure count, capped and jittered to avoid thundering-herd probes.
func (b *Breaker) retryAfterLocked() time.Duration {
	exp := math.Pow(2, float64(min(b.consecutiveFailures, 16)))
	delay := time.Duration(float64(b.cfg.BackoffBase) * exp)
	if delay > b.cfg.BackoffMax {
		delay = b.cfg.BackoffMax
	}
	jitter := 1 + b.cfg.JitterFrac*(2*rand.Float64()-1)
	return time.Duration(float64(delay) * jitter)
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

type BreakerStats struct {
	Name                 string         `json:"name"`
	State                BreakerState   `json:"state"`
	ConsecutiveFailures  int            `json:"consecutive_failures"`
	ConsecutiveSuccesses int            `json:"consecutive_successes"`
	TotalRequests        int64          `json:"total_requests"`
	FailedRequests       int64          `json:"failed_requests"`
	FailureRate          float64        `json:"failure_rate"`
	LastStateChange      time.Time      `json:"last_state_change"`
	LastFailure          time.Time      `json:"last_failure,omitzero"`
	ErrorKinds           map[Kind]int64 `json:"error_kinds"`
}

// GetStats returns a read-only projection of the breaker's state for the ops
// endpoints.
func (b *Breaker) GetStats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	rate := float64(0)
	if b.totalRequests > 0 {
		rate = float64(b.failedRequests) / float64(b.totalRequests)
	}
	kinds := make(map[Kind]int64, len(b.errorKinds))
	for k, v := range b.errorKinds {
		kinds[k] = v
	}
	return BreakerStats{
		Name:                 b.name,
		State:                b.state,
		ConsecutiveFailures:  b.consecutiveFailures,
		ConsecutiveSuccesses: b.consecutiveSuccesses,
		TotalRequests:        b.totalRequests,
		FailedRequests:       b.failedRequests,
		FailureRate:          rate,
		LastStateChange:      b.lastStateChange,
		LastFailure:          b.lastFailure,
		ErrorKinds:           kinds,
	}
}
