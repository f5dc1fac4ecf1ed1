package resilience

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

type RetryConfig struct {
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	BackoffFactor  float64
	JitterFrac     float64
	OverallTimeout time.Duration
	// RetryableKinds lists the failure kinds worth another attempt. Auth and
	// permanent failures are never retried regardless of this set.
	RetryableKinds map[Kind]bool
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		BaseDelay:      time.Second,
		MaxDelay:       30 * time.Second,
		BackoffFactor:  2,
		JitterFrac:     0.1,
		OverallTimeout: 2 * time.Minute,
		RetryableKinds: map[Kind]bool{
			KindTimeout:     true,
			KindNetwork:     true,
			KindServer:      true,
			KindRateLimited: true,
			KindUnknown:     true,
		},
	}
}

// Retry runs fn with exponential backoff until it succeeds, retries are
// exhausted, the error is not retryable, or the overall timeout would be
// exceeded by the next sleep. The last error from fn is returned unchanged so
// the root cause survives for logging.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	started := time.Now()
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !retryable(cfg, lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxRetries {
			return lastErr
		}

		delay := backoffDelay(cfg, attempt)

		// Check the overall deadline before sleeping, not after, so a long
		// final backoff cannot overshoot the budget.
		if cfg.OverallTimeout > 0 && time.Since(started)+delay > cfg.OverallTimeout {
			return lastErr
		}

		slog.Debug("Retrying after transient failure",
			"attempt", attempt+1, "max_retries", cfg.MaxRetries,
			"delay", delay.String(), "error", lastErr)

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
	}

	return lastErr
}

func retryable(cfg RetryConfig, err error) bool {
	var open *CircuitOpenError
	if errors.As(err, &open) {
		// The breaker already said when to come back; spinning on it here
		// would defeat the gate.
		return false
	}

	kind := KindOf(err)
	if kind == KindAuth || kind == KindPermanent {
		return false
	}
	return cfg.RetryableKinds[kind]
}

func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := time.Duration(float64(cfg.BaseDelay) * math.Pow(cfg.BackoffFactor, float64(attempt)))
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	jitter := 1 + cfg.JitterFrac*(2*rand.Float64()-1)
	return time.Duration(float64(delay) * jitter)
}
