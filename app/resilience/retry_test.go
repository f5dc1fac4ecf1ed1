package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.OverallTimeout = time.Second
	return cfg
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return Classify(KindNetwork, errors.New("connection reset"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetry_AuthErrorNotRetried(t *testing.T) {
	attempts := 0
	wantErr := Classify(KindAuth, errors.New("invalid api key"))

	err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) error {
		attempts++
		return wantErr
	})
	if attempts != 1 {
		t.Errorf("Expected exactly 1 attempt for auth error, got %d", attempts)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected original error back, got: %v", err)
	}
}

func TestRetry_PermanentErrorNotRetried(t *testing.T) {
	attempts := 0
	Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) error {
		attempts++
		return Classify(KindPermanent, errors.New("404 not found"))
	})
	if attempts != 1 {
		t.Errorf("Expected exactly 1 attempt for permanent error, got %d", attempts)
	}
}

func TestRetry_CircuitOpenNotRetried(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) error {
		attempts++
		return &CircuitOpenError{Service: "llm", RetryAfter: time.Minute}
	})
	if attempts != 1 {
		t.Errorf("Expected exactly 1 attempt when circuit is open, got %d", attempts)
	}
	var open *CircuitOpenError
	if !errors.As(err, &open) {
		t.Errorf("Expected CircuitOpenError back, got: %v", err)
	}
}

func TestRetry_ExhaustsAndReturnsLastError(t *testing.T) {
	cfg := fastRetryConfig()
	cfg.MaxRetries = 2

	attempts := 0
	wantErr := Classify(KindServer, errors.New("502 bad gateway"))
	err := Retry(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return wantErr
	})
	if attempts != 3 {
		t.Errorf("Expected 3 attempts (1 + 2 retries), got %d", attempts)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected last error back, got: %v", err)
	}
}

func TestRetry_RespectsOverallTimeout(t *testing.T) {
	cfg := fastRetryConfig()
	cfg.MaxRetries = 100
	cfg.BaseDelay = 50 * time.Millisecond
	cfg.BackoffFactor = 1
	cfg.JitterFrac = 0
	cfg.OverallTimeout = 120 * time.Millisecond

	attempts := 0
	started := time.Now()
	err := Retry(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return Classify(KindTimeout, errors.New("deadline exceeded"))
	})
	if err == nil {
		t.Fatal("Expected error after timeout")
	}
	if elapsed := time.Since(started); elapsed > 300*time.Millisecond {
		t.Errorf("Expected retry loop to stop near the overall timeout, took %s", elapsed)
	}
	if attempts > 4 {
		t.Errorf("Expected few attempts within budget, got %d", attempts)
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	cfg := fastRetryConfig()
	cfg.BaseDelay = time.Hour // force the sleep path

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Retry(ctx, cfg, func(ctx context.Context) error {
		attempts++
		return Classify(KindNetwork, errors.New("down"))
	})
	if err == nil {
		t.Fatal("Expected error when context cancelled")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before cancellation stops the loop, got %d", attempts)
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"classified", Classify(KindAuth, errors.New("401")), KindAuth},
		{"wrapped classified", errors.Join(errors.New("outer"), Classify(KindServer, errors.New("500"))), KindServer},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"plain", errors.New("weird"), KindUnknown},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Errorf("%s: Expected kind %s, got %s", tc.name, tc.want, got)
		}
	}
}
