package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind classifies a downstream failure by cause. The circuit breaker counts
// every failure the same way regardless of kind; the retry layer uses the
// kind to decide whether another attempt makes sense at all.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindNetwork     Kind = "network"
	KindRateLimited Kind = "rate_limited"
	KindServer      Kind = "server"
	KindAuth        Kind = "auth"
	KindPermanent   Kind = "permanent"
	KindUnknown     Kind = "unknown"
)

// ClassifiedError tags an underlying error with its failure kind.
type ClassifiedError struct {
	Kind Kind
	Err  error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Classify wraps err with the given kind. A nil err returns nil.
func Classify(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Kind: kind, Err: err}
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// CircuitOpenError is returned without invoking the wrapped call when a
// breaker is open. RetryAfter tells the caller when a probe is worth trying.
type CircuitOpenError struct {
	Service    string
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit open for %s, retry after %s", e.Service, e.RetryAfter)
}

// RateLimitedError is returned when a service's token bucket denies a call.
// It is transient: the bucket refills over time.
type RateLimitedError struct {
	Service string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s", e.Service)
}
