package resilience

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ServiceConfig bundles the limiter capacity and breaker thresholds for one
// downstream service name.
type ServiceConfig struct {
	TokensPerMinute float64
	Breaker         BreakerConfig
	Retry           RetryConfig
}

// Registry owns the per-service limiter and breaker singletons. It is built
// once at startup and injected wherever outbound calls are made, so one
// provider's outage never throttles an unrelated provider.
type Registry struct {
	mu        sync.Mutex
	defaults  ServiceConfig
	overrides map[string]ServiceConfig
	limiters  map[string]*TokenBucket
	breakers  map[string]*Breaker
}

func NewRegistry(defaults ServiceConfig, overrides map[string]ServiceConfig) *Registry {
	if defaults.TokensPerMinute <= 0 {
		defaults.TokensPerMinute = 60
	}
	return &Registry{
		defaults:  defaults,
		overrides: overrides,
		limiters:  make(map[string]*TokenBucket),
		breakers:  make(map[string]*Breaker),
	}
}

func (r *Registry) configFor(service string) ServiceConfig {
	if cfg, ok := r.overrides[service]; ok {
		return cfg
	}
	return r.defaults
}

// Limiter returns the token bucket for a service, creating it on first use.
func (r *Registry) Limiter(service string) *TokenBucket {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.limiters[service]; ok {
		return b
	}
	b := NewTokenBucket(service, r.configFor(service).TokensPerMinute)
	r.limiters[service] = b
	return b
}

// Breaker returns the circuit breaker for a service, creating it on first use.
func (r *Registry) Breaker(service string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[service]; ok {
		return b
	}
	b := NewBreaker(service, r.configFor(service).Breaker)
	r.breakers[service] = b
	return b
}

// RetryConfigFor returns the retry policy for a service.
func (r *Registry) RetryConfigFor(service string) RetryConfig {
	return r.configFor(service).Retry
}

// ParseServiceOverrides parses the per-service override list from
// configuration. Each comma-separated entry has the form
// service=tokens_per_minute[:failure_threshold[:recovery_seconds]]; omitted
// parts inherit the defaults. Malformed entries are logged and skipped so one
// typo never takes the whole registry down.
func ParseServiceOverrides(value string, defaults ServiceConfig) map[string]ServiceConfig {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	overrides := make(map[string]ServiceConfig)
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, spec, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			slog.Warn("Skipping malformed service override", "entry", entry)
			continue
		}

		cfg := defaults
		parts := strings.Split(spec, ":")
		tokens, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil || tokens <= 0 {
			slog.Warn("Skipping service override with invalid capacity", "entry", entry)
			continue
		}
		cfg.TokensPerMinute = tokens

		if len(parts) > 1 {
			if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && n > 0 {
				cfg.Breaker.FailureThreshold = n
			} else {
				slog.Warn("Ignoring invalid failure threshold in service override", "entry", entry)
			}
		}
		if len(parts) > 2 {
			if n, err := strconv.Atoi(strings.TrimSpace(parts[2])); err == nil && n > 0 {
				cfg.Breaker.RecoveryTimeout = time.Duration(n) * time.Second
			} else {
				slog.Warn("Ignoring invalid recovery timeout in service override", "entry", entry)
			}
		}
		overrides[name] = cfg
	}
	return overrides
}

type RegistrySnapshot struct {
	Limiters []BucketStats  `json:"limiters"`
	Breakers []BreakerStats `json:"breakers"`
}

// GetSnapshot captures the health of every known service without side
// effects, for the ops endpoints.
func (r *Registry) GetSnapshot() RegistrySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := RegistrySnapshot{}
	for _, b := range r.limiters {
		snap.Limiters = append(snap.Limiters, b.GetStats())
	}
	for _, b := range r.breakers {
		snap.Breakers = append(snap.Breakers, b.GetStats())
	}
	return snap
}
