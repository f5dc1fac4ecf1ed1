package llm

import (
	"context"

	"github.com/riskwire/riskwire/app/metrics"
	"github.com/riskwire/riskwire/app/resilience"
)

// Guarded wraps a Provider with the per-service resilience composition:
// rate limiter, then circuit breaker, then retry around the pair. Every
// outbound model call in the process goes through one of these, one instance
// per downstream service name.
type Guarded struct {
	service   string
	provider  Provider
	limiter   *resilience.TokenBucket
	breaker   *resilience.Breaker
	retryCfg  resilience.RetryConfig
	collector *metrics.Collector
	opts      Options
}

func NewGuarded(service string, provider Provider, registry *resilience.Registry, collector *metrics.Collector, opts Options) *Guarded {
	return &Guarded{
		service:   service,
		provider:  provider,
		limiter:   registry.Limiter(service),
		breaker:   registry.Breaker(service),
		retryCfg:  registry.RetryConfigFor(service),
		collector: collector,
		opts:      opts,
	}
}

// Chat sends one system+user exchange through the guarded provider. The
// signature matches the location batcher's ChatClient collaborator.
func (g *Guarded) Chat(ctx context.Context, system, user string) (string, error) {
	messages := []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}

	var reply string
	err := g.collector.Time("llm_"+g.service, func() error {
		return resilience.Retry(ctx, g.retryCfg, func(ctx context.Context) error {
			if !g.limiter.Consume(1) {
				g.collector.Inc("llm_" + g.service + "_rate_limited")
				return resilience.Classify(resilience.KindRateLimited,
					&resilience.RateLimitedError{Service: g.service})
			}

			return g.breaker.Do(func() error {
				var callErr error
				reply, callErr = g.provider.Chat(ctx, messages, g.opts)
				return callErr
			})
		})
	})
	if err != nil {
		return "", err
	}

	g.collector.Inc("llm_" + g.service + "_calls")
	return reply, nil
}
