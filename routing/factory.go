package routing

import (
	"context"
	"fmt"

	"github.com/switchyard-io/switchyard/core"
	"github.com/switchyard-io/switchyard/logger"
	"github.com/switchyard-io/switchyard/resilience"
)

// NewEngineFromConfig builds a fully wired engine from configuration:
// catalog backend, invoker, cache, retry policy, and circuit breaker.
// The caller owns the returned engine's dependencies only through the
// engine; Close via the catalog when using Redis.
func NewEngineFromConfig(ctx context.Context, cfg *core.Config) (*Engine, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.NewSimpleLogger(cfg.Name, cfg.Logging.Level)

	catalog, err := buildCatalog(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	var invoker core.Invoker
	switch cfg.Invoker.Mode {
	case core.InvokerModeMock:
		invoker = core.NewMockInvoker()
	default:
		httpInvoker := core.NewHTTPInvoker(cfg.Invoker.Timeout)
		httpInvoker.SetLogger(log)
		invoker = httpInvoker
	}

	opts := []EngineOption{
		WithLogger(log),
		WithMaxCandidates(cfg.Routing.MaxCandidates),
		WithRequireVerified(cfg.Routing.RequireVerified),
		WithStrictMode(cfg.Invoker.Strict),
		WithInvokeTimeout(cfg.Invoker.Timeout),
		WithRetryConfig(&resilience.RetryConfig{
			MaxAttempts:   cfg.Resilience.MaxAttempts,
			InitialDelay:  cfg.Resilience.InitialDelay,
			MaxDelay:      cfg.Resilience.MaxDelay,
			BackoffFactor: cfg.Resilience.BackoffFactor,
			JitterEnabled: true,
			RetryableFunc: core.IsRetryable,
		}),
	}

	if cfg.Cache.Enabled {
		opts = append(opts, WithCache(NewMemoryResponseCache(
			cfg.Cache.TTL,
			cfg.Cache.MaxEntries,
			cfg.Cache.CleanupInterval,
		)))
	}

	if cfg.Resilience.CircuitBreakerEnabled {
		opts = append(opts, WithCircuitBreaker(resilience.NewCircuitBreaker(&resilience.CircuitBreakerConfig{
			Name:             cfg.Name,
			FailureThreshold: cfg.Resilience.FailureThreshold,
			RecoveryTimeout:  cfg.Resilience.RecoveryTimeout,
			Logger:           log,
		})))
	}

	return NewEngine(catalog, invoker, opts...)
}

func buildCatalog(ctx context.Context, cfg *core.Config, log core.Logger) (core.Catalog, error) {
	switch cfg.Catalog.Provider {
	case core.CatalogProviderRedis:
		catalog, err := core.NewRedisCatalogWithNamespace(cfg.Catalog.RedisURL, cfg.Catalog.Namespace)
		if err != nil {
			return nil, fmt.Errorf("failed to build Redis catalog: %w", err)
		}
		catalog.SetLogger(log)
		return catalog, nil

	case core.CatalogProviderMemory:
		catalog := core.NewMemoryCatalog()
		catalog.SetLogger(log)
		if cfg.Catalog.SeedFile != "" {
			if err := catalog.LoadFile(ctx, cfg.Catalog.SeedFile); err != nil {
				return nil, fmt.Errorf("failed to seed catalog from %s: %w", cfg.Catalog.SeedFile, err)
			}
		}
		return catalog, nil

	default:
		return nil, fmt.Errorf("unknown catalog provider %q: %w", cfg.Catalog.Provider, core.ErrInvalidConfiguration)
	}
}
