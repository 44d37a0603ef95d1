package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Catalog provider names accepted by CatalogConfig.Provider.
const (
	CatalogProviderMemory = "memory"
	CatalogProviderRedis  = "redis"
)

// Invoker modes accepted by InvokerConfig.Mode.
const (
	InvokerModeHTTP = "http"
	InvokerModeMock = "mock"
)

// Config holds all configuration options for the routing engine and its
// collaborators. It supports three-layer configuration priority:
//  1. Default values (lowest priority)
//  2. Environment variables (medium priority)
//  3. Functional options (highest priority)
//
// Example usage:
//
//	cfg, err := core.NewConfig(
//	    core.WithName("router"),
//	    core.WithCatalogProvider(core.CatalogProviderRedis),
//	    core.WithRedisURL("redis://localhost:6379"),
//	)
type Config struct {
	// Name identifies this engine instance in logs and telemetry.
	Name string `json:"name" env:"SWITCHYARD_NAME"`

	Catalog    CatalogConfig    `json:"catalog"`
	Invoker    InvokerConfig    `json:"invoker"`
	Cache      CacheConfig      `json:"cache"`
	Routing    RoutingConfig    `json:"routing"`
	Resilience ResilienceConfig `json:"resilience"`
	Logging    LoggingConfig    `json:"logging"`
}

// CatalogConfig selects and configures the provider catalog backend.
type CatalogConfig struct {
	Provider  string        `json:"provider" env:"SWITCHYARD_CATALOG_PROVIDER"`
	RedisURL  string        `json:"redis_url" env:"SWITCHYARD_REDIS_URL,REDIS_URL"`
	Namespace string        `json:"namespace" env:"SWITCHYARD_CATALOG_NAMESPACE"`
	SeedFile  string        `json:"seed_file" env:"SWITCHYARD_CATALOG_SEED_FILE"`
	Timeout   time.Duration `json:"timeout" env:"SWITCHYARD_CATALOG_TIMEOUT"`
}

// InvokerConfig selects the invoker implementation once at construction
// time; the engine never branches between mock and real per call.
type InvokerConfig struct {
	Mode    string        `json:"mode" env:"SWITCHYARD_INVOKER_MODE"`
	Timeout time.Duration `json:"timeout" env:"SWITCHYARD_INVOKER_TIMEOUT"`

	// Strict surfaces upstream failures to the caller. When false the
	// engine degrades to a mock result instead.
	Strict bool `json:"strict" env:"SWITCHYARD_INVOKER_STRICT"`
}

// CacheConfig configures response memoization.
type CacheConfig struct {
	Enabled         bool          `json:"enabled" env:"SWITCHYARD_CACHE_ENABLED"`
	TTL             time.Duration `json:"ttl" env:"SWITCHYARD_CACHE_TTL"`
	MaxEntries      int           `json:"max_entries" env:"SWITCHYARD_CACHE_MAX_ENTRIES"`
	CleanupInterval time.Duration `json:"cleanup_interval" env:"SWITCHYARD_CACHE_CLEANUP_INTERVAL"`
}

// RoutingConfig configures candidate selection behavior.
type RoutingConfig struct {
	// MaxCandidates bounds how many ranked candidates the fallback chain
	// evaluates before giving up with a no-matching-tool error.
	MaxCandidates int `json:"max_candidates" env:"SWITCHYARD_MAX_CANDIDATES"`

	// RequireVerified makes the first ranking pass consider only
	// verified providers; the chain relaxes this automatically when the
	// pass yields nothing.
	RequireVerified bool `json:"require_verified" env:"SWITCHYARD_REQUIRE_VERIFIED"`
}

// ResilienceConfig configures retry and circuit breaker behavior for the
// Catalog and Invoker collaborators.
type ResilienceConfig struct {
	MaxAttempts   int           `json:"max_attempts" env:"SWITCHYARD_RETRY_MAX_ATTEMPTS"`
	InitialDelay  time.Duration `json:"initial_delay" env:"SWITCHYARD_RETRY_INITIAL_DELAY"`
	MaxDelay      time.Duration `json:"max_delay" env:"SWITCHYARD_RETRY_MAX_DELAY"`
	BackoffFactor float64       `json:"backoff_factor" env:"SWITCHYARD_RETRY_BACKOFF_FACTOR"`

	CircuitBreakerEnabled bool          `json:"circuit_breaker_enabled" env:"SWITCHYARD_CB_ENABLED"`
	FailureThreshold      int           `json:"failure_threshold" env:"SWITCHYARD_CB_THRESHOLD"`
	RecoveryTimeout       time.Duration `json:"recovery_timeout" env:"SWITCHYARD_CB_RECOVERY_TIMEOUT"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string `json:"level" env:"SWITCHYARD_LOG_LEVEL"`
}

// Option is a functional option for configuring the engine.
type Option func(*Config)

// DefaultConfig returns a Config with sensible defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Name: "switchyard",
		Catalog: CatalogConfig{
			Provider:  CatalogProviderMemory,
			Namespace: "switchyard",
			Timeout:   10 * time.Second,
		},
		Invoker: InvokerConfig{
			Mode:    InvokerModeHTTP,
			Timeout: 30 * time.Second,
			Strict:  false,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             5 * time.Minute,
			MaxEntries:      1000,
			CleanupInterval: time.Minute,
		},
		Routing: RoutingConfig{
			MaxCandidates:   3,
			RequireVerified: true,
		},
		Resilience: ResilienceConfig{
			MaxAttempts:           3,
			InitialDelay:          100 * time.Millisecond,
			MaxDelay:              5 * time.Second,
			BackoffFactor:         2.0,
			CircuitBreakerEnabled: false,
			FailureThreshold:      5,
			RecoveryTimeout:       30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// NewConfig creates a Config applying the three-layer priority:
// defaults, then environment variables, then functional options.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnvironment()

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironment overlays SWITCHYARD_* environment variables on the
// current values. Unparseable values are ignored, keeping the previous
// layer's value.
func (c *Config) applyEnvironment() {
	envString(&c.Name, "SWITCHYARD_NAME")

	envString(&c.Catalog.Provider, "SWITCHYARD_CATALOG_PROVIDER")
	envString(&c.Catalog.RedisURL, "SWITCHYARD_REDIS_URL", "REDIS_URL")
	envString(&c.Catalog.Namespace, "SWITCHYARD_CATALOG_NAMESPACE")
	envString(&c.Catalog.SeedFile, "SWITCHYARD_CATALOG_SEED_FILE")
	envDuration(&c.Catalog.Timeout, "SWITCHYARD_CATALOG_TIMEOUT")

	envString(&c.Invoker.Mode, "SWITCHYARD_INVOKER_MODE")
	envDuration(&c.Invoker.Timeout, "SWITCHYARD_INVOKER_TIMEOUT")
	envBool(&c.Invoker.Strict, "SWITCHYARD_INVOKER_STRICT")

	envBool(&c.Cache.Enabled, "SWITCHYARD_CACHE_ENABLED")
	envDuration(&c.Cache.TTL, "SWITCHYARD_CACHE_TTL")
	envInt(&c.Cache.MaxEntries, "SWITCHYARD_CACHE_MAX_ENTRIES")
	envDuration(&c.Cache.CleanupInterval, "SWITCHYARD_CACHE_CLEANUP_INTERVAL")

	envInt(&c.Routing.MaxCandidates, "SWITCHYARD_MAX_CANDIDATES")
	envBool(&c.Routing.RequireVerified, "SWITCHYARD_REQUIRE_VERIFIED")

	envInt(&c.Resilience.MaxAttempts, "SWITCHYARD_RETRY_MAX_ATTEMPTS")
	envDuration(&c.Resilience.InitialDelay, "SWITCHYARD_RETRY_INITIAL_DELAY")
	envDuration(&c.Resilience.MaxDelay, "SWITCHYARD_RETRY_MAX_DELAY")
	envFloat(&c.Resilience.BackoffFactor, "SWITCHYARD_RETRY_BACKOFF_FACTOR")
	envBool(&c.Resilience.CircuitBreakerEnabled, "SWITCHYARD_CB_ENABLED")
	envInt(&c.Resilience.FailureThreshold, "SWITCHYARD_CB_THRESHOLD")
	envDuration(&c.Resilience.RecoveryTimeout, "SWITCHYARD_CB_RECOVERY_TIMEOUT")

	envString(&c.Logging.Level, "SWITCHYARD_LOG_LEVEL")
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Catalog.Provider {
	case CatalogProviderMemory, CatalogProviderRedis:
	default:
		return fmt.Errorf("unknown catalog provider %q: %w", c.Catalog.Provider, ErrInvalidConfiguration)
	}
	if c.Catalog.Provider == CatalogProviderRedis && c.Catalog.RedisURL == "" {
		return fmt.Errorf("redis catalog requires a redis URL: %w", ErrMissingConfiguration)
	}

	switch c.Invoker.Mode {
	case InvokerModeHTTP, InvokerModeMock:
	default:
		return fmt.Errorf("unknown invoker mode %q: %w", c.Invoker.Mode, ErrInvalidConfiguration)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive: %w", ErrInvalidConfiguration)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max entries must be positive: %w", ErrInvalidConfiguration)
	}
	if c.Routing.MaxCandidates < 1 {
		return fmt.Errorf("max candidates must be at least 1: %w", ErrInvalidConfiguration)
	}
	if c.Resilience.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1: %w", ErrInvalidConfiguration)
	}
	return nil
}

// Functional options

// WithName sets the engine instance name.
func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

// WithCatalogProvider selects the catalog backend ("memory" or "redis").
func WithCatalogProvider(provider string) Option {
	return func(c *Config) { c.Catalog.Provider = provider }
}

// WithRedisURL sets the Redis connection URL for the redis catalog.
func WithRedisURL(url string) Option {
	return func(c *Config) { c.Catalog.RedisURL = url }
}

// WithCatalogNamespace sets the key namespace for the redis catalog.
func WithCatalogNamespace(ns string) Option {
	return func(c *Config) { c.Catalog.Namespace = ns }
}

// WithCatalogSeedFile sets a YAML file of provider records loaded into
// the in-memory catalog at startup.
func WithCatalogSeedFile(path string) Option {
	return func(c *Config) { c.Catalog.SeedFile = path }
}

// WithInvokerMode selects the invoker implementation ("http" or "mock").
func WithInvokerMode(mode string) Option {
	return func(c *Config) { c.Invoker.Mode = mode }
}

// WithInvokerTimeout bounds a single provider invocation.
func WithInvokerTimeout(d time.Duration) Option {
	return func(c *Config) { c.Invoker.Timeout = d }
}

// WithStrictMode controls whether upstream failures surface to the
// caller (true) or degrade to a mock result (false).
func WithStrictMode(strict bool) Option {
	return func(c *Config) { c.Invoker.Strict = strict }
}

// WithCacheTTL sets the response cache time-to-live.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Config) { c.Cache.TTL = ttl }
}

// WithCacheMaxEntries sets the response cache size bound.
func WithCacheMaxEntries(n int) Option {
	return func(c *Config) { c.Cache.MaxEntries = n }
}

// WithCacheEnabled toggles response memoization.
func WithCacheEnabled(enabled bool) Option {
	return func(c *Config) { c.Cache.Enabled = enabled }
}

// WithMaxCandidates bounds the fallback chain.
func WithMaxCandidates(n int) Option {
	return func(c *Config) { c.Routing.MaxCandidates = n }
}

// WithRequireVerified controls the initial verification constraint.
func WithRequireVerified(required bool) Option {
	return func(c *Config) { c.Routing.RequireVerified = required }
}

// WithLogLevel sets the logging level ("debug", "info", "warn", "error").
func WithLogLevel(level string) Option {
	return func(c *Config) { c.Logging.Level = level }
}

// Environment helpers. Each overwrites the target only when the first
// present variable parses cleanly.

func envString(target *string, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			*target = v
			return
		}
	}
}

func envInt(target *int, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*target = n
			}
			return
		}
	}
}

func envFloat(target *float64, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*target = f
			}
			return
		}
	}
}

func envBool(target *bool, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			switch strings.ToLower(v) {
			case "true", "1", "yes", "on":
				*target = true
			case "false", "0", "no", "off":
				*target = false
			}
			return
		}
	}
}

func envDuration(target *time.Duration, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*target = d
			}
			return
		}
	}
}
