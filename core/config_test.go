package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "switchyard", cfg.Name)
	assert.Equal(t, CatalogProviderMemory, cfg.Catalog.Provider)
	assert.Equal(t, InvokerModeHTTP, cfg.Invoker.Mode)
	assert.False(t, cfg.Invoker.Strict)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 1000, cfg.Cache.MaxEntries)
	assert.Equal(t, 3, cfg.Routing.MaxCandidates)
	assert.True(t, cfg.Routing.RequireVerified)
	assert.Equal(t, 3, cfg.Resilience.MaxAttempts)
	assert.False(t, cfg.Resilience.CircuitBreakerEnabled)
}

func TestNewConfigWithOptions(t *testing.T) {
	cfg, err := NewConfig(
		WithName("router-test"),
		WithInvokerMode(InvokerModeMock),
		WithStrictMode(true),
		WithMaxCandidates(5),
		WithCacheTTL(time.Minute),
	)
	require.NoError(t, err)

	assert.Equal(t, "router-test", cfg.Name)
	assert.Equal(t, InvokerModeMock, cfg.Invoker.Mode)
	assert.True(t, cfg.Invoker.Strict)
	assert.Equal(t, 5, cfg.Routing.MaxCandidates)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
}

func TestNewConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("SWITCHYARD_NAME", "env-router")
	t.Setenv("SWITCHYARD_INVOKER_MODE", InvokerModeMock)
	t.Setenv("SWITCHYARD_MAX_CANDIDATES", "7")
	t.Setenv("SWITCHYARD_CACHE_TTL", "90s")
	t.Setenv("SWITCHYARD_REQUIRE_VERIFIED", "false")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "env-router", cfg.Name)
	assert.Equal(t, InvokerModeMock, cfg.Invoker.Mode)
	assert.Equal(t, 7, cfg.Routing.MaxCandidates)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.False(t, cfg.Routing.RequireVerified)
}

func TestOptionsOverrideEnvironment(t *testing.T) {
	t.Setenv("SWITCHYARD_NAME", "env-router")

	cfg, err := NewConfig(WithName("option-router"))
	require.NoError(t, err)

	assert.Equal(t, "option-router", cfg.Name)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{
			name: "unknown catalog provider",
			opts: []Option{WithCatalogProvider("etcd")},
		},
		{
			name: "redis catalog without URL",
			opts: []Option{WithCatalogProvider(CatalogProviderRedis)},
		},
		{
			name: "unknown invoker mode",
			opts: []Option{WithInvokerMode("grpc")},
		},
		{
			name: "non-positive cache TTL",
			opts: []Option{WithCacheTTL(0)},
		},
		{
			name: "zero max candidates",
			opts: []Option{WithMaxCandidates(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.opts...)
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err), "expected a configuration error, got %v", err)
		})
	}
}

func TestUnparseableEnvValuesAreIgnored(t *testing.T) {
	t.Setenv("SWITCHYARD_MAX_CANDIDATES", "not-a-number")
	t.Setenv("SWITCHYARD_CACHE_TTL", "soon")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Routing.MaxCandidates)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}
