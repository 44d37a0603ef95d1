package routing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/switchyard-io/switchyard/core"
)

func TestNewEngineFromConfig(t *testing.T) {
	seed := `providers:
  - id: weather-api
    display_name: Weather API
    description: Current weather conditions and forecasts
    category: weather
    tags: [weather, forecast]
    verified: true
    usage_count: 5000
    tools:
      - name: get_current_weather
        description: Current weather for a location
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := core.NewConfig(
		core.WithInvokerMode(core.InvokerModeMock),
		core.WithCatalogSeedFile(path),
		core.WithRequireVerified(true),
	)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	engine, err := NewEngineFromConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewEngineFromConfig: %v", err)
	}

	resp, err := engine.Route(context.Background(), RouteRequest{Query: "weather in Seoul"})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Error)
	}
	if resp.Metadata.ChosenProvider != "weather-api" {
		t.Errorf("chosen provider = %s, want weather-api", resp.Metadata.ChosenProvider)
	}
}

func TestNewEngineFromConfigNilUsesDefaults(t *testing.T) {
	engine, err := NewEngineFromConfig(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewEngineFromConfig(nil): %v", err)
	}
	if engine == nil {
		t.Fatal("expected an engine")
	}
}

func TestNewEngineFromConfigRejectsInvalidConfig(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Catalog.Provider = "etcd"

	if _, err := NewEngineFromConfig(context.Background(), cfg); err == nil {
		t.Fatal("expected a configuration error")
	}
}
