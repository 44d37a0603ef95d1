// Package switchyard provides a lightweight meta-module that re-exports
// from submodules. This is the main entry point for the Switchyard
// routing engine. Users should import specific packages based on their
// needs:
//   - github.com/switchyard-io/switchyard/core - catalog, config, invokers
//   - github.com/switchyard-io/switchyard/routing - the routing engine
//   - github.com/switchyard-io/switchyard/resilience - retry and circuit breaking
package switchyard

import (
	"context"

	"github.com/switchyard-io/switchyard/core"
	"github.com/switchyard-io/switchyard/routing"
)

// Version information for the Switchyard routing engine
const (
	// Version is the current engine version
	Version = "development"

	// APIVersion is the current API version
	APIVersion = "v1alpha1"
)

// Re-export core types
type (
	// Catalog types
	ProviderRecord = core.ProviderRecord
	ToolDescriptor = core.ToolDescriptor
	CatalogFilter  = core.CatalogFilter
	InvokeResult   = core.InvokeResult

	// Configuration types
	Config = core.Config
	Option = core.Option

	// Interfaces
	Logger   = core.Logger
	Catalog  = core.Catalog
	Registry = core.Registry
	Invoker  = core.Invoker

	// Routing types
	Engine        = routing.Engine
	RouteRequest  = routing.RouteRequest
	RouteResponse = routing.RouteResponse
	ParsedRequest = routing.ParsedRequest
	StrategyKind  = routing.StrategyKind
)

// Re-export strategy constants
const (
	StrategyDirectExecution = routing.StrategyDirectExecution
	StrategyPresentOptions  = routing.StrategyPresentOptions
	StrategyFallback        = routing.StrategyFallback
)

// Re-export constructor and configuration functions
var (
	NewConfig           = core.NewConfig
	DefaultConfig       = core.DefaultConfig
	NewMemoryCatalog    = core.NewMemoryCatalog
	NewRedisCatalog     = core.NewRedisCatalog
	NewHTTPInvoker      = core.NewHTTPInvoker
	NewMockInvoker      = core.NewMockInvoker
	NewEngine           = routing.NewEngine
	NewEngineFromConfig = routing.NewEngineFromConfig

	// Configuration options
	WithName            = core.WithName
	WithCatalogProvider = core.WithCatalogProvider
	WithRedisURL        = core.WithRedisURL
	WithInvokerMode     = core.WithInvokerMode
	WithStrictMode      = core.WithStrictMode
	WithMaxCandidates   = core.WithMaxCandidates
)

// New builds a routing engine from functional options. It is the
// shortest path from zero to a working engine:
//
//	engine, err := switchyard.New(context.Background(),
//	    switchyard.WithInvokerMode("mock"),
//	)
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	cfg, err := core.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return routing.NewEngineFromConfig(ctx, cfg)
}
