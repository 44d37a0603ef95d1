package core

import (
	"context"
)

// Logger interface - minimal structured logging interface
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
}

// Registry is the write surface of a provider catalog.
// The routing engine never uses it; registration belongs to whatever
// process owns the catalog (CRUD endpoints, scanners, seeders).
type Registry interface {
	Register(ctx context.Context, record *ProviderRecord) error
	Unregister(ctx context.Context, id string) error
}

// Catalog is the read-only query surface the routing engine consumes.
// Implementations must return deterministic ordering (ascending provider
// ID) so that ranking tie-breaks are reproducible across runs.
type Catalog interface {
	Query(ctx context.Context, filter CatalogFilter) ([]*ProviderRecord, error)
	Get(ctx context.Context, id string) (*ProviderRecord, error)
}

// Invoker executes a selected tool against a provider. The real
// implementation performs a network call; the mock implementation
// returns canned results for dev/test mode. The engine selects one
// implementation at construction time and never branches per call.
type Invoker interface {
	Invoke(ctx context.Context, provider *ProviderRecord, tool *ToolDescriptor, params map[string]interface{}) (*InvokeResult, error)
}

// Default no-op implementations

// NoOpLogger provides a no-op logger implementation
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, fields map[string]interface{})  {}
func (n *NoOpLogger) Error(msg string, fields map[string]interface{}) {}
func (n *NoOpLogger) Warn(msg string, fields map[string]interface{})  {}
func (n *NoOpLogger) Debug(msg string, fields map[string]interface{}) {}
