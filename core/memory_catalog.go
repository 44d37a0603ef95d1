package core

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// MemoryCatalog is an in-memory catalog backend for tests and
// single-process deployments. It is safe for concurrent use.
type MemoryCatalog struct {
	mu        sync.RWMutex
	providers map[string]*ProviderRecord
	logger    Logger
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		providers: make(map[string]*ProviderRecord),
	}
}

// SetLogger sets the logger for the catalog.
func (m *MemoryCatalog) SetLogger(logger Logger) {
	if logger == nil {
		m.logger = &NoOpLogger{}
	} else {
		m.logger = logger
	}
}

// Register adds or replaces a provider record.
func (m *MemoryCatalog) Register(ctx context.Context, record *ProviderRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("provider record requires an id: %w", ErrInvalidConfiguration)
	}

	m.mu.Lock()
	m.providers[record.ID] = record.Clone()
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Debug("Provider registered", map[string]interface{}{
			"provider_id": record.ID,
			"category":    record.Category,
			"tools_count": len(record.Tools),
			"verified":    record.Verified,
		})
	}
	return nil
}

// Unregister removes a provider record. Removing an unknown ID is not
// an error.
func (m *MemoryCatalog) Unregister(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.providers, id)
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the record with the given ID.
func (m *MemoryCatalog) Get(ctx context.Context, id string) (*ProviderRecord, error) {
	m.mu.RLock()
	record, ok := m.providers[id]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("provider %s: %w", id, ErrProviderNotFound)
	}
	return record.Clone(), nil
}

// Query returns copies of all records matching the filter, ordered
// ascending by provider ID.
func (m *MemoryCatalog) Query(ctx context.Context, filter CatalogFilter) ([]*ProviderRecord, error) {
	m.mu.RLock()
	var matched []*ProviderRecord
	for _, record := range m.providers {
		if MatchesFilter(record, filter) {
			matched = append(matched, record.Clone())
		}
	}
	m.mu.RUnlock()

	SortProviders(matched)
	return matched, nil
}

// Len returns the number of registered providers.
func (m *MemoryCatalog) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.providers)
}

// catalogSeed is the YAML shape of a provider seed file.
type catalogSeed struct {
	Providers []*ProviderRecord `yaml:"providers"`
}

// LoadCatalogFile parses a YAML seed file of provider records.
//
// File shape:
//
//	providers:
//	  - id: weather-api
//	    display_name: Weather API
//	    category: weather
//	    tags: [weather, forecast]
//	    tools:
//	      - name: get_current_weather
//	        description: Current conditions for a location
func LoadCatalogFile(path string) ([]*ProviderRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog seed %s: %w", path, err)
	}

	var seed catalogSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog seed %s: %w", path, err)
	}
	return seed.Providers, nil
}

// LoadFile registers every record from a YAML seed file.
func (m *MemoryCatalog) LoadFile(ctx context.Context, path string) error {
	records, err := LoadCatalogFile(path)
	if err != nil {
		return err
	}
	for _, record := range records {
		if err := m.Register(ctx, record); err != nil {
			return fmt.Errorf("failed to register seeded provider %q: %w", record.ID, err)
		}
	}
	if m.logger != nil {
		m.logger.Info("Catalog seeded from file", map[string]interface{}{
			"path":      path,
			"providers": len(records),
		})
	}
	return nil
}
