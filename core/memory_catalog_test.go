package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProviders() []*ProviderRecord {
	return []*ProviderRecord{
		{
			ID:          "weather-api",
			DisplayName: "Weather API",
			Description: "Current conditions and forecasts worldwide",
			Category:    "weather",
			Tags:        []string{"weather", "forecast"},
			Tools: []ToolDescriptor{
				{Name: "get_current_weather", Description: "Current conditions for a location"},
				{Name: "get_forecast", Description: "Multi-day forecast for a location"},
			},
			Verified:   true,
			UsageCount: 5000,
		},
		{
			ID:          "crypto-tracker",
			DisplayName: "Crypto Tracker",
			Description: "Cryptocurrency prices and exchange rates",
			Category:    "finance",
			Tags:        []string{"crypto", "price"},
			Tools: []ToolDescriptor{
				{Name: "get_coin_price", Description: "Spot price for a coin"},
			},
			Verified:   false,
			UsageCount: 120,
		},
		{
			ID:          "news-wire",
			DisplayName: "News Wire",
			Description: "Breaking news headlines",
			Category:    "news",
			Tags:        []string{"news", "headlines"},
			Tools: []ToolDescriptor{
				{Name: "get_headlines", Description: "Latest headlines by topic"},
			},
			Verified:   true,
			UsageCount: 900,
		},
	}
}

func seedCatalog(t *testing.T) *MemoryCatalog {
	t.Helper()
	catalog := NewMemoryCatalog()
	for _, p := range testProviders() {
		require.NoError(t, catalog.Register(context.Background(), p))
	}
	return catalog
}

func TestMemoryCatalogRegisterAndGet(t *testing.T) {
	catalog := seedCatalog(t)

	got, err := catalog.Get(context.Background(), "weather-api")
	require.NoError(t, err)
	assert.Equal(t, "Weather API", got.DisplayName)
	assert.Len(t, got.Tools, 2)

	// Mutating the returned copy must not affect the catalog.
	got.DisplayName = "mutated"
	again, err := catalog.Get(context.Background(), "weather-api")
	require.NoError(t, err)
	assert.Equal(t, "Weather API", again.DisplayName)
}

func TestMemoryCatalogGetNotFound(t *testing.T) {
	catalog := NewMemoryCatalog()

	_, err := catalog.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestMemoryCatalogRegisterRequiresID(t *testing.T) {
	catalog := NewMemoryCatalog()

	err := catalog.Register(context.Background(), &ProviderRecord{DisplayName: "nameless"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestMemoryCatalogUnregister(t *testing.T) {
	catalog := seedCatalog(t)

	require.NoError(t, catalog.Unregister(context.Background(), "news-wire"))
	_, err := catalog.Get(context.Background(), "news-wire")
	assert.ErrorIs(t, err, ErrProviderNotFound)

	// Unknown IDs are a no-op.
	require.NoError(t, catalog.Unregister(context.Background(), "ghost"))
}

func TestMemoryCatalogQueryEmptyFilterListsAll(t *testing.T) {
	catalog := seedCatalog(t)

	records, err := catalog.Query(context.Background(), CatalogFilter{})
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Deterministic ascending order by ID.
	assert.Equal(t, "crypto-tracker", records[0].ID)
	assert.Equal(t, "news-wire", records[1].ID)
	assert.Equal(t, "weather-api", records[2].ID)
}

func TestMemoryCatalogQueryByCategory(t *testing.T) {
	catalog := seedCatalog(t)

	records, err := catalog.Query(context.Background(), CatalogFilter{Category: "weather"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "weather-api", records[0].ID)
}

func TestMemoryCatalogQueryRequireVerified(t *testing.T) {
	catalog := seedCatalog(t)

	records, err := catalog.Query(context.Background(), CatalogFilter{RequireVerified: true})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.True(t, r.Verified)
	}
}

func TestMemoryCatalogQueryByTerms(t *testing.T) {
	catalog := seedCatalog(t)

	records, err := catalog.Query(context.Background(), CatalogFilter{
		QueryTerms: []string{"cryptocurrency"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "crypto-tracker", records[0].ID)
}

func TestMemoryCatalogLoadFile(t *testing.T) {
	seed := `providers:
  - id: translator
    display_name: Translator
    description: Text translation between languages
    category: language
    tags: [translation, language]
    verified: true
    usage_count: 40
    tools:
      - name: translate_text
        description: Translate text to a target language
  - id: shop-bot
    display_name: Shop Bot
    description: Product ordering
    category: commerce
    tools:
      - name: place_order
        description: Place a product order
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	catalog := NewMemoryCatalog()
	require.NoError(t, catalog.LoadFile(context.Background(), path))
	assert.Equal(t, 2, catalog.Len())

	got, err := catalog.Get(context.Background(), "translator")
	require.NoError(t, err)
	assert.Equal(t, "language", got.Category)
	assert.True(t, got.Verified)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "translate_text", got.Tools[0].Name)
}

func TestMemoryCatalogLoadFileMissing(t *testing.T) {
	catalog := NewMemoryCatalog()
	err := catalog.LoadFile(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
