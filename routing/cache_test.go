package routing

import (
	"fmt"
	"testing"
	"time"
)

func cachedResponse(provider string) *RouteResponse {
	return &RouteResponse{
		Success: true,
		Metadata: ResponseMetadata{
			ChosenProvider: provider,
		},
	}
}

func TestFingerprintStableAcrossRawTextVariants(t *testing.T) {
	a := &ParsedRequest{
		RawText:        "Weather in Seoul",
		NormalizedText: "weather in seoul",
		Intent:         "weather_query",
		Category:       "weather",
		Capabilities:   []string{"weather"},
	}
	b := &ParsedRequest{
		RawText:        "  WEATHER   in Seoul  ",
		NormalizedText: "weather in seoul",
		Intent:         "weather_query",
		Category:       "weather",
		Capabilities:   []string{"weather"},
	}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("fingerprints differ for requests that parse identically")
	}
}

func TestFingerprintCapabilityOrderIndependent(t *testing.T) {
	a := &ParsedRequest{Intent: "x", Capabilities: []string{"one", "two"}}
	b := &ParsedRequest{Intent: "x", Capabilities: []string{"two", "one"}}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("fingerprint depends on capability order")
	}
}

func TestFingerprintDistinguishesQueries(t *testing.T) {
	a := &ParsedRequest{Intent: "weather_query", NormalizedText: "weather in seoul"}
	b := &ParsedRequest{Intent: "weather_query", NormalizedText: "weather in tokyo"}

	if Fingerprint(a) == Fingerprint(b) {
		t.Error("different queries share a fingerprint")
	}
}

func TestFingerprintLength(t *testing.T) {
	fp := Fingerprint(&ParsedRequest{Intent: "weather_query"})
	if len(fp) != 16 {
		t.Errorf("fingerprint length = %d, want 16", len(fp))
	}
}

func TestCacheRoundtrip(t *testing.T) {
	cache := NewMemoryResponseCache(time.Minute, 10, 0)
	defer cache.Stop()

	cache.Put("fp-1", cachedResponse("weather-api"))

	got, age, ok := cache.Get("fp-1")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got.Metadata.ChosenProvider != "weather-api" {
		t.Errorf("cached provider = %s, want weather-api", got.Metadata.ChosenProvider)
	}
	if age < 0 || age > time.Minute {
		t.Errorf("implausible cache age %v", age)
	}
}

func TestCacheMiss(t *testing.T) {
	cache := NewMemoryResponseCache(time.Minute, 10, 0)
	defer cache.Stop()

	if _, _, ok := cache.Get("absent"); ok {
		t.Error("unexpected hit for absent key")
	}

	stats := cache.Stats()
	if stats.Misses != 1 {
		t.Errorf("misses = %d, want 1", stats.Misses)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewMemoryResponseCache(10*time.Millisecond, 10, 0)
	defer cache.Stop()

	cache.Put("fp-1", cachedResponse("weather-api"))
	time.Sleep(25 * time.Millisecond)

	if _, _, ok := cache.Get("fp-1"); ok {
		t.Error("expected expired entry to be treated as absent")
	}
}

func TestCacheSizeBound(t *testing.T) {
	cache := NewMemoryResponseCache(time.Minute, 3, 0)
	defer cache.Stop()

	for i := 0; i < 10; i++ {
		cache.Put(fmt.Sprintf("fp-%d", i), cachedResponse("p"))
	}

	if entries := cache.Stats().Entries; entries > 3 {
		t.Errorf("cache holds %d entries, bound is 3", entries)
	}
}

func TestCacheEvict(t *testing.T) {
	cache := NewMemoryResponseCache(time.Minute, 10, 0)
	defer cache.Stop()

	cache.Put("fp-1", cachedResponse("weather-api"))
	cache.Evict("fp-1")

	if _, _, ok := cache.Get("fp-1"); ok {
		t.Error("expected evicted entry to be absent")
	}
	if evictions := cache.Stats().Evictions; evictions != 1 {
		t.Errorf("evictions = %d, want 1", evictions)
	}
}

func TestCacheSweeperStops(t *testing.T) {
	cache := NewMemoryResponseCache(time.Minute, 10, 5*time.Millisecond)
	cache.Stop()
	// Second Stop must not panic.
	cache.Stop()
}
