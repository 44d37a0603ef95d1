package routing

// intentCapabilities maps each known intent to the capability names a
// provider must advertise to serve it. Unknown intents fall back to the
// generic capability so the ranker still has something to match on.
var intentCapabilities = map[string][]string{
	"weather_query":      {"weather"},
	"crypto_price_query": {"crypto_price"},
	"stock_price_query":  {"stock_price"},
	"news_query":         {"news"},
	"translation_query":  {"translation"},
	"purchase_request":   {"commerce"},
	"web_search":         {"search"},
}

var defaultCapabilities = []string{"general"}

// CapabilitiesForIntent returns the capability requirements for an
// intent.
func CapabilitiesForIntent(intent string) []string {
	if caps, ok := intentCapabilities[intent]; ok {
		return append([]string(nil), caps...)
	}
	return append([]string(nil), defaultCapabilities...)
}

// intentCategory maps intents to catalog categories used for ranking
// boosts. Intents without a category rank on text relevance alone.
var intentCategory = map[string]string{
	"weather_query":      "weather",
	"crypto_price_query": "finance",
	"stock_price_query":  "finance",
	"news_query":         "news",
	"translation_query":  "language",
	"purchase_request":   "commerce",
	"web_search":         "search",
}

// CategoryForIntent returns the catalog category for an intent, or ""
// when no category applies.
func CategoryForIntent(intent string) string {
	return intentCategory[intent]
}

// presentOptionsIntents are transactional: the engine should surface
// candidates rather than executing side effects on the user's behalf.
var presentOptionsIntents = map[string]bool{
	"purchase_request": true,
}

// directExecutionIntents are informational and safe to execute
// immediately against the top candidate.
var directExecutionIntents = map[string]bool{
	"weather_query":      true,
	"crypto_price_query": true,
	"stock_price_query":  true,
	"news_query":         true,
	"translation_query":  true,
	"web_search":         true,
}

// SelectStrategy picks the execution strategy for a classified intent.
// Anything not explicitly informational or transactional walks the
// fallback chain.
func SelectStrategy(intent string) StrategyKind {
	switch {
	case presentOptionsIntents[intent]:
		return StrategyPresentOptions
	case directExecutionIntents[intent]:
		return StrategyDirectExecution
	default:
		return StrategyFallback
	}
}
