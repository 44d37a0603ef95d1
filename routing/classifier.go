package routing

// FallbackIntent is assigned when no rule matches. Its low confidence
// steers strategy selection toward the fallback chain.
const FallbackIntent = "general_query"

const fallbackConfidence = 0.3

// intentRule matches normalized text against a keyword list. The first
// rule with any keyword hit wins, so rules are ordered most-specific
// first.
type intentRule struct {
	intent     string
	confidence float64
	keywords   []string
}

var intentRules = []intentRule{
	{
		intent:     "weather_query",
		confidence: 0.95,
		keywords:   []string{"weather", "forecast", "temperature", "rain", "snow", "humidity", "climate"},
	},
	{
		intent:     "crypto_price_query",
		confidence: 0.9,
		keywords:   []string{"bitcoin", "btc", "ethereum", "eth", "crypto", "cryptocurrency", "dogecoin", "solana"},
	},
	{
		intent:     "stock_price_query",
		confidence: 0.9,
		keywords:   []string{"stock", "shares", "equity", "nasdaq", "dow jones", "s&p"},
	},
	{
		intent:     "news_query",
		confidence: 0.85,
		keywords:   []string{"news", "headline", "headlines", "article", "breaking"},
	},
	{
		intent:     "translation_query",
		confidence: 0.9,
		keywords:   []string{"translate", "translation", "in spanish", "in french", "in japanese", "in german"},
	},
	{
		intent:     "purchase_request",
		confidence: 0.8,
		keywords:   []string{"buy", "purchase", "order", "book a", "reserve"},
	},
	{
		intent:     "web_search",
		confidence: 0.7,
		keywords:   []string{"search", "find", "look up", "lookup", "google"},
	},
}

// Classify assigns an intent label to normalized text. Rules are
// evaluated in order and the first keyword hit decides; unmatched or
// empty input gets the fallback intent. Keywords match on word
// boundaries so "eth" never fires inside "method".
func Classify(normalized string) IntentLabel {
	if normalized == "" {
		return IntentLabel{Name: FallbackIntent, Confidence: fallbackConfidence}
	}
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if containsWord(normalized, kw) {
				return IntentLabel{Name: rule.intent, Confidence: rule.confidence}
			}
		}
	}
	return IntentLabel{Name: FallbackIntent, Confidence: fallbackConfidence}
}
