package routing

import (
	"strings"

	"github.com/switchyard-io/switchyard/core"
)

// intentToolKeywords biases tool selection toward tools whose names or
// descriptions mention the intent's subject matter.
var intentToolKeywords = map[string][]string{
	"weather_query":      {"weather", "forecast", "temperature"},
	"crypto_price_query": {"crypto", "coin", "price", "exchange"},
	"stock_price_query":  {"stock", "quote", "market", "price"},
	"news_query":         {"news", "headline", "article"},
	"translation_query":  {"translate", "language"},
	"purchase_request":   {"order", "buy", "purchase", "cart"},
	"web_search":         {"search", "query"},
}

const (
	toolIntentNameWeight = 10
	toolIntentDescWeight = 5
	toolCapNameWeight    = 8
	toolCapDescWeight    = 4
	toolQueryNameWeight  = 5
	toolQueryDescWeight  = 3
)

// SelectTool picks the most relevant tool a provider offers for the
// parsed request. A provider with no tools yields nil; when no tool
// scores above zero the provider's first tool is returned so a matched
// provider is still usable.
func SelectTool(provider *core.ProviderRecord, parsed *ParsedRequest) *core.ToolDescriptor {
	if provider == nil || len(provider.Tools) == 0 {
		return nil
	}

	intentKeywords := intentToolKeywords[parsed.Intent]
	queryTerms := Tokenize(parsed.NormalizedText)

	best := -1
	bestScore := 0
	for i := range provider.Tools {
		name := strings.ToLower(provider.Tools[i].Name)
		desc := strings.ToLower(provider.Tools[i].Description)

		score := 0
		for _, kw := range intentKeywords {
			if strings.Contains(name, kw) {
				score += toolIntentNameWeight
			}
			if strings.Contains(desc, kw) {
				score += toolIntentDescWeight
			}
		}
		for _, cap := range parsed.Capabilities {
			if strings.Contains(name, cap) {
				score += toolCapNameWeight
			}
			if strings.Contains(desc, cap) {
				score += toolCapDescWeight
			}
		}
		for _, term := range queryTerms {
			if strings.Contains(name, term) {
				score += toolQueryNameWeight
			}
			if strings.Contains(desc, term) {
				score += toolQueryDescWeight
			}
		}

		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	if best < 0 {
		return &provider.Tools[0]
	}
	return &provider.Tools[best]
}
