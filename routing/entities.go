package routing

import (
	"regexp"
	"strings"
)

// Entity extraction runs on the trimmed raw text rather than the
// lowercased form so extracted values keep their original casing
// ("Seoul", "AAPL"). Matching itself is case-insensitive.

// The captured group requires capitalization so prepositions followed
// by ordinary words ("in the morning") do not produce false locations.
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[Ii]n\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`),
	regexp.MustCompile(`\b[Aa]t\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`),
	regexp.MustCompile(`\b[Ff]or\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`),
}

var tickerPattern = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

// cryptoAssets maps mention keywords to canonical asset names.
var cryptoAssets = []struct {
	keyword string
	asset   string
}{
	{"bitcoin", "bitcoin"},
	{"btc", "bitcoin"},
	{"ethereum", "ethereum"},
	{"eth", "ethereum"},
	{"dogecoin", "dogecoin"},
	{"solana", "solana"},
}

// tickerStoplist holds uppercase words that look like tickers but are
// ordinary English in queries.
var tickerStoplist = map[string]bool{
	"THE": true, "AND": true, "FOR": true, "WHAT": true, "HOW": true,
	"BTC": true, "ETH": true, // handled by the asset table
}

// ExtractEntities pulls locations, crypto assets, and stock tickers out
// of the raw request text. Extraction is best effort; keys are simply
// absent when nothing matches.
func ExtractEntities(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	entities := make(map[string]string)

	for _, pattern := range locationPatterns {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			entities["location"] = m[1]
			break
		}
	}

	lower := strings.ToLower(raw)
	for _, ca := range cryptoAssets {
		if containsWord(lower, ca.keyword) {
			entities["asset"] = ca.asset
			break
		}
	}

	for _, m := range tickerPattern.FindAllString(raw, -1) {
		if !tickerStoplist[m] {
			entities["ticker"] = m
			break
		}
	}

	if len(entities) == 0 {
		return nil
	}
	return entities
}

// containsWord reports whether text contains term bounded by
// non-letter characters, so "eth" does not match inside "whether".
func containsWord(text, term string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], term)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(term)
		beforeOK := start == 0 || !isLetter(text[start-1])
		afterOK := end == len(text) || !isLetter(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
