package routing

// Expander widens query terms and capability names over closed synonym
// groups. Expansion is bidirectional within a group and idempotent:
// expanding an already-expanded set adds nothing new.
type Expander struct {
	terms map[string][]string
	caps  map[string][]string
}

var termGroups = [][]string{
	{"bitcoin", "btc", "crypto", "cryptocurrency"},
	{"weather", "forecast", "temperature", "climate"},
	{"stock", "equity", "share", "shares"},
	{"news", "headlines", "articles"},
	{"search", "find", "lookup"},
	{"price", "rate", "quote", "value"},
	{"translate", "translation"},
}

var capabilityGroups = [][]string{
	{"weather", "weather_data", "forecast"},
	{"crypto_price", "cryptocurrency", "exchange_rate"},
	{"stock_price", "market_data", "quotes"},
	{"news", "news_feed", "headlines"},
	{"translation", "language"},
	{"search", "web_search"},
	{"commerce", "shopping", "ordering"},
}

// NewExpander builds an expander over the built-in synonym groups.
func NewExpander() *Expander {
	return &Expander{
		terms: indexGroups(termGroups),
		caps:  indexGroups(capabilityGroups),
	}
}

func indexGroups(groups [][]string) map[string][]string {
	idx := make(map[string][]string)
	for _, group := range groups {
		for _, member := range group {
			idx[member] = group
		}
	}
	return idx
}

// ExpandTerms returns the input terms plus every synonym of each term,
// deduplicated, preserving first-seen order.
func (e *Expander) ExpandTerms(terms []string) []string {
	return expand(terms, e.terms)
}

// ExpandCapabilities returns the input capabilities plus all related
// capability names, deduplicated, preserving first-seen order.
func (e *Expander) ExpandCapabilities(capabilities []string) []string {
	return expand(capabilities, e.caps)
}

func expand(input []string, groups map[string][]string) []string {
	seen := make(map[string]bool, len(input)*2)
	out := make([]string, 0, len(input)*2)
	for _, item := range input {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
		for _, syn := range groups[item] {
			if !seen[syn] {
				seen[syn] = true
				out = append(out, syn)
			}
		}
	}
	return out
}
