package routing

import "strings"

// Normalize lowercases the input, trims surrounding whitespace, and
// collapses internal whitespace runs to single spaces. Punctuation is
// preserved; downstream matching is substring-based and tolerates it.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// stopwords are dropped during tokenization so ranking terms carry
// signal. The set is intentionally small; over-aggressive filtering
// hurts short queries more than it helps long ones.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true,
	"is": true, "are": true, "was": true, "be": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "and": true, "or": true,
	"what": true, "whats": true, "how": true, "me": true,
	"my": true, "i": true, "you": true, "please": true,
	"can": true, "could": true, "would": true, "do": true, "does": true,
	"tell": true, "show": true, "get": true, "give": true,
	"about": true, "it": true, "this": true, "that": true,
}

// Tokenize splits normalized text into query terms, dropping stopwords
// and anything shorter than two characters. Order follows the input.
func Tokenize(normalized string) []string {
	fields := strings.Fields(normalized)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:'\"()[]{}")
		if len(f) < 2 || stopwords[f] {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
