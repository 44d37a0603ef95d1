package routing

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/switchyard-io/switchyard/core"
)

// RankWeights holds the scoring constants used by the ranker. Exposed
// as a struct so deployments can tune relevance without code changes.
type RankWeights struct {
	CategoryExact      float64
	CategoryFuzzy      float64
	CapabilityToolTerm float64
	NameTerm           float64
	DescriptionTerm    float64
	ToolTextTerm       float64
	TagTerm            float64
	VerifiedBonus      float64
	PopularityFactor   float64
}

// DefaultRankWeights returns the standard scoring constants.
func DefaultRankWeights() RankWeights {
	return RankWeights{
		CategoryExact:      10,
		CategoryFuzzy:      5,
		CapabilityToolTerm: 3,
		NameTerm:           5,
		DescriptionTerm:    3,
		ToolTextTerm:       2,
		TagTerm:            1,
		VerifiedBonus:      10,
		PopularityFactor:   2,
	}
}

// Ranker scores catalog providers against a parsed request.
type Ranker struct {
	catalog  core.Catalog
	expander *Expander
	weights  RankWeights
	logger   core.Logger
}

// NewRanker creates a ranker over the given catalog with default
// weights.
func NewRanker(catalog core.Catalog, expander *Expander) *Ranker {
	return &Ranker{
		catalog:  catalog,
		expander: expander,
		weights:  DefaultRankWeights(),
		logger:   &core.NoOpLogger{},
	}
}

// SetWeights replaces the scoring constants.
func (r *Ranker) SetWeights(w RankWeights) {
	r.weights = w
}

// SetLogger sets the logger for the ranker.
func (r *Ranker) SetLogger(logger core.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Rank queries the catalog and returns candidates scored against the
// parsed request, best first. The first pass filters by category and
// capabilities; when it yields nothing the filter is relaxed to the
// whole catalog before giving up, so a sparse catalog still produces
// fuzzy matches. Candidates scoring zero or below are excluded.
func (r *Ranker) Rank(ctx context.Context, parsed *ParsedRequest, requireVerified bool) ([]ScoredCandidate, error) {
	capTerms := r.expander.ExpandCapabilities(parsed.Capabilities)
	queryTerms := r.expander.ExpandTerms(Tokenize(parsed.NormalizedText))

	filter := core.CatalogFilter{
		Category:        parsed.Category,
		CapabilityTerms: capTerms,
		QueryTerms:      queryTerms,
		RequireVerified: requireVerified,
	}

	providers, err := r.catalog.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	candidates := r.score(providers, parsed, capTerms, queryTerms)
	if len(candidates) == 0 {
		relaxed := core.CatalogFilter{RequireVerified: requireVerified}
		providers, err = r.catalog.Query(ctx, relaxed)
		if err != nil {
			return nil, err
		}
		candidates = r.score(providers, parsed, capTerms, queryTerms)
		if len(candidates) > 0 {
			r.logger.Debug("Relaxed catalog filter produced candidates", map[string]interface{}{
				"intent":     parsed.Intent,
				"candidates": len(candidates),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Provider.ID < candidates[j].Provider.ID
	})
	return candidates, nil
}

func (r *Ranker) score(providers []*core.ProviderRecord, parsed *ParsedRequest, capTerms, queryTerms []string) []ScoredCandidate {
	candidates := make([]ScoredCandidate, 0, len(providers))
	for _, p := range providers {
		score := r.ScoreProvider(p, parsed.Category, capTerms, queryTerms)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, ScoredCandidate{Provider: p, Score: score})
	}
	return candidates
}

// ScoreProvider computes the relevance score of one provider given the
// request category and the already-expanded capability and query terms.
//
// Category contributes the maximum of exact and fuzzy match, not their
// sum; an exact match already implies the fuzzy one. Everything else is
// additive per matched term, plus a verified bonus and a logarithmic
// popularity boost.
func (r *Ranker) ScoreProvider(p *core.ProviderRecord, category string, capTerms, queryTerms []string) float64 {
	var score float64

	pcat := strings.ToLower(p.Category)
	cat := strings.ToLower(category)
	if cat != "" && pcat != "" {
		switch {
		case pcat == cat:
			score += r.weights.CategoryExact
		case strings.Contains(pcat, cat) || strings.Contains(cat, pcat):
			score += r.weights.CategoryFuzzy
		}
	}

	name := strings.ToLower(p.DisplayName)
	desc := strings.ToLower(p.Description)
	toolText := toolSearchText(p)
	tags := strings.ToLower(strings.Join(p.Tags, " "))

	for _, term := range capTerms {
		if strings.Contains(toolText, term) {
			score += r.weights.CapabilityToolTerm
		}
	}

	for _, term := range queryTerms {
		if strings.Contains(name, term) {
			score += r.weights.NameTerm
		}
		if strings.Contains(desc, term) {
			score += r.weights.DescriptionTerm
		}
		if strings.Contains(toolText, term) {
			score += r.weights.ToolTextTerm
		}
		if strings.Contains(tags, term) {
			score += r.weights.TagTerm
		}
	}

	if score <= 0 {
		return 0
	}

	score += math.Log10(float64(p.UsageCount)+1) * r.weights.PopularityFactor
	if p.Verified {
		score += r.weights.VerifiedBonus
	}
	return score
}

func toolSearchText(p *core.ProviderRecord) string {
	var b strings.Builder
	for i := range p.Tools {
		b.WriteString(strings.ToLower(p.Tools[i].Name))
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(p.Tools[i].Description))
		b.WriteByte(' ')
	}
	return b.String()
}
