package routing

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/switchyard-io/switchyard/core"
)

func rankingCatalog(t *testing.T) *core.MemoryCatalog {
	t.Helper()
	catalog := core.NewMemoryCatalog()
	providers := []*core.ProviderRecord{
		{
			ID:          "crypto-tracker",
			DisplayName: "Crypto Tracker",
			Description: "Cryptocurrency prices",
			Category:    "finance",
			Tags:        []string{"crypto", "price"},
			Tools: []core.ToolDescriptor{
				{Name: "get_coin_price", Description: "Spot price for a coin"},
			},
			Verified:   true,
			UsageCount: 0,
		},
		{
			ID:          "coin-watch",
			DisplayName: "Crypto Tracker",
			Description: "Cryptocurrency prices",
			Category:    "finance",
			Tags:        []string{"crypto", "price"},
			Tools: []core.ToolDescriptor{
				{Name: "get_coin_price", Description: "Spot price for a coin"},
			},
			Verified:   false,
			UsageCount: 0,
		},
		{
			ID:          "weather-api",
			DisplayName: "Weather API",
			Description: "Forecasts worldwide",
			Category:    "weather",
			Tags:        []string{"weather"},
			Tools: []core.ToolDescriptor{
				{Name: "get_forecast", Description: "Multi-day forecast"},
			},
			Verified:   true,
			UsageCount: 5000,
		},
	}
	for _, p := range providers {
		if err := catalog.Register(context.Background(), p); err != nil {
			t.Fatalf("register %s: %v", p.ID, err)
		}
	}
	return catalog
}

func cryptoParsed() *ParsedRequest {
	return &ParsedRequest{
		RawText:        "bitcoin price",
		NormalizedText: "bitcoin price",
		Intent:         "crypto_price_query",
		Confidence:     0.9,
		Capabilities:   []string{"crypto_price"},
		Category:       "finance",
		Strategy:       StrategyDirectExecution,
	}
}

func TestRankOrdersByScore(t *testing.T) {
	ranker := NewRanker(rankingCatalog(t), NewExpander())

	candidates, err := ranker.Rank(context.Background(), cryptoParsed(), false)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(candidates) < 2 {
		t.Fatalf("expected at least 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Provider.ID != "crypto-tracker" {
		t.Errorf("top candidate = %s, want crypto-tracker", candidates[0].Provider.ID)
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score > candidates[i-1].Score {
			t.Errorf("candidates out of order at %d: %v > %v", i, candidates[i].Score, candidates[i-1].Score)
		}
	}
}

func TestRankDeterministic(t *testing.T) {
	ranker := NewRanker(rankingCatalog(t), NewExpander())

	first, err := ranker.Rank(context.Background(), cryptoParsed(), false)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	second, err := ranker.Rank(context.Background(), cryptoParsed(), false)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}

	var firstIDs, secondIDs []string
	for _, c := range first {
		firstIDs = append(firstIDs, c.Provider.ID)
	}
	for _, c := range second {
		secondIDs = append(secondIDs, c.Provider.ID)
	}
	if !reflect.DeepEqual(firstIDs, secondIDs) {
		t.Errorf("ranking not deterministic: %v vs %v", firstIDs, secondIDs)
	}
}

func TestVerifiedBonusExactDifference(t *testing.T) {
	// crypto-tracker and coin-watch differ only in ID and the verified
	// flag, so the score difference is exactly the verified bonus.
	catalog := rankingCatalog(t)
	ranker := NewRanker(catalog, NewExpander())

	parsed := cryptoParsed()
	expander := NewExpander()
	capTerms := expander.ExpandCapabilities(parsed.Capabilities)
	queryTerms := expander.ExpandTerms(Tokenize(parsed.NormalizedText))

	verified, err := catalog.Get(context.Background(), "crypto-tracker")
	if err != nil {
		t.Fatal(err)
	}
	unverified, err := catalog.Get(context.Background(), "coin-watch")
	if err != nil {
		t.Fatal(err)
	}

	diff := ranker.ScoreProvider(verified, parsed.Category, capTerms, queryTerms) -
		ranker.ScoreProvider(unverified, parsed.Category, capTerms, queryTerms)
	if diff != DefaultRankWeights().VerifiedBonus {
		t.Errorf("verified bonus = %v, want exactly %v", diff, DefaultRankWeights().VerifiedBonus)
	}
}

func TestScoreProviderExactArithmetic(t *testing.T) {
	ranker := NewRanker(core.NewMemoryCatalog(), NewExpander())

	provider := &core.ProviderRecord{
		ID:          "crypto-tracker",
		DisplayName: "Crypto Tracker",
		Description: "Cryptocurrency prices",
		Category:    "finance",
		Tags:        []string{"crypto", "price"},
		Tools: []core.ToolDescriptor{
			{Name: "get_coin_price", Description: "Spot price for a coin"},
		},
		Verified:   true,
		UsageCount: 999,
	}

	// category exact:                      10
	// cap term "cryptocurrency" in desc:    0 (cap terms only match tool text)
	// query "crypto" in name:               5
	// query "crypto" in desc:               3
	// query "crypto" in tags:               1
	// query "price" in desc:                3
	// query "price" in tool text:           2
	// query "price" in tags:                1
	// popularity log10(1000)*2:             6
	// verified bonus:                      10
	want := 10.0 + 5 + 3 + 1 + 3 + 2 + 1 + 6 + 10

	got := ranker.ScoreProvider(provider, "finance", []string{"crypto_price"}, []string{"crypto", "price"})
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("ScoreProvider = %v, want %v", got, want)
	}
}

func TestScoreProviderCategoryMaxNotSum(t *testing.T) {
	ranker := NewRanker(core.NewMemoryCatalog(), NewExpander())

	provider := &core.ProviderRecord{
		ID:       "fin",
		Category: "finance",
		Tags:     []string{"quotes"},
		Tools: []core.ToolDescriptor{
			{Name: "get_quotes", Description: "quotes"},
		},
	}

	// Exact category match must contribute 10, not 10+5 for also
	// satisfying the fuzzy condition. "quotes" adds tool text (+2)
	// and tags (+1).
	got := ranker.ScoreProvider(provider, "finance", nil, []string{"quotes"})
	if got != 10+2+1 {
		t.Errorf("ScoreProvider = %v, want %v", got, 10+2+1)
	}
}

func TestRankExcludesZeroScores(t *testing.T) {
	catalog := core.NewMemoryCatalog()
	err := catalog.Register(context.Background(), &core.ProviderRecord{
		ID:          "knitting-club",
		DisplayName: "Knitting Club",
		Description: "Patterns and yarn",
		Category:    "hobby",
		Tools: []core.ToolDescriptor{
			{Name: "get_pattern", Description: "Knitting patterns"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ranker := NewRanker(catalog, NewExpander())
	candidates, err := ranker.Rank(context.Background(), cryptoParsed(), false)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates for unrelated catalog, got %d", len(candidates))
	}
}

func TestRankTieBreaksByID(t *testing.T) {
	catalog := core.NewMemoryCatalog()
	for _, id := range []string{"z-coins", "a-coins", "m-coins"} {
		err := catalog.Register(context.Background(), &core.ProviderRecord{
			ID:          id,
			DisplayName: "Coins",
			Description: "Cryptocurrency prices",
			Category:    "finance",
			Tags:        []string{"crypto"},
			Tools: []core.ToolDescriptor{
				{Name: "get_coin_price", Description: "Spot price"},
			},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	ranker := NewRanker(catalog, NewExpander())
	candidates, err := ranker.Rank(context.Background(), cryptoParsed(), false)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	wantOrder := []string{"a-coins", "m-coins", "z-coins"}
	for i, want := range wantOrder {
		if candidates[i].Provider.ID != want {
			t.Errorf("position %d = %s, want %s", i, candidates[i].Provider.ID, want)
		}
	}
}

func TestRankRequireVerifiedFiltersCandidates(t *testing.T) {
	ranker := NewRanker(rankingCatalog(t), NewExpander())

	candidates, err := ranker.Rank(context.Background(), cryptoParsed(), true)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	for _, c := range candidates {
		if !c.Provider.Verified {
			t.Errorf("unverified provider %s in verified-only ranking", c.Provider.ID)
		}
	}
}
