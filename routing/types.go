// Package routing turns free-form or structured requests into ranked
// provider candidates and executes the best one. The pipeline runs
// normalization, intent classification, entity extraction, semantic
// expansion, strategy selection, catalog ranking, and tool selection,
// with a fallback chain over the top candidates and response
// memoization on success.
package routing

import "github.com/switchyard-io/switchyard/core"

// IntentLabel pairs a recognized intent name with the classifier's
// confidence in it.
type IntentLabel struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// StrategyKind names how a routed request should be executed.
type StrategyKind string

const (
	// StrategyDirectExecution invokes the top candidate immediately.
	StrategyDirectExecution StrategyKind = "direct_execution"
	// StrategyPresentOptions surfaces the ranked candidates instead of
	// side-effecting; used for transactional intents.
	StrategyPresentOptions StrategyKind = "present_options"
	// StrategyFallback walks the candidate chain until one succeeds.
	StrategyFallback StrategyKind = "fallback"
)

// ParsedRequest is the pipeline's view of a single request after the
// analysis stages have run.
type ParsedRequest struct {
	RawText        string            `json:"raw_text"`
	NormalizedText string            `json:"normalized_text"`
	Intent         string            `json:"intent"`
	Confidence     float64           `json:"confidence"`
	Entities       map[string]string `json:"entities,omitempty"`
	Capabilities   []string          `json:"capabilities,omitempty"`
	Category       string            `json:"category,omitempty"`
	Strategy       StrategyKind      `json:"strategy"`
	Structured     bool              `json:"structured"`
}

// ScoredCandidate is a provider with its relevance score and the tool
// chosen for it, ordered by rank.
type ScoredCandidate struct {
	Provider *core.ProviderRecord `json:"provider"`
	Score    float64              `json:"score"`
	Tool     *core.ToolDescriptor `json:"tool,omitempty"`
}

// RouteRequest is the engine's input. Only Query is required for
// free-text routing; the remaining fields switch the engine into
// structured mode and bypass classification.
type RouteRequest struct {
	Query        string                 `json:"query"`
	Context      map[string]string      `json:"context,omitempty"`
	Intent       string                 `json:"intent,omitempty"`
	Capabilities []string               `json:"capabilities,omitempty"`
	Category     string                 `json:"category,omitempty"`
	Entities     map[string]string      `json:"entities,omitempty"`
	Params       map[string]interface{} `json:"params,omitempty"`
}

// Alternate is a non-chosen candidate surfaced in response metadata.
type Alternate struct {
	ProviderID string  `json:"provider_id"`
	Score      float64 `json:"score"`
}

// ResponseMetadata carries the routing decision trail for a response.
type ResponseMetadata struct {
	RequestID          string       `json:"request_id"`
	Strategy           StrategyKind `json:"strategy"`
	ChosenProvider     string       `json:"chosen_provider,omitempty"`
	ChosenTool         string       `json:"chosen_tool,omitempty"`
	Confidence         float64      `json:"confidence"`
	Alternates         []Alternate  `json:"alternates,omitempty"`
	Cached             bool         `json:"cached"`
	CacheAgeMs         int64        `json:"cache_age_ms,omitempty"`
	ElapsedMs          int64        `json:"elapsed_ms"`
	Degraded           bool         `json:"degraded,omitempty"`
	EvaluatedProviders []string     `json:"evaluated_providers,omitempty"`
	UpstreamError      string       `json:"upstream_error,omitempty"`
}

// RouteResponse is the engine's output for one request.
type RouteResponse struct {
	Success  bool               `json:"success"`
	Result   *core.InvokeResult `json:"result,omitempty"`
	Parsed   *ParsedRequest     `json:"parsed,omitempty"`
	Metadata ResponseMetadata   `json:"metadata"`
	Error    string             `json:"error,omitempty"`
}

// clone returns a shallow-plus copy safe to hand to a caller: shared
// resolutions from the in-flight deduper must not let one caller's
// metadata mutations leak into another's.
func (r *RouteResponse) clone() *RouteResponse {
	if r == nil {
		return nil
	}
	out := *r
	if r.Parsed != nil {
		parsed := *r.Parsed
		if r.Parsed.Entities != nil {
			parsed.Entities = make(map[string]string, len(r.Parsed.Entities))
			for k, v := range r.Parsed.Entities {
				parsed.Entities[k] = v
			}
		}
		parsed.Capabilities = append([]string(nil), r.Parsed.Capabilities...)
		out.Parsed = &parsed
	}
	out.Metadata.Alternates = append([]Alternate(nil), r.Metadata.Alternates...)
	out.Metadata.EvaluatedProviders = append([]string(nil), r.Metadata.EvaluatedProviders...)
	return &out
}

// EngineStats is a point-in-time snapshot of engine counters. Every
// completed request lands in Successes or Failures; DegradedResults
// counts the subset of Successes served by the mock fallback.
type EngineStats struct {
	TotalRequests   int64   `json:"total_requests"`
	CacheHits       int64   `json:"cache_hits"`
	SharedResolves  int64   `json:"shared_resolves"`
	Successes       int64   `json:"successes"`
	Failures        int64   `json:"failures"`
	DegradedResults int64   `json:"degraded_results"`
	FallbacksUsed   int64   `json:"fallbacks_used"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
}
