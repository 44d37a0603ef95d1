package routing

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/switchyard-io/switchyard/core"
	"github.com/switchyard-io/switchyard/resilience"
)

// Engine routes requests through the full pipeline: parse, rank, select
// a tool, invoke with fallback over the top candidates, and memoize
// successful responses.
//
// The invoker is fixed at construction; the engine never switches
// transports per request.
type Engine struct {
	catalog  core.Catalog
	invoker  core.Invoker
	expander *Expander
	ranker   *Ranker
	cache    ResponseCache
	logger   core.Logger

	group singleflight.Group

	maxCandidates   int
	requireVerified bool
	strict          bool
	invokeTimeout   time.Duration
	retryConfig     *resilience.RetryConfig
	breaker         *resilience.CircuitBreaker

	totalRequests   int64
	cacheHits       int64
	sharedResolves  int64
	successes       int64
	failures        int64
	degradedResults int64
	fallbacksUsed   int64
	totalLatencyMs  int64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCache sets the response cache. A nil cache disables memoization.
func WithCache(cache ResponseCache) EngineOption {
	return func(e *Engine) { e.cache = cache }
}

// WithLogger sets the engine logger.
func WithLogger(logger core.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxCandidates bounds the fallback chain length.
func WithMaxCandidates(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxCandidates = n
		}
	}
}

// WithRequireVerified restricts the first ranking pass to verified
// providers. The constraint is relaxed once when that pass yields no
// candidates.
func WithRequireVerified(required bool) EngineOption {
	return func(e *Engine) { e.requireVerified = required }
}

// WithStrictMode controls degraded results. In strict mode an exhausted
// fallback chain is a hard failure; otherwise the engine returns a mock
// result marked degraded.
func WithStrictMode(strict bool) EngineOption {
	return func(e *Engine) { e.strict = strict }
}

// WithInvokeTimeout bounds each upstream invocation.
func WithInvokeTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.invokeTimeout = d
		}
	}
}

// WithRetryConfig sets the retry policy for upstream invocations.
func WithRetryConfig(config *resilience.RetryConfig) EngineOption {
	return func(e *Engine) { e.retryConfig = config }
}

// WithCircuitBreaker guards upstream invocations with a breaker.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) EngineOption {
	return func(e *Engine) { e.breaker = cb }
}

// WithRankWeights overrides the ranker's scoring constants.
func WithRankWeights(w RankWeights) EngineOption {
	return func(e *Engine) { e.ranker.SetWeights(w) }
}

// NewEngine creates a routing engine over a catalog and an invoker.
func NewEngine(catalog core.Catalog, invoker core.Invoker, opts ...EngineOption) (*Engine, error) {
	if catalog == nil {
		return nil, fmt.Errorf("engine requires a catalog: %w", core.ErrInvalidConfiguration)
	}
	if invoker == nil {
		return nil, fmt.Errorf("engine requires an invoker: %w", core.ErrInvalidConfiguration)
	}

	expander := NewExpander()
	e := &Engine{
		catalog:         catalog,
		invoker:         invoker,
		expander:        expander,
		ranker:          NewRanker(catalog, expander),
		logger:          &core.NoOpLogger{},
		maxCandidates:   3,
		requireVerified: false,
		invokeTimeout:   30 * time.Second,
		retryConfig:     resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ranker.SetLogger(e.logger)
	return e, nil
}

// Parse runs the analysis stages on a request without routing it.
// Structured requests (explicit intent or capabilities) bypass
// classification with full confidence.
func (e *Engine) Parse(req RouteRequest) (*ParsedRequest, error) {
	raw := strings.TrimSpace(req.Query)
	normalized := Normalize(req.Query)

	if req.Intent != "" || len(req.Capabilities) > 0 {
		parsed := &ParsedRequest{
			RawText:        raw,
			NormalizedText: normalized,
			Intent:         req.Intent,
			Confidence:     1.0,
			Entities:       req.Entities,
			Capabilities:   req.Capabilities,
			Category:       req.Category,
			Structured:     true,
		}
		if len(parsed.Capabilities) == 0 {
			parsed.Capabilities = CapabilitiesForIntent(parsed.Intent)
		}
		if parsed.Category == "" {
			parsed.Category = CategoryForIntent(parsed.Intent)
		}
		parsed.Strategy = SelectStrategy(parsed.Intent)
		return parsed, nil
	}

	if normalized == "" {
		return nil, fmt.Errorf("query is empty: %w", core.ErrMalformedInput)
	}

	label := Classify(normalized)
	parsed := &ParsedRequest{
		RawText:        raw,
		NormalizedText: normalized,
		Intent:         label.Name,
		Confidence:     label.Confidence,
		Entities:       ExtractEntities(raw),
		Capabilities:   CapabilitiesForIntent(label.Name),
		Category:       CategoryForIntent(label.Name),
		Strategy:       SelectStrategy(label.Name),
	}
	return parsed, nil
}

// Route processes one request end to end. Identical in-flight requests
// share a single resolution; each caller receives its own response
// copy with per-request metadata.
func (e *Engine) Route(ctx context.Context, req RouteRequest) (*RouteResponse, error) {
	start := time.Now()
	requestID := uuid.New().String()
	atomic.AddInt64(&e.totalRequests, 1)
	defer func() {
		atomic.AddInt64(&e.totalLatencyMs, time.Since(start).Milliseconds())
	}()

	tracer := otel.Tracer("switchyard/routing")
	ctx, span := tracer.Start(ctx, "engine.route")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", requestID))

	parsed, err := e.Parse(req)
	if err != nil {
		atomic.AddInt64(&e.failures, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed input")
		return e.errorResponse(requestID, nil, start, err), err
	}

	span.SetAttributes(
		attribute.String("request.intent", parsed.Intent),
		attribute.Float64("request.confidence", parsed.Confidence),
		attribute.String("request.strategy", string(parsed.Strategy)),
	)

	fingerprint := Fingerprint(parsed)

	if e.cache != nil {
		if cached, age, ok := e.cache.Get(fingerprint); ok {
			atomic.AddInt64(&e.cacheHits, 1)
			span.SetAttributes(attribute.Bool("cache.hit", true))
			resp := cached.clone()
			resp.Metadata.RequestID = requestID
			resp.Metadata.Cached = true
			resp.Metadata.CacheAgeMs = age.Milliseconds()
			resp.Metadata.ElapsedMs = time.Since(start).Milliseconds()
			return resp, nil
		}
	}

	// Concurrent identical requests resolve once and share the result.
	v, err, shared := e.group.Do(fingerprint, func() (interface{}, error) {
		return e.resolve(ctx, parsed, req.Params, fingerprint)
	})
	if shared {
		atomic.AddInt64(&e.sharedResolves, 1)
	}

	var resp *RouteResponse
	if v != nil {
		resp = v.(*RouteResponse).clone()
	}
	if resp != nil {
		resp.Metadata.RequestID = requestID
		resp.Metadata.ElapsedMs = time.Since(start).Milliseconds()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if resp == nil {
			resp = e.errorResponse(requestID, parsed, start, err)
		}
		return resp, err
	}

	span.SetAttributes(
		attribute.String("route.provider", resp.Metadata.ChosenProvider),
		attribute.String("route.tool", resp.Metadata.ChosenTool),
		attribute.Bool("route.degraded", resp.Metadata.Degraded),
	)
	return resp, nil
}

// resolve executes the ranked fallback chain for a parsed request. The
// returned response has no request ID or elapsed time; callers fill
// those in per request.
func (e *Engine) resolve(ctx context.Context, parsed *ParsedRequest, params map[string]interface{}, fingerprint string) (*RouteResponse, error) {
	candidates, err := e.rank(ctx, parsed)
	if err != nil {
		atomic.AddInt64(&e.failures, 1)
		if e.strict {
			return nil, fmt.Errorf("catalog query failed: %w", err)
		}
		// Non-strict: a broken catalog degrades to "nothing matched"
		// with the upstream error preserved in the metadata.
		noMatch := fmt.Errorf("catalog unavailable: %w", core.ErrNoCandidateFound)
		resp := e.failureResponse(parsed, nil, noMatch)
		resp.Metadata.UpstreamError = err.Error()
		return resp, noMatch
	}
	if len(candidates) == 0 {
		atomic.AddInt64(&e.failures, 1)
		err := fmt.Errorf("no provider matches intent %q: %w", parsed.Intent, core.ErrNoCandidateFound)
		return e.failureResponse(parsed, nil, err), err
	}

	if len(candidates) > e.maxCandidates {
		candidates = candidates[:e.maxCandidates]
	}

	for i := range candidates {
		candidates[i].Tool = SelectTool(candidates[i].Provider, parsed)
	}

	if parsed.Strategy == StrategyPresentOptions {
		return e.presentOptions(parsed, candidates, fingerprint), nil
	}

	var (
		lastErr    error
		firstTried *ScoredCandidate
		evaluated  []string
	)
	for i, cand := range candidates {
		evaluated = append(evaluated, cand.Provider.ID)
		if cand.Tool == nil {
			e.logger.Debug("Candidate has no tools, trying next", map[string]interface{}{
				"provider_id": cand.Provider.ID,
			})
			continue
		}
		if i > 0 {
			atomic.AddInt64(&e.fallbacksUsed, 1)
			trace.SpanFromContext(ctx).AddEvent("fallback", trace.WithAttributes(
				attribute.String("provider.id", cand.Provider.ID),
				attribute.Int("chain.position", i),
			))
		}

		result, err := e.invoke(ctx, cand.Provider, cand.Tool, params)
		if err != nil {
			lastErr = err
			if firstTried == nil {
				tried := cand
				firstTried = &tried
			}
			e.logger.Warn("Provider invocation failed, trying next candidate", map[string]interface{}{
				"provider_id": cand.Provider.ID,
				"tool":        cand.Tool.Name,
				"position":    i,
				"error":       err.Error(),
			})
			continue
		}

		atomic.AddInt64(&e.successes, 1)
		resp := &RouteResponse{
			Success: true,
			Result:  result,
			Parsed:  parsed,
			Metadata: ResponseMetadata{
				Strategy:           parsed.Strategy,
				ChosenProvider:     cand.Provider.ID,
				ChosenTool:         cand.Tool.Name,
				Confidence:         parsed.Confidence,
				Alternates:         alternatesAfter(candidates, i),
				EvaluatedProviders: evaluated,
			},
		}
		if e.cache != nil {
			e.cache.Put(fingerprint, resp)
		}
		return resp, nil
	}

	if lastErr == nil {
		atomic.AddInt64(&e.failures, 1)
		err := fmt.Errorf("no candidate exposes a usable tool for intent %q: %w", parsed.Intent, core.ErrNoMatchingTool)
		return e.failureResponse(parsed, evaluated, err), err
	}

	if !e.strict {
		return e.degradedResponse(ctx, parsed, *firstTried, params, evaluated, lastErr), nil
	}

	atomic.AddInt64(&e.failures, 1)
	return e.failureResponse(parsed, evaluated, lastErr), lastErr
}

// rank runs the catalog ranking under the retry policy so a transient
// catalog hiccup does not fail the request. When the verified-only pass
// yields nothing, the verification constraint is relaxed once before
// the request is declared unroutable.
func (e *Engine) rank(ctx context.Context, parsed *ParsedRequest) ([]ScoredCandidate, error) {
	ctx, span := otel.Tracer("switchyard/routing").Start(ctx, "engine.rank")
	defer span.End()

	candidates, err := e.rankPass(ctx, parsed, e.requireVerified)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(candidates) == 0 && e.requireVerified {
		span.AddEvent("verification relaxed")
		candidates, err = e.rankPass(ctx, parsed, false)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if len(candidates) > 0 {
			e.logger.Debug("Relaxed verification constraint produced candidates", map[string]interface{}{
				"intent":     parsed.Intent,
				"candidates": len(candidates),
			})
		}
	}
	span.SetAttributes(attribute.Int("rank.candidates", len(candidates)))
	return candidates, nil
}

func (e *Engine) rankPass(ctx context.Context, parsed *ParsedRequest, requireVerified bool) ([]ScoredCandidate, error) {
	var candidates []ScoredCandidate
	err := resilience.Retry(ctx, e.retryConfig, func() error {
		c, err := e.ranker.Rank(ctx, parsed, requireVerified)
		if err != nil {
			return err
		}
		candidates = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// invoke calls one provider tool under the configured timeout, retry
// policy, and circuit breaker.
func (e *Engine) invoke(ctx context.Context, provider *core.ProviderRecord, tool *core.ToolDescriptor, params map[string]interface{}) (*core.InvokeResult, error) {
	ctx, span := otel.Tracer("switchyard/routing").Start(ctx, "engine.invoke")
	defer span.End()
	span.SetAttributes(
		attribute.String("provider.id", provider.ID),
		attribute.String("tool.name", tool.Name),
	)

	var result *core.InvokeResult
	err := resilience.RetryWithCircuitBreaker(ctx, e.retryConfig, e.breaker, func() error {
		callCtx, cancel := context.WithTimeout(ctx, e.invokeTimeout)
		defer cancel()

		r, err := e.invoker.Invoke(callCtx, provider, tool, params)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

// presentOptions builds the response for transactional intents: the
// ranked candidates are surfaced instead of invoking anything.
func (e *Engine) presentOptions(parsed *ParsedRequest, candidates []ScoredCandidate, fingerprint string) *RouteResponse {
	atomic.AddInt64(&e.successes, 1)

	alternates := make([]Alternate, 0, len(candidates))
	options := make([]map[string]interface{}, 0, len(candidates))
	for _, cand := range candidates {
		alternates = append(alternates, Alternate{ProviderID: cand.Provider.ID, Score: cand.Score})
		option := map[string]interface{}{
			"provider_id": cand.Provider.ID,
			"name":        cand.Provider.DisplayName,
			"score":       cand.Score,
		}
		if cand.Tool != nil {
			option["tool"] = cand.Tool.Name
		}
		options = append(options, option)
	}

	resp := &RouteResponse{
		Success: true,
		Result: &core.InvokeResult{
			Content:  fmt.Sprintf("%d providers can handle this request", len(candidates)),
			Metadata: map[string]interface{}{"options": options},
		},
		Parsed: parsed,
		Metadata: ResponseMetadata{
			Strategy:       StrategyPresentOptions,
			ChosenProvider: candidates[0].Provider.ID,
			Confidence:     parsed.Confidence,
			Alternates:     alternates,
		},
	}
	if e.cache != nil {
		e.cache.Put(fingerprint, resp)
	}
	return resp
}

// degradedResponse returns a mock result after the fallback chain is
// exhausted in non-strict mode. Degraded responses are never cached.
func (e *Engine) degradedResponse(ctx context.Context, parsed *ParsedRequest, best ScoredCandidate, params map[string]interface{}, evaluated []string, upstreamErr error) *RouteResponse {
	atomic.AddInt64(&e.successes, 1)
	atomic.AddInt64(&e.degradedResults, 1)
	e.logger.Warn("All candidates failed, returning degraded result", map[string]interface{}{
		"intent":      parsed.Intent,
		"provider_id": best.Provider.ID,
		"error":       upstreamErr.Error(),
	})

	mock := core.NewMockInvoker()
	result, _ := mock.Invoke(ctx, best.Provider, best.Tool, params)
	return &RouteResponse{
		Success: true,
		Result:  result,
		Parsed:  parsed,
		Metadata: ResponseMetadata{
			Strategy:           parsed.Strategy,
			ChosenProvider:     best.Provider.ID,
			ChosenTool:         best.Tool.Name,
			Confidence:         parsed.Confidence,
			Degraded:           true,
			EvaluatedProviders: evaluated,
			UpstreamError:      upstreamErr.Error(),
		},
	}
}

func (e *Engine) failureResponse(parsed *ParsedRequest, evaluated []string, err error) *RouteResponse {
	return &RouteResponse{
		Success: false,
		Parsed:  parsed,
		Error:   err.Error(),
		Metadata: ResponseMetadata{
			Strategy:           strategyOf(parsed),
			Confidence:         confidenceOf(parsed),
			EvaluatedProviders: evaluated,
		},
	}
}

func (e *Engine) errorResponse(requestID string, parsed *ParsedRequest, start time.Time, err error) *RouteResponse {
	return &RouteResponse{
		Success: false,
		Parsed:  parsed,
		Error:   err.Error(),
		Metadata: ResponseMetadata{
			RequestID:  requestID,
			Strategy:   strategyOf(parsed),
			Confidence: confidenceOf(parsed),
			ElapsedMs:  time.Since(start).Milliseconds(),
		},
	}
}

// Stats returns a snapshot of engine counters.
func (e *Engine) Stats() EngineStats {
	stats := EngineStats{
		TotalRequests:   atomic.LoadInt64(&e.totalRequests),
		CacheHits:       atomic.LoadInt64(&e.cacheHits),
		SharedResolves:  atomic.LoadInt64(&e.sharedResolves),
		Successes:       atomic.LoadInt64(&e.successes),
		Failures:        atomic.LoadInt64(&e.failures),
		DegradedResults: atomic.LoadInt64(&e.degradedResults),
		FallbacksUsed:   atomic.LoadInt64(&e.fallbacksUsed),
	}
	if stats.TotalRequests > 0 {
		stats.AvgLatencyMs = float64(atomic.LoadInt64(&e.totalLatencyMs)) / float64(stats.TotalRequests)
	}
	return stats
}

func alternatesAfter(candidates []ScoredCandidate, chosen int) []Alternate {
	var alternates []Alternate
	for i, cand := range candidates {
		if i == chosen {
			continue
		}
		alternates = append(alternates, Alternate{ProviderID: cand.Provider.ID, Score: cand.Score})
	}
	return alternates
}

func strategyOf(parsed *ParsedRequest) StrategyKind {
	if parsed == nil {
		return StrategyFallback
	}
	return parsed.Strategy
}

func confidenceOf(parsed *ParsedRequest) float64 {
	if parsed == nil {
		return 0
	}
	return parsed.Confidence
}
