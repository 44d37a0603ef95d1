package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPInvoker calls provider tools over HTTP. Each invocation POSTs a
// JSON body to <endpoint>/tools/<tool-name> and decodes the JSON reply.
type HTTPInvoker struct {
	client *http.Client
	logger Logger
}

// NewHTTPInvoker creates an HTTP invoker with the given per-call
// timeout. A zero timeout falls back to 30 seconds.
func NewHTTPInvoker(timeout time.Duration) *HTTPInvoker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPInvoker{
		client: &http.Client{Timeout: timeout},
	}
}

// SetLogger sets the logger for the invoker.
func (h *HTTPInvoker) SetLogger(logger Logger) {
	h.logger = logger
}

type toolCallRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// Invoke executes a tool on a remote provider.
func (h *HTTPInvoker) Invoke(ctx context.Context, provider *ProviderRecord, tool *ToolDescriptor, params map[string]interface{}) (*InvokeResult, error) {
	if provider == nil || tool == nil {
		return nil, fmt.Errorf("invoke requires a provider and a tool: %w", ErrInvalidConfiguration)
	}
	if provider.Endpoint == "" {
		return nil, fmt.Errorf("provider %s has no endpoint: %w", provider.ID, ErrInvalidConfiguration)
	}

	body, err := json.Marshal(toolCallRequest{Tool: tool.Name, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool call for %s: %w", provider.ID, err)
	}

	url := fmt.Sprintf("%s/tools/%s", provider.Endpoint, tool.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", provider.ID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("provider %s timed out after %v: %w", provider.ID, time.Since(start), ErrUpstreamTimeout)
		}
		return nil, fmt.Errorf("provider %s call failed: %v: %w", provider.ID, err, ErrUpstreamFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if h.logger != nil {
			h.logger.Warn("Provider returned non-OK status", map[string]interface{}{
				"provider_id": provider.ID,
				"tool":        tool.Name,
				"status":      resp.StatusCode,
			})
		}
		return nil, fmt.Errorf("provider %s returned status %d: %s: %w", provider.ID, resp.StatusCode, string(data), ErrUpstreamFailure)
	}

	var result InvokeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("provider %s returned malformed response: %v: %w", provider.ID, err, ErrUpstreamFailure)
	}

	if h.logger != nil {
		h.logger.Debug("Tool invocation completed", map[string]interface{}{
			"provider_id": provider.ID,
			"tool":        tool.Name,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
	return &result, nil
}
