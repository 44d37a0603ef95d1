package core

import (
	"context"
	"fmt"
)

// MockInvoker returns deterministic canned results without touching the
// network. It backs local development and the degraded-result path when
// the engine runs in non-strict mode.
type MockInvoker struct{}

// NewMockInvoker creates a mock invoker.
func NewMockInvoker() *MockInvoker {
	return &MockInvoker{}
}

// Invoke returns a canned result describing the call it would have made.
func (m *MockInvoker) Invoke(ctx context.Context, provider *ProviderRecord, tool *ToolDescriptor, params map[string]interface{}) (*InvokeResult, error) {
	if provider == nil || tool == nil {
		return nil, fmt.Errorf("invoke requires a provider and a tool: %w", ErrInvalidConfiguration)
	}

	metadata := map[string]interface{}{
		"mock":        true,
		"provider_id": provider.ID,
		"tool":        tool.Name,
	}
	for k, v := range params {
		metadata["param_"+k] = v
	}

	return &InvokeResult{
		Content:  fmt.Sprintf("mock response from %s/%s", provider.ID, tool.Name),
		Metadata: metadata,
	}, nil
}
