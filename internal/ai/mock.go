package ai

import "context"

// MockProvider is a test double for generation backends. Responses are
// returned in order; the last one repeats once the script is exhausted.
// Err, when set, fails every call.
type MockProvider struct {
	Responses   []string
	Err         error
	Calls       int                  // number of Complete invocations
	LastRequest *CompletionRequest   // captures the last request for inspection
	Requests    []CompletionRequest  // every request, in order
}

// NewMockProvider creates a MockProvider that always returns response.
func NewMockProvider(response string) *MockProvider {
	return &MockProvider{Responses: []string{response}}
}

// NewScriptedProvider creates a MockProvider that replays responses in order.
func NewScriptedProvider(responses ...string) *MockProvider {
	return &MockProvider{Responses: responses}
}

func (m *MockProvider) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	m.LastRequest = &req
	m.Requests = append(m.Requests, req)
	idx := m.Calls
	m.Calls++
	if m.Err != nil {
		return CompletionResponse{}, m.Err
	}
	if len(m.Responses) == 0 {
		return CompletionResponse{Model: "mock"}, nil
	}
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	content := m.Responses[idx]
	return CompletionResponse{
		Content:      content,
		Model:        "mock",
		InputTokens:  10,
		OutputTokens: len(content),
	}, nil
}

func (m *MockProvider) Models() []ModelInfo {
	return []ModelInfo{
		{ID: "mock", Name: "Mock Model", MaxTokens: 4096, Description: "Test mock"},
	}
}

func (m *MockProvider) HealthCheck(_ context.Context) error {
	return m.Err
}
