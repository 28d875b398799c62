package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("unexpected api key header: %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("missing anthropic-version header")
		}

		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)

		// System message is lifted out of the messages array.
		if body["system"] != "be helpful" {
			t.Errorf("system = %v, want %q", body["system"], "be helpful")
		}
		msgs, _ := body["messages"].([]any)
		if len(msgs) != 1 {
			t.Errorf("messages = %d, want 1 (system lifted out)", len(msgs))
		}

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"text": "Claude says hi"}},
			"model":   "claude-sonnet-4-6",
			"usage":   map[string]int{"input_tokens": 12, "output_tokens": 7},
		})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider("test-key", WithAnthropicBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: "be helpful"},
			{Role: "user", Content: "hello"},
		},
	})

	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Claude says hi" {
		t.Errorf("content = %q, want %q", resp.Content, "Claude says hi")
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 7 {
		t.Errorf("tokens = %d/%d, want 12/7", resp.InputTokens, resp.OutputTokens)
	}
}

func TestAnthropicProvider_ModelAndTokenDefaults(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"text": "ok"}},
		})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider("test-key",
		WithAnthropicBaseURL(server.URL),
		WithAnthropicModel("claude-haiku-4-5-20251001"),
	)
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	if _, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if gotBody["model"] != "claude-haiku-4-5-20251001" {
		t.Errorf("model = %v, want configured default", gotBody["model"])
	}
	// Default ceiling must cover the largest artifact prompt (5000 tokens).
	if maxTokens, _ := gotBody["max_tokens"].(float64); maxTokens < 5000 {
		t.Errorf("max_tokens = %v, want at least 5000", gotBody["max_tokens"])
	}
}

func TestAnthropicProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewAnthropicProvider(""); err == nil {
		t.Fatal("NewAnthropicProvider(\"\") should fail")
	}
}

func TestAnthropicProvider_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": []any{}})
	}))
	defer server.Close()

	provider, _ := NewAnthropicProvider("test-key", WithAnthropicBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatal("Complete() should fail on empty content")
	}
}

func TestInMemoryUsage(t *testing.T) {
	u := NewInMemoryUsage()

	if err := u.Record("u1", 100); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := u.Record("u1", 50); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	used, err := u.Usage("u1")
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if used != 150 {
		t.Errorf("usage = %d, want 150", used)
	}

	if err := u.Record("u1", -1); err == nil {
		t.Error("Record() should reject negative tokens")
	}
}
