package ai

import (
	"context"
	"errors"
	"testing"
)

func TestRouter_FallbackOrder(t *testing.T) {
	failing := &MockProvider{Err: errors.New("provider down")}
	working := NewMockProvider("fallback answer")

	router := NewRouter()
	router.Register("primary", failing)
	router.Register("secondary", working)

	resp, err := router.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})

	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "fallback answer" {
		t.Errorf("content = %q, want %q", resp.Content, "fallback answer")
	}
	if failing.Calls != 1 {
		t.Errorf("primary calls = %d, want 1", failing.Calls)
	}
}

func TestRouter_FirstProviderWins(t *testing.T) {
	first := NewMockProvider("first")
	second := NewMockProvider("second")

	router := NewRouter()
	router.Register("a", first)
	router.Register("b", second)

	resp, err := router.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})

	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "first" {
		t.Errorf("content = %q, want %q", resp.Content, "first")
	}
	if second.Calls != 0 {
		t.Errorf("second provider called %d times, want 0", second.Calls)
	}
}

func TestRouter_AllFail(t *testing.T) {
	router := NewRouter()
	router.Register("a", &MockProvider{Err: errors.New("down")})
	router.Register("b", &MockProvider{Err: errors.New("also down")})

	_, err := router.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})

	if err == nil {
		t.Fatal("Complete() should fail when every provider fails")
	}
}

func TestRouter_NoProviders(t *testing.T) {
	router := NewRouter()

	if router.HasProvider() {
		t.Error("HasProvider() = true for empty router")
	}

	_, err := router.Complete(context.Background(), CompletionRequest{})
	if err == nil {
		t.Fatal("Complete() should fail with no providers")
	}
}

func TestRouter_Models(t *testing.T) {
	router := NewRouter()
	router.Register("a", NewMockProvider("x"))
	router.Register("b", NewMockProvider("y"))

	if got := len(router.Models()); got != 2 {
		t.Errorf("Models() = %d entries, want 2", got)
	}
}
