package ai

import (
	"fmt"
	"sync"
)

// UsageRecorder tracks token consumption per user across generation runs.
type UsageRecorder interface {
	// Record adds token usage for a user.
	Record(userID string, tokens int) error
	// Usage returns tokens consumed so far for a user.
	Usage(userID string) (int64, error)
}

// InMemoryUsage is a process-local usage tracker. A multi-instance
// deployment would back this with the shared cache instead.
type InMemoryUsage struct {
	mu    sync.RWMutex
	usage map[string]int64
}

// NewInMemoryUsage creates a new in-memory usage tracker.
func NewInMemoryUsage() *InMemoryUsage {
	return &InMemoryUsage{usage: make(map[string]int64)}
}

func (u *InMemoryUsage) Record(userID string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.usage[userID] += int64(tokens)
	return nil
}

func (u *InMemoryUsage) Usage(userID string) (int64, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.usage[userID], nil
}
