// Package generation orchestrates content generation across a learning
// path's milestones and publishes live progress snapshots.
package generation

import (
	"context"
	"sync"
	"time"
)

// Status is the lifecycle state of one generation run.
type Status string

const (
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Counts tallies what a generation run has produced so far.
type Counts struct {
	Milestones      int `json:"milestones"`
	TotalMilestones int `json:"total_milestones"`
	Lessons         int `json:"lessons"`
	Worksheets      int `json:"worksheets"`
	Quizzes         int `json:"quizzes"`
	Capstones       int `json:"capstones"`
}

// Progress is one snapshot of a generation run. Snapshots are ephemeral:
// the record disappears shortly after the run reaches a terminal state.
type Progress struct {
	Status      Status `json:"status"`
	CurrentStep string `json:"current_step"`
	Counts      Counts `json:"progress"`
	Error       string `json:"error,omitempty"`
}

// Terminal reports whether the snapshot is in a final state.
func (p Progress) Terminal() bool {
	return p.Status == StatusCompleted || p.Status == StatusError
}

// ProgressCache stores generation progress keyed by learning path ID.
// DeleteAfter schedules removal so late pollers still see the terminal
// snapshot for a grace period.
type ProgressCache interface {
	Get(ctx context.Context, pathID string) (Progress, bool, error)
	Set(ctx context.Context, pathID string, p Progress) error
	DeleteAfter(ctx context.Context, pathID string, ttl time.Duration) error
}

// MemoryCache is an in-process ProgressCache for single-node deployments
// and tests.
type MemoryCache struct {
	entries map[string]Progress
	timers  map[string]*time.Timer
	mu      sync.Mutex
}

// NewMemoryCache creates an empty in-memory progress cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]Progress),
		timers:  make(map[string]*time.Timer),
	}
}

func (c *MemoryCache) Get(_ context.Context, pathID string) (Progress, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.entries[pathID]
	return p, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, pathID string, p Progress) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[pathID] = p
	return nil
}

func (c *MemoryCache) DeleteAfter(_ context.Context, pathID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.timers[pathID]; ok {
		timer.Stop()
	}
	c.timers[pathID] = time.AfterFunc(ttl, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.entries, pathID)
		delete(c.timers, pathID)
	})
	return nil
}
