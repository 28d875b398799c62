package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pathforge/pathforge/internal/content"
	"github.com/pathforge/pathforge/internal/store"
)

// ErrAlreadyRunning is returned when a generation run is requested for a
// path that already has a live progress record.
var ErrAlreadyRunning = errors.New("content generation already running for this path")

// progressTTL is how long a terminal progress snapshot stays readable
// before the record is removed.
const progressTTL = 60 * time.Second

// Orchestrator drives content generation for a whole learning path,
// milestone by milestone, publishing progress snapshots as it goes.
type Orchestrator struct {
	milestones *MilestoneGenerator
	store      store.Store
	cache      ProgressCache
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(milestones *MilestoneGenerator, contentStore store.Store, cache ProgressCache) *Orchestrator {
	return &Orchestrator{milestones: milestones, store: contentStore, cache: cache}
}

// Run generates content for every milestone of the path, strictly in
// order. A milestone that produces nothing writes an error snapshot and
// the run continues; the final completed snapshot overwrites any earlier
// error state. Returns ErrAlreadyRunning when a progress record already
// exists for the path.
func (o *Orchestrator) Run(ctx context.Context, path *content.LearningPath, learningStyle string) error {
	if _, exists, err := o.cache.Get(ctx, path.ID); err != nil {
		return fmt.Errorf("check progress record: %w", err)
	} else if exists {
		return ErrAlreadyRunning
	}

	total := len(path.Milestones)
	o.publish(ctx, path.ID, Progress{
		Status:      StatusGenerating,
		CurrentStep: "Starting content generation...",
		Counts:      Counts{TotalMilestones: total},
	})

	var running Counts
	running.TotalMilestones = total

	for i, milestone := range path.Milestones {
		o.publish(ctx, path.ID, Progress{
			Status:      StatusGenerating,
			CurrentStep: fmt.Sprintf("Generating content for %s level milestone (%d/%d)...", milestone.Level, i+1, total),
			Counts:      countsAt(running, i),
		})

		result := o.milestones.Generate(ctx, path.ID, milestone, path.Title, path.Topic, learningStyle)
		running.Lessons += len(result.Lessons)
		running.Worksheets += len(result.Worksheets)
		running.Quizzes += len(result.Quizzes)
		running.Capstones += len(result.Capstones)

		if result.Total() == 0 && len(result.Failures) > 0 {
			// Whole milestone lost. Record the error and keep going so
			// later milestones still get their content.
			o.publish(ctx, path.ID, Progress{
				Status:      StatusError,
				CurrentStep: fmt.Sprintf("Error generating %s milestone", milestone.Level),
				Counts:      countsAt(running, i),
				Error:       result.Failures[0].Reason,
			})
			continue
		}

		o.publish(ctx, path.ID, Progress{
			Status:      StatusGenerating,
			CurrentStep: fmt.Sprintf("Completed %s level milestone (%d/%d)", milestone.Level, i+1, total),
			Counts:      o.authoritativeCounts(ctx, path.ID, countsAt(running, i+1)),
		})
	}

	final := o.authoritativeCounts(ctx, path.ID, countsAt(running, total))
	o.publish(ctx, path.ID, Progress{
		Status:      StatusCompleted,
		CurrentStep: "All content generated successfully!",
		Counts:      final,
	})

	if err := o.cache.DeleteAfter(ctx, path.ID, progressTTL); err != nil {
		slog.Warn("failed to schedule progress expiry", "path_id", path.ID, "error", err)
	}

	slog.Info("content generation finished",
		"path_id", path.ID,
		"lessons", final.Lessons,
		"worksheets", final.Worksheets,
		"quizzes", final.Quizzes,
		"capstones", final.Capstones,
	)
	return nil
}

func countsAt(c Counts, milestonesDone int) Counts {
	c.Milestones = milestonesDone
	return c
}

// authoritativeCounts prefers the store's counts over the in-memory
// tally; the store is the source of truth once items persist. Falls back
// to the in-memory counts when the store is unreachable.
func (o *Orchestrator) authoritativeCounts(ctx context.Context, pathID string, fallback Counts) Counts {
	stored, err := o.store.ContentCounts(ctx, pathID)
	if err != nil {
		slog.Warn("falling back to in-memory counts", "path_id", pathID, "error", err)
		return fallback
	}
	fallback.Lessons = stored.Lessons
	fallback.Worksheets = stored.Worksheets
	fallback.Quizzes = stored.Quizzes
	fallback.Capstones = stored.Capstones
	return fallback
}

// publish writes a snapshot; progress is best-effort and a cache failure
// must not abort generation.
func (o *Orchestrator) publish(ctx context.Context, pathID string, p Progress) {
	if err := o.cache.Set(ctx, pathID, p); err != nil {
		slog.Warn("failed to publish generation progress", "path_id", pathID, "error", err)
	}
}
