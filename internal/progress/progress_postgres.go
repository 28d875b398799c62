package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pathforge/pathforge/internal/adaptive"
	"github.com/pathforge/pathforge/internal/content"
	"github.com/pathforge/pathforge/internal/store"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed ProgressStore implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed progress store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the progress tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_progress (
			user_id               TEXT NOT NULL,
			learning_path_id      TEXT,
			content_type          TEXT NOT NULL,
			content_id            TEXT NOT NULL,
			status                TEXT NOT NULL,
			completion_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
			score                 DOUBLE PRECISION,
			time_spent_minutes    INT NOT NULL DEFAULT 0,
			last_accessed_at      TIMESTAMPTZ NOT NULL,
			completed_at          TIMESTAMPTZ,
			PRIMARY KEY (user_id, content_type, content_id)
		);
		CREATE INDEX IF NOT EXISTS user_progress_path_idx ON user_progress (user_id, learning_path_id);

		CREATE TABLE IF NOT EXISTS spaced_repetition (
			user_id          TEXT NOT NULL,
			content_id       TEXT NOT NULL,
			content_type     TEXT NOT NULL,
			difficulty_level INT NOT NULL,
			next_review_date TIMESTAMPTZ NOT NULL,
			review_count     INT NOT NULL DEFAULT 0,
			last_reviewed_at TIMESTAMPTZ,
			PRIMARY KEY (user_id, content_type, content_id)
		);
		CREATE INDEX IF NOT EXISTS spaced_repetition_due_idx ON spaced_repetition (user_id, next_review_date);
	`)
	if err != nil {
		return fmt.Errorf("ensure progress schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertProgress(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_progress
		   (user_id, learning_path_id, content_type, content_id, status,
		    completion_percentage, score, time_spent_minutes, last_accessed_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (user_id, content_type, content_id) DO UPDATE SET
		   learning_path_id      = EXCLUDED.learning_path_id,
		   status                = EXCLUDED.status,
		   completion_percentage = EXCLUDED.completion_percentage,
		   score                 = EXCLUDED.score,
		   time_spent_minutes    = EXCLUDED.time_spent_minutes,
		   last_accessed_at      = EXCLUDED.last_accessed_at,
		   completed_at          = EXCLUDED.completed_at`,
		rec.UserID,
		nullIfEmpty(rec.LearningPathID),
		string(rec.ContentType),
		rec.ContentID,
		string(rec.Status),
		rec.CompletionPercentage,
		rec.Score,
		rec.TimeSpentMinutes,
		rec.LastAccessedAt,
		rec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListProgress(ctx context.Context, userID, pathID string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT user_id, learning_path_id, content_type, content_id, status,
		        completion_percentage, score, time_spent_minutes, last_accessed_at, completed_at
		 FROM user_progress
		 WHERE user_id = $1 AND learning_path_id = $2
		 ORDER BY last_accessed_at ASC`,
		userID,
		pathID,
	)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var path *string
		var contentType string
		var status string
		if err := rows.Scan(
			&rec.UserID,
			&path,
			&contentType,
			&rec.ContentID,
			&status,
			&rec.CompletionPercentage,
			&rec.Score,
			&rec.TimeSpentMinutes,
			&rec.LastAccessedAt,
			&rec.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		if path != nil {
			rec.LearningPathID = *path
		}
		rec.ContentType = content.Type(contentType)
		rec.Status = Status(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) GetReviewItem(ctx context.Context, userID, contentID string, contentType content.Type) (*adaptive.SpacedRepetitionItem, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var item adaptive.SpacedRepetitionItem
	var itemType string
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, content_id, content_type, difficulty_level,
		        next_review_date, review_count, last_reviewed_at
		 FROM spaced_repetition
		 WHERE user_id = $1 AND content_type = $2 AND content_id = $3`,
		userID,
		string(contentType),
		contentID,
	).Scan(
		&item.UserID,
		&item.ContentID,
		&itemType,
		&item.DifficultyLevel,
		&item.NextReviewDate,
		&item.ReviewCount,
		&item.LastReviewedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("review item %s: %w", contentID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("get review item: %w", err)
	}
	item.ContentType = content.Type(itemType)
	return &item, nil
}

func (s *PostgresStore) SaveReviewItem(ctx context.Context, item adaptive.SpacedRepetitionItem) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO spaced_repetition
		   (user_id, content_id, content_type, difficulty_level,
		    next_review_date, review_count, last_reviewed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, content_type, content_id) DO UPDATE SET
		   difficulty_level = EXCLUDED.difficulty_level,
		   next_review_date = EXCLUDED.next_review_date,
		   review_count     = EXCLUDED.review_count,
		   last_reviewed_at = EXCLUDED.last_reviewed_at`,
		item.UserID,
		item.ContentID,
		string(item.ContentType),
		item.DifficultyLevel,
		item.NextReviewDate,
		item.ReviewCount,
		item.LastReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("save review item: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListReviewItems(ctx context.Context, userID string) ([]adaptive.SpacedRepetitionItem, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT user_id, content_id, content_type, difficulty_level,
		        next_review_date, review_count, last_reviewed_at
		 FROM spaced_repetition
		 WHERE user_id = $1
		 ORDER BY next_review_date ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query review items: %w", err)
	}
	defer rows.Close()

	var items []adaptive.SpacedRepetitionItem
	for rows.Next() {
		var item adaptive.SpacedRepetitionItem
		var itemType string
		if err := rows.Scan(
			&item.UserID,
			&item.ContentID,
			&itemType,
			&item.DifficultyLevel,
			&item.NextReviewDate,
			&item.ReviewCount,
			&item.LastReviewedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review item: %w", err)
		}
		item.ContentType = content.Type(itemType)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review items: %w", err)
	}
	return items, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
