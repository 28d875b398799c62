package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pathforge/pathforge/internal/content"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation. Artifact
// bodies live in JSONB payload columns; the queryable columns are the
// summary fields that listings and counts need.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed content store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the content tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS learning_paths (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			topic      TEXT NOT NULL,
			level      TEXT NOT NULL,
			payload    JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS learning_paths_user_idx ON learning_paths (user_id, created_at);

		CREATE TABLE IF NOT EXISTS content_items (
			id               TEXT PRIMARY KEY,
			learning_path_id TEXT NOT NULL REFERENCES learning_paths (id) ON DELETE CASCADE,
			item_type        TEXT NOT NULL,
			title            TEXT NOT NULL,
			concept          TEXT,
			level            TEXT NOT NULL,
			order_index      INT NOT NULL DEFAULT 0,
			payload          JSONB NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS content_items_path_idx ON content_items (learning_path_id, item_type, order_index);
	`)
	if err != nil {
		return fmt.Errorf("ensure content schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveLearningPath(ctx context.Context, path *content.LearningPath) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if path.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if path.ID == "" {
		path.ID = NewID()
	}
	if path.CreatedAt.IsZero() {
		path.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("encode learning path: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO learning_paths (id, user_id, topic, level, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`,
		path.ID,
		path.UserID,
		path.Topic,
		string(path.Level),
		payload,
		path.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save learning path: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLearningPath(ctx context.Context, id string) (*content.LearningPath, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM learning_paths WHERE id = $1`,
		id,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("learning path %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get learning path: %w", err)
	}

	var path content.LearningPath
	if err := json.Unmarshal(payload, &path); err != nil {
		return nil, fmt.Errorf("decode learning path: %w", err)
	}
	return &path, nil
}

func (s *PostgresStore) ListLearningPaths(ctx context.Context, userID string) ([]*content.LearningPath, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM learning_paths WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list learning paths: %w", err)
	}
	defer rows.Close()

	var paths []*content.LearningPath
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan learning path: %w", err)
		}
		var path content.LearningPath
		if err := json.Unmarshal(payload, &path); err != nil {
			return nil, fmt.Errorf("decode learning path: %w", err)
		}
		paths = append(paths, &path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learning paths: %w", err)
	}
	return paths, nil
}

func (s *PostgresStore) SaveLesson(ctx context.Context, lesson *content.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = NewID()
	}
	return s.saveItem(ctx, lesson.LearningPathID, Item{
		ID:         lesson.ID,
		Type:       content.TypeLesson,
		Title:      lesson.Title,
		Concept:    lesson.Concept,
		Level:      lesson.Level,
		OrderIndex: lesson.OrderIndex,
	}, lesson)
}

func (s *PostgresStore) SaveWorksheet(ctx context.Context, ws *content.Worksheet) error {
	if ws.ID == "" {
		ws.ID = NewID()
	}
	return s.saveItem(ctx, ws.LearningPathID, Item{
		ID:    ws.ID,
		Type:  content.TypeWorksheet,
		Title: ws.Title,
		Level: ws.Level,
	}, ws)
}

func (s *PostgresStore) SaveQuiz(ctx context.Context, quiz *content.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = NewID()
	}
	return s.saveItem(ctx, quiz.LearningPathID, Item{
		ID:    quiz.ID,
		Type:  content.TypeQuiz,
		Title: quiz.Title,
		Level: quiz.Level,
	}, quiz)
}

func (s *PostgresStore) SaveCapstone(ctx context.Context, capstone *content.Capstone) error {
	if capstone.ID == "" {
		capstone.ID = NewID()
	}
	return s.saveItem(ctx, capstone.LearningPathID, Item{
		ID:    capstone.ID,
		Type:  content.TypeCapstone,
		Title: capstone.Title,
		Level: capstone.Level,
	}, capstone)
}

func (s *PostgresStore) saveItem(ctx context.Context, pathID string, item Item, body any) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if pathID == "" {
		return fmt.Errorf("learning_path_id is required")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", item.Type, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO content_items (id, learning_path_id, item_type, title, concept, level, order_index, payload)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, title = EXCLUDED.title`,
		item.ID,
		pathID,
		string(item.Type),
		item.Title,
		nullIfEmpty(item.Concept),
		string(item.Level),
		item.OrderIndex,
		payload,
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", item.Type, err)
	}
	return nil
}

func (s *PostgresStore) GetLesson(ctx context.Context, id string) (*content.Lesson, error) {
	var lesson content.Lesson
	if err := s.getItem(ctx, id, content.TypeLesson, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (s *PostgresStore) GetWorksheet(ctx context.Context, id string) (*content.Worksheet, error) {
	var ws content.Worksheet
	if err := s.getItem(ctx, id, content.TypeWorksheet, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

func (s *PostgresStore) GetQuiz(ctx context.Context, id string) (*content.Quiz, error) {
	var quiz content.Quiz
	if err := s.getItem(ctx, id, content.TypeQuiz, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (s *PostgresStore) getItem(ctx context.Context, id string, typ content.Type, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM content_items WHERE id = $1 AND item_type = $2`,
		id,
		string(typ),
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s %s: %w", typ, id, ErrNotFound)
		}
		return fmt.Errorf("get %s: %w", typ, err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode %s: %w", typ, err)
	}
	return nil
}

func (s *PostgresStore) ListContent(ctx context.Context, pathID string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, item_type, title, concept, level, order_index, created_at
		 FROM content_items
		 WHERE learning_path_id = $1
		 ORDER BY created_at ASC`,
		pathID,
	)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var concept *string
		if err := rows.Scan(&item.ID, &item.Type, &item.Title, &concept, &item.Level, &item.OrderIndex, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan content item: %w", err)
		}
		if concept != nil {
			item.Concept = *concept
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) ContentCounts(ctx context.Context, pathID string) (Counts, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT item_type, COUNT(*)
		 FROM content_items
		 WHERE learning_path_id = $1
		 GROUP BY item_type`,
		pathID,
	)
	if err != nil {
		return Counts{}, fmt.Errorf("count content: %w", err)
	}
	defer rows.Close()

	var counts Counts
	for rows.Next() {
		var itemType string
		var n int
		if err := rows.Scan(&itemType, &n); err != nil {
			return Counts{}, fmt.Errorf("scan count: %w", err)
		}
		switch content.Type(itemType) {
		case content.TypeLesson:
			counts.Lessons = n
		case content.TypeWorksheet:
			counts.Worksheets = n
		case content.TypeQuiz:
			counts.Quizzes = n
		case content.TypeCapstone:
			counts.Capstones = n
		}
	}
	if err := rows.Err(); err != nil {
		return Counts{}, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
