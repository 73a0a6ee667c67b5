package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"shorts_factory/internal/domain"
)

type RunLogStore struct {
	db *sqlx.DB
}

func NewRunLogStore(db *sqlx.DB) *RunLogStore {
	return &RunLogStore{db: db}
}

func (s *RunLogStore) Append(ctx context.Context, entry *domain.RunLogEntry) error {
	query := `
		INSERT INTO run_log (task_id, title, youtube_id, slot, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		entry.TaskID,
		entry.Title,
		entry.YouTubeID,
		entry.Slot,
		entry.CompletedAt,
	).Scan(&entry.ID)
}

func (s *RunLogStore) Recent(ctx context.Context, limit int) ([]domain.RunLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	var entries []domain.RunLogEntry
	query := `
		SELECT id, task_id, title, youtube_id, slot, completed_at
		FROM run_log
		ORDER BY completed_at DESC, id DESC
		LIMIT $1`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &entries, query, limit); err != nil {
		return nil, err
	}
	return entries, nil
}
