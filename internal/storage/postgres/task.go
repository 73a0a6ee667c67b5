package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"shorts_factory/internal/domain"
)

const taskColumns = `id, title, content, source, source_url, niche, slot, status, folder_path,
	script_data, metadata, final_video_path, package_path, archive_url, youtube_id,
	uploaded_at, created_at, updated_at`

// ErrDuplicateFolder is returned when another task already owns folder_path.
var ErrDuplicateFolder = errors.New("task folder already in use")

const uniqueViolation = "23505"

type TaskStore struct {
	db *sqlx.DB
	tm *TransactionManager
}

func NewTaskStore(db *sqlx.DB) *TaskStore {
	return &TaskStore{db: db, tm: NewTransactionManager(db)}
}

func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (
			id, title, content, source, source_url, niche, slot, status, folder_path
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING created_at, updated_at`

	if task.Status == "" {
		task.Status = domain.StatusPending
	}

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		task.ID,
		task.Title,
		task.Content,
		task.Source,
		task.SourceURL,
		task.Niche,
		task.Slot,
		task.Status,
		task.FolderPath,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateFolder, task.FolderPath)
		}
		return err
	}
	return nil
}

func (s *TaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &task, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ClaimNext returns the oldest task in status, or nil when there is none.
// It does not lock: Advance's status guard settles any race.
func (s *TaskStore) ClaimNext(ctx context.Context, status domain.Status) (*domain.Task, error) {
	var task domain.Task
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT 1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &task, query, status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Advance moves a task from expected to next and writes the update's fields
// in the same statement. If the task is no longer in expected nothing is
// written and ErrStatusConflict is returned.
func (s *TaskStore) Advance(ctx context.Context, id string, expected, next domain.Status, update domain.TaskUpdate) error {
	if err := domain.CheckTransition(expected, next); err != nil {
		return err
	}
	if err := update.Validate(next); err != nil {
		return err
	}

	sets := []string{"status = $3", "updated_at = NOW()"}
	args := []interface{}{id, expected, next}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Script != nil {
		set("script_data", *update.Script)
	}
	if update.Metadata != nil {
		set("metadata", *update.Metadata)
	}
	if update.FinalVideoPath != nil {
		set("final_video_path", *update.FinalVideoPath)
	}
	if update.PackagePath != nil {
		set("package_path", *update.PackagePath)
	}
	if update.ArchiveURL != nil {
		set("archive_url", *update.ArchiveURL)
	}
	if update.YouTubeID != nil {
		set("youtube_id", *update.YouTubeID)
	}
	if update.UploadedAt != nil {
		set("uploaded_at", *update.UploadedAt)
	}

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $1 AND status = $2`, strings.Join(sets, ", "))

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s expected %s", domain.ErrStatusConflict, id, expected)
	}
	return nil
}

// Repair forces a task into r.Status under a row lock. It returns the
// rewritten task and the fields that were cleared.
func (s *TaskStore) Repair(ctx context.Context, id string, r domain.Repair) (*domain.Task, []domain.Field, error) {
	var (
		task    domain.Task
		cleared []domain.Field
	)

	err := s.tm.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, s.db)

		query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 FOR UPDATE`
		if err := sqlx.GetContext(txCtx, exec, &task, query, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
			}
			return err
		}

		var err error
		cleared, err = task.ApplyRepair(r)
		if err != nil {
			return err
		}

		update := `
			UPDATE tasks SET
				status = $2,
				script_data = $3,
				metadata = $4,
				final_video_path = $5,
				package_path = $6,
				archive_url = $7,
				youtube_id = $8,
				uploaded_at = $9,
				updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at`

		return exec.QueryRowxContext(txCtx, update,
			task.ID,
			task.Status,
			task.Script,
			task.Metadata,
			task.FinalVideoPath,
			task.PackagePath,
			task.ArchiveURL,
			task.YouTubeID,
			task.UploadedAt,
		).Scan(&task.UpdatedAt)
	})
	if err != nil {
		return nil, nil, err
	}
	return &task, cleared, nil
}

func (s *TaskStore) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	var (
		where []string
		args  []interface{}
	)

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		args = append(args, pq.Array(statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.Slot != "" {
		args = append(args, filter.Slot)
		where = append(where, fmt.Sprintf("slot = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d`, len(args))

	var tasks []domain.Task
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &tasks, query, args...); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskStore) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &exists,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE title = $1)`, title)
	return exists, err
}

func (s *TaskStore) TitlesCreatedSince(ctx context.Context, since time.Time) ([]string, error) {
	var titles []string
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &titles,
		`SELECT title FROM tasks WHERE created_at >= $1 ORDER BY created_at DESC`, since)
	return titles, err
}
