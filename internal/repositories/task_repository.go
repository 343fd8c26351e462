package repositories

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/isdelr/tasklist-be/internal/apperrors"
	"github.com/isdelr/tasklist-be/internal/database"
	"github.com/isdelr/tasklist-be/internal/models"
	"github.com/pkg/errors"
)

const taskColumns = `id, owner_id, text, done, created_at, updated_at`

// TaskRepository stores tasks. Every statement is scoped by owner_id; a task
// that exists but belongs to someone else is reported exactly like a missing
// one.
type TaskRepository struct {
	db database.DBTX
}

func NewTaskRepository(db database.DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task models.Task) error {
	if task.Text == "" {
		return apperrors.Validation("Task text is required")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID, task.OwnerID, task.Text, task.Done, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "insert task")
	}
	return nil
}

// List returns one page of the owner's tasks in creation order. Pages past the
// end are empty, never nil.
func (r *TaskRepository) List(ctx context.Context, ownerID string, page, pageSize int) ([]models.Task, error) {
	if page < 1 || pageSize < 1 {
		return nil, apperrors.Validation("page and page size must be positive")
	}
	// An offset that does not fit in an int is past the end of any table.
	if page-1 > math.MaxInt/pageSize {
		return make([]models.Task, 0), nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner_id = ? ORDER BY created_at, id LIMIT ? OFFSET ?`,
		ownerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, errors.Wrap(err, "select tasks")
	}
	defer rows.Close()

	tasks := make([]models.Task, 0, pageSize)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate tasks")
	}
	return tasks, nil
}

// GetForMutation loads a task only if ownerID owns it.
func (r *TaskRepository) GetForMutation(ctx context.Context, ownerID, taskID string) (models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND owner_id = ?`, taskID, ownerID)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, apperrors.ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

// MarkDone sets done. Repeating it is a no-op that still succeeds; updated_at
// only moves on the first call.
func (r *TaskRepository) MarkDone(ctx context.Context, ownerID, taskID string, at time.Time) (models.Task, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET updated_at = CASE WHEN done THEN updated_at ELSE ? END, done = ?
		 WHERE id = ? AND owner_id = ?`,
		at, true, taskID, ownerID)
	if err := checkAffected(res, err, "mark task done"); err != nil {
		return models.Task{}, err
	}
	return r.GetForMutation(ctx, ownerID, taskID)
}

func (r *TaskRepository) UpdateText(ctx context.Context, ownerID, taskID, text string, at time.Time) (models.Task, error) {
	if text == "" {
		return models.Task{}, apperrors.Validation("Task text is required")
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET text = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		text, at, taskID, ownerID)
	if err := checkAffected(res, err, "update task"); err != nil {
		return models.Task{}, err
	}
	return r.GetForMutation(ctx, ownerID, taskID)
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND owner_id = ?`, taskID, ownerID)
	return checkAffected(res, err, "delete task")
}

func checkAffected(res sql.Result, err error, op string) error {
	if err != nil {
		return errors.Wrap(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, op)
	}
	if n == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var task models.Task
	err := row.Scan(&task.ID, &task.OwnerID, &task.Text, &task.Done, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, err
		}
		return models.Task{}, errors.Wrap(err, "scan task")
	}
	return task, nil
}
