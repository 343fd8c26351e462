package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/isdelr/tasklist-be/internal/apperrors"
	"github.com/isdelr/tasklist-be/internal/database"
	"github.com/isdelr/tasklist-be/internal/models"
	"github.com/isdelr/tasklist-be/internal/repositories"
	"github.com/pkg/errors"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxTaskLength   = 200
)

// Live update actions sent to the task owner.
const (
	ActionTaskCreated = "task.created"
	ActionTaskUpdated = "task.updated"
	ActionTaskDeleted = "task.deleted"
)

// TaskServiceProvider defines the interface for task services. Every method
// takes the authenticated owner id first.
type TaskServiceProvider interface {
	CreateTask(ctx context.Context, ownerID, text string) (models.Task, error)
	ListTasks(ctx context.Context, ownerID string, page, pageSize int) ([]models.Task, error)
	MarkTaskDone(ctx context.Context, ownerID, taskID string) (models.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID, text string) (models.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID string) error
}

// TaskNotifier pushes task changes to the owner's live connections.
type TaskNotifier interface {
	NotifyUser(userID, action string, payload interface{})
}

// TaskService provides business logic for task management.
type TaskService struct {
	db       *database.DB
	notifier TaskNotifier
	now      func() time.Time
}

// NewTaskService creates a new TaskService. notifier may be nil.
func NewTaskService(db *database.DB, notifier TaskNotifier) *TaskService {
	return &TaskService{db: db, notifier: notifier, now: time.Now}
}

// NormalizePage applies the pagination defaults: non-positive values fall
// back to page 1 and 10 per page, and page size is capped.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.Validation("Task text is required")
	}
	if utf8.RuneCountInString(text) > MaxTaskLength {
		return apperrors.Validation("Task text must be at most 200 characters")
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, ownerID, text string) (models.Task, error) {
	if err := validateText(text); err != nil {
		return models.Task{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return models.Task{}, errors.Wrap(err, "generate task id")
	}
	now := timestamp(s.now)
	task := models.Task{
		ID:        id.String(),
		OwnerID:   ownerID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		if err := repositories.NewTaskRepository(tx).Create(ctx, task); err != nil {
			return err
		}
		return recordEvent(ctx, tx, ownerID, &task.ID, models.EventTaskCreate, "Task created", now)
	})
	if err != nil {
		return models.Task{}, err
	}

	s.notify(ownerID, ActionTaskCreated, task)
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, ownerID string, page, pageSize int) ([]models.Task, error) {
	page, pageSize = NormalizePage(page, pageSize)
	return repositories.NewTaskRepository(s.db).List(ctx, ownerID, page, pageSize)
}

// MarkTaskDone is idempotent: marking a done task again succeeds.
func (s *TaskService) MarkTaskDone(ctx context.Context, ownerID, taskID string) (models.Task, error) {
	var task models.Task
	now := timestamp(s.now)
	err := s.db.WithTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		var err error
		task, err = repositories.NewTaskRepository(tx).MarkDone(ctx, ownerID, taskID, now)
		if err != nil {
			return err
		}
		return recordEvent(ctx, tx, ownerID, &task.ID, models.EventTaskDone, "Task marked as done", now)
	})
	if err != nil {
		return models.Task{}, err
	}

	s.notify(ownerID, ActionTaskUpdated, task)
	return task, nil
}

// UpdateTask replaces the text of an owned task. A missing or foreign task is
// reported as not found before the new text is validated.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID, text string) (models.Task, error) {
	var task models.Task
	now := timestamp(s.now)
	err := s.db.WithTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		repo := repositories.NewTaskRepository(tx)
		if _, err := repo.GetForMutation(ctx, ownerID, taskID); err != nil {
			return err
		}
		if err := validateText(text); err != nil {
			return err
		}

		var err error
		task, err = repo.UpdateText(ctx, ownerID, taskID, text, now)
		if err != nil {
			return err
		}
		return recordEvent(ctx, tx, ownerID, &task.ID, models.EventTaskUpdate, "Task updated", now)
	})
	if err != nil {
		return models.Task{}, err
	}

	s.notify(ownerID, ActionTaskUpdated, task)
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	now := timestamp(s.now)
	err := s.db.WithTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		if err := repositories.NewTaskRepository(tx).Delete(ctx, ownerID, taskID); err != nil {
			return err
		}
		return recordEvent(ctx, tx, ownerID, &taskID, models.EventTaskDelete, "Task deleted", now)
	})
	if err != nil {
		return err
	}

	s.notify(ownerID, ActionTaskDeleted, map[string]string{"id": taskID})
	return nil
}

func (s *TaskService) notify(ownerID, action string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.NotifyUser(ownerID, action, payload)
	}
}
