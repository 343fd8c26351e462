package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/tasklist-be/internal/database"
	"github.com/isdelr/tasklist-be/internal/models"
	"github.com/isdelr/tasklist-be/internal/repositories"
)

const (
	DefaultEventLimit = 20
	MaxEventLimit     = 100
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	GetRecentEvents(ctx context.Context, userID string, limit int) ([]models.Event, error)
	PruneOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// EventService reads and prunes the activity log. Events are written by the
// other services inside their own transactions.
type EventService struct {
	db  *database.DB
	now func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *database.DB) *EventService {
	return &EventService{db: db, now: time.Now}
}

// GetRecentEvents returns the user's newest events. Non-positive limits use
// the default; large ones are capped.
func (s *EventService) GetRecentEvents(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	if limit > MaxEventLimit {
		limit = MaxEventLimit
	}
	return repositories.NewEventRepository(s.db).ListRecent(ctx, userID, limit)
}

// PruneOlderThan deletes events older than age.
func (s *EventService) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	return repositories.NewEventRepository(s.db).DeleteOlderThan(ctx, timestamp(s.now).Add(-age))
}

func recordEvent(ctx context.Context, db database.DBTX, userID string, taskID *string, eventType, message string, at time.Time) error {
	return repositories.NewEventRepository(db).Create(ctx, models.Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		TaskID:    taskID,
		Type:      eventType,
		Message:   message,
		CreatedAt: at,
	})
}
