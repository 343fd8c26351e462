package repositories

import (
	"context"
	"time"

	"github.com/isdelr/tasklist-be/internal/database"
	"github.com/isdelr/tasklist-be/internal/models"
	"github.com/pkg/errors"
)

// EventRepository persists the activity log.
type EventRepository struct {
	db database.DBTX
}

func NewEventRepository(db database.DBTX) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event models.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, user_id, task_id, type, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.UserID, event.TaskID, event.Type, event.Message, event.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert event")
	}
	return nil
}

// ListRecent returns the user's newest events first.
func (r *EventRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, task_id, type, message, created_at FROM events
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select events")
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.UserID, &event.TaskID, &event.Type, &event.Message, &event.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate events")
	}
	return events, nil
}

// DeleteOlderThan removes events created before cutoff and reports how many.
func (r *EventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "delete events")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "delete events")
	}
	return n, nil
}
