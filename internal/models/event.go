package models

import "time"

// Event types recorded in the activity log.
const (
	EventUserRegister = "user.register"
	EventUserLogin    = "user.login"
	EventTaskCreate   = "task.create"
	EventTaskDone     = "task.done"
	EventTaskUpdate   = "task.update"
	EventTaskDelete   = "task.delete"
)

// Event represents an entry in a user's activity log.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	TaskID    *string   `json:"taskId,omitempty"` // Nil for account events
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
