package models

import "time"

// Task is a single to-do item owned by exactly one user.
type Task struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
