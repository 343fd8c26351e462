package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/tasklist-be/internal/api/respond"
	"github.com/isdelr/tasklist-be/internal/services"
)

// TaskHandler handles HTTP requests for the authenticated user's tasks. The
// owner always comes from the session, never from the request.
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

// TaskPayload is the body of create and update requests. "task" is accepted
// as an alias of "text".
type TaskPayload struct {
	Text string `json:"text"`
	Task string `json:"task"`
}

func (p TaskPayload) value() string {
	if p.Text != "" {
		return p.Text
	}
	return p.Task
}

// Create adds a task for the current user.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var payload TaskPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}

	task, err := h.service.CreateTask(r.Context(), userID, payload.value())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, task)
}

// List returns one page of the current user's tasks. Query parameters:
// page, and page_size (alias limit).
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	page := queryInt(r, "page")
	pageSize := queryInt(r, "page_size", "limit")
	tasks, err := h.service.ListTasks(r.Context(), userID, page, pageSize)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tasks)
}

// MarkDone flags a task as done. Repeating it succeeds.
func (h *TaskHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	task, err := h.service.MarkTaskDone(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, task)
}

// Update replaces a task's text.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var payload TaskPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), userID, chi.URLParam(r, "id"), payload.value())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, task)
}

// Delete removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.DeleteTask(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.MessageBody{Message: "Task deleted"})
}
