package handlers

import (
	"net/http"

	"github.com/isdelr/tasklist-be/internal/api/respond"
	"github.com/isdelr/tasklist-be/internal/services"
)

// EventHandler serves the current user's activity log.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request to get recent activity/events.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	events, err := h.service.GetRecentEvents(r.Context(), userID, queryInt(r, "limit"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, events)
}
