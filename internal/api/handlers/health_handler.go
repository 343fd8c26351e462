package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/isdelr/tasklist-be/internal/api/respond"
	"github.com/isdelr/tasklist-be/internal/monitoring"
	"github.com/rs/zerolog/log"
)

// Pinger is satisfied by the database pool.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and basic process statistics.
type HealthHandler struct {
	db    Pinger
	stats *monitoring.StatCollector
}

func NewHealthHandler(db Pinger, stats *monitoring.StatCollector) *HealthHandler {
	return &HealthHandler{db: db, stats: stats}
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status   string                  `json:"status"`
	Database string                  `json:"database"`
	System   *monitoring.SystemStats `json:"system,omitempty"`
}

// Welcome answers GET / with a short greeting.
func (h *HealthHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Welcome to your Improved To-Do API!"))
}

// Health pings the database and attaches the latest system stats. A failed
// ping yields 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "ok"}
	status := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("Health check: database ping failed")
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if h.stats != nil {
		stats := h.stats.Latest()
		resp.System = &stats
	}
	respond.JSON(w, status, resp)
}
