package api

import (
	"net/http"
	"time"

	"github.com/nutriplan/nutriplan-server/internal/api/respond"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	isHealthy func() bool
}

// NewHealthHandler creates a health handler backed by the given probe. A nil
// probe reports healthy, which keeps tests and the sqlite dev mode simple.
func NewHealthHandler(isHealthy func() bool) *HealthHandler {
	if isHealthy == nil {
		isHealthy = func() bool { return true }
	}
	return &HealthHandler{isHealthy: isHealthy}
}

// CheckHealth handles GET /api/health.
// Always returns 200; the body reports healthy/unhealthy. 500 indicates
// handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if h.isHealthy() {
		status = "healthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
