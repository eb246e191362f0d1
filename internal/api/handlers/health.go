package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/vixterm/pkg/database"
	"github.com/wonny/vixterm/pkg/logger"
)

// DBChecker reports pool health (database.DB)
type DBChecker interface {
	HealthCheck(ctx context.Context) (*database.Health, error)
}

// HealthHandler serves /health with the database pool status
type HealthHandler struct {
	db     DBChecker
	logger *logger.Logger
	now    func() time.Time
}

// NewHealthHandler creates a health handler; a nil db reports the database as disabled
func NewHealthHandler(db DBChecker, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: log, now: time.Now}
}

// Check handles GET /health
// 503은 DB ping 실패일 때만
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"service": "vixterm-api",
		"time":    h.now().UTC().Format(time.RFC3339),
	}

	if h.db == nil {
		body["database"] = "disabled"
		respondJSON(w, http.StatusOK, body)
		return
	}

	health, err := h.db.HealthCheck(r.Context())
	if health != nil {
		body["database"] = health
	}
	if err != nil {
		h.logger.WithError(err).Warn("Database health check failed")
		body["status"] = "degraded"
		respondJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	respondJSON(w, http.StatusOK, body)
}
