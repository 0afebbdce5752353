package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/paylane/gateway/repositories"
	"github.com/paylane/gateway/repositories/postgres"
	"github.com/paylane/gateway/utils"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db     *postgres.DB
	cache  repositories.TrustCache
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *postgres.DB, cache repositories.TrustCache, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// HandleHealth handles GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// HandleReadiness handles GET /readyz. The database is required; the cache
// tier is reported but never fails readiness, requests degrade to the
// relational path without it.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": "healthy",
		"cache":    "healthy",
	}
	status := http.StatusOK

	if err := h.db.HealthCheck(ctx); err != nil {
		h.logger.Error("database readiness check failed", zap.Error(err))
		checks["database"] = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	if _, err := h.cache.Acquire(ctx); err != nil {
		h.logger.Warn("cache readiness check failed", zap.Error(err))
		checks["cache"] = "unavailable"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	_ = utils.WriteJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
	})
}
