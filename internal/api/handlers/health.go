package handlers

import (
	"context"
	"net/http"
	"time"

	"phishguard/pkg/logger"
)

// ReadinessCheck probes one dependency for GET /ready
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// ModelReporter reports whether the message models can be loaded
type ModelReporter interface {
	ModelsAvailable(ctx context.Context) bool
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	version   string
	models    ModelReporter
	checks    []ReadinessCheck
	logger    *logger.Logger
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. models may be nil.
func NewHealthHandler(version string, models ModelReporter, checks []ReadinessCheck, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		version:   version,
		models:    models,
		checks:    checks,
		logger:    log.WithComponent("health"),
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready. Failing dependencies make the service not ready;
// unavailable models only degrade it, since URL analysis still works.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.checks)+1)
	status := http.StatusOK
	overallStatus := "ready"

	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			h.logger.Warn().Err(err).Str("check", c.Name).Msg("readiness check failed")
			checks[c.Name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			overallStatus = "not ready"
			continue
		}
		checks[c.Name] = "healthy"
	}

	switch {
	case h.models == nil:
		checks["models"] = "not configured"
	case h.models.ModelsAvailable(ctx):
		checks["models"] = "available"
	default:
		checks["models"] = "unavailable"
		if status == http.StatusOK {
			overallStatus = "degraded"
		}
	}

	respondJSON(w, status, HealthResponse{
		Status:    overallStatus,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}
