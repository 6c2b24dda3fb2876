package handlers

import (
	"encoding/json"
	"net/http"

	"phishguard/internal/domain/services"
	"phishguard/pkg/logger"
)

// maxBodyBytes bounds request bodies; content length is validated separately
const maxBodyBytes = 64 << 10

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Analysis *AnalysisHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Service *services.AnalysisService
	Checks  []ReadinessCheck
	Version string
	Logger  *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	var models ModelReporter
	if deps.Service != nil {
		models = deps.Service
	}
	return &Handlers{
		Health:   NewHealthHandler(deps.Version, models, deps.Checks, deps.Logger),
		Analysis: NewAnalysisHandler(deps.Service, deps.Logger),
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dest)
}
