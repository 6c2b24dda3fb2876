package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"phishguard/internal/domain/models"
	"phishguard/internal/domain/services"
	"phishguard/internal/domain/services/ai"
	"phishguard/pkg/logger"
)

// AnalysisHandler handles analysis API requests
type AnalysisHandler struct {
	service *services.AnalysisService
	logger  *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *services.AnalysisService, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  log.WithComponent("analysis-handler"),
	}
}

// URLRequest is the body of POST /api/v1/analyze/url
type URLRequest struct {
	URL string `json:"url"`
}

// MessageRequest is the body of POST /api/v1/analyze/message
type MessageRequest struct {
	Message string `json:"message"`
}

// DetectResponse is the response of POST /api/v1/detect
type DetectResponse struct {
	ContentType models.ContentType `json:"content_type"`
}

// Analyze handles POST /api/v1/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.service.Analyze(r.Context(), req.Content)
	if err != nil {
		h.respondServiceError(w, err, "failed to analyze content")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// AnalyzeURL handles POST /api/v1/analyze/url
func (h *AnalysisHandler) AnalyzeURL(w http.ResponseWriter, r *http.Request) {
	var req URLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	analysis, err := h.service.AnalyzeURL(r.Context(), req.URL)
	if err != nil {
		h.respondServiceError(w, err, "failed to analyze URL")
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

// AnalyzeMessage handles POST /api/v1/analyze/message. Model failures are
// reported rather than replaced by the fallback verdict.
func (h *AnalysisHandler) AnalyzeMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	analysis, err := h.service.AnalyzeMessage(r.Context(), req.Message)
	if err != nil {
		h.respondServiceError(w, err, "failed to analyze message")
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

// Detect handles POST /api/v1/detect
func (h *AnalysisHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	respondJSON(w, http.StatusOK, DetectResponse{ContentType: h.service.Detect(req.Content)})
}

// Features handles GET /api/v1/features?url=&enrich=
func (h *AnalysisHandler) Features(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}
	enrich, _ := strconv.ParseBool(r.URL.Query().Get("enrich"))

	features, err := h.service.ExtractFeatures(r.Context(), rawURL, enrich)
	if err != nil {
		h.respondServiceError(w, err, "failed to extract features")
		return
	}

	respondJSON(w, http.StatusOK, features)
}

// Recent handles GET /api/v1/analyses?limit=
func (h *AnalysisHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.respondServiceError(w, err, "failed to list analyses")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"analyses": records,
		"count":    len(records),
	})
}

// Stats handles GET /api/v1/stats
func (h *AnalysisHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to load stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Samples handles GET /api/v1/samples
func (h *AnalysisHandler) Samples(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"samples": services.Samples()})
}

func (h *AnalysisHandler) respondServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, services.ErrInputTooShort):
		respondError(w, http.StatusBadRequest, services.InputTooShortMessage)
	case errors.Is(err, services.ErrInputTooLong):
		respondError(w, http.StatusRequestEntityTooLarge, "input exceeds the maximum length")
	case errors.Is(err, services.ErrHistoryDisabled):
		respondError(w, http.StatusServiceUnavailable, "analysis history is not enabled")
	case errors.Is(err, ai.ErrModelUnavailable), errors.Is(err, ai.ErrModelLoading):
		h.logger.Warn().Err(err).Msg(message)
		respondError(w, http.StatusServiceUnavailable, fmt.Sprintf("%s: models unavailable", message))
	default:
		h.logger.Error().Err(err).Msg(message)
		respondError(w, http.StatusInternalServerError, message)
	}
}
