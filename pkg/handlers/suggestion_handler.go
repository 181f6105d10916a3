package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/pitchrank/pitchrank-engine/pkg/services"
)

// SuggestionHandler serves the duplicate-team scan.
type SuggestionHandler struct {
	suggestionService services.SuggestionService
	logger            *zap.Logger
}

// NewSuggestionHandler creates a new suggestion handler.
func NewSuggestionHandler(suggestionService services.SuggestionService, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionService: suggestionService,
		logger:            logger,
	}
}

// RegisterRoutes registers the suggestion handler's routes on the given mux.
func (h *SuggestionHandler) RegisterRoutes(mux *http.ServeMux, scopeMiddleware ScopeMiddleware) {
	// GET /api/merge/suggestions - scan a cohort for probable duplicates
	mux.HandleFunc("GET /api/merge/suggestions", scopeMiddleware(h.Suggest))
}

// Suggest handles GET /api/merge/suggestions
func (h *SuggestionHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := &services.SuggestionQuery{
		AgeGroup: params.Get("age_group"),
		Gender:   params.Get("gender"),
		State:    params.Get("state"),
	}

	if raw := params.Get("min_confidence"); raw != "" {
		minConfidence, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_min_confidence", "min_confidence must be a number"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		query.MinConfidence = &minConfidence
	}

	limit, ok := ParseLimitQuery(w, r, h.logger)
	if !ok {
		return
	}
	query.Limit = limit

	report, err := h.suggestionService.SuggestMerges(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to scan for merge suggestions",
			zap.String("age_group", query.AgeGroup),
			zap.String("gender", query.Gender),
			zap.String("state", query.State),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "suggestions_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: report}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
