package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pitchrank/pitchrank-engine/pkg/models"
	"github.com/pitchrank/pitchrank-engine/pkg/services"
)

// AuditListResponse wraps merge ledger entries for list endpoints.
type AuditListResponse struct {
	Entries []*models.MergeAuditEntry `json:"entries"`
	Count   int                       `json:"count"`
}

// AuditHandler serves the merge ledger.
type AuditHandler struct {
	auditService services.AuditService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(auditService services.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// RegisterRoutes registers the audit handler's routes on the given mux.
func (h *AuditHandler) RegisterRoutes(mux *http.ServeMux, scopeMiddleware ScopeMiddleware) {
	// GET /api/audit/recent - newest ledger entries across all teams
	mux.HandleFunc("GET /api/audit/recent", scopeMiddleware(h.Recent))
}

// Recent handles GET /api/audit/recent
func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, ok := ParseLimitQuery(w, r, h.logger)
	if !ok {
		return
	}

	entries, err := h.auditService.GetRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to get recent audit entries", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "recent_audit_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if entries == nil {
		entries = []*models.MergeAuditEntry{}
	}

	response := AuditListResponse{
		Entries: entries,
		Count:   len(entries),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
