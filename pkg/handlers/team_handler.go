package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/pitchrank/pitchrank-engine/pkg/apperrors"
	"github.com/pitchrank/pitchrank-engine/pkg/models"
	"github.com/pitchrank/pitchrank-engine/pkg/services"
)

// TeamHandler serves registry inspection endpoints.
type TeamHandler struct {
	teamService  services.TeamService
	mergeService services.MergeService
	auditService services.AuditService
	logger       *zap.Logger
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(teamService services.TeamService, mergeService services.MergeService, auditService services.AuditService, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{
		teamService:  teamService,
		mergeService: mergeService,
		auditService: auditService,
		logger:       logger,
	}
}

// RegisterRoutes registers the team handler's routes on the given mux.
func (h *TeamHandler) RegisterRoutes(mux *http.ServeMux, scopeMiddleware ScopeMiddleware) {
	// GET /api/teams/{tid} - team row plus its provider aliases
	mux.HandleFunc("GET /api/teams/{tid}", scopeMiddleware(h.Get))
	// GET /api/teams/{tid}/merge-status - active or merged away, and into what
	mux.HandleFunc("GET /api/teams/{tid}/merge-status", scopeMiddleware(h.MergeStatus))
	// GET /api/teams/{tid}/audit - merge ledger entries touching this team
	mux.HandleFunc("GET /api/teams/{tid}/audit", scopeMiddleware(h.History))
}

// Get handles GET /api/teams/{tid}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	teamID, ok := ParseTeamID(w, r, h.logger)
	if !ok {
		return
	}

	detail, err := h.teamService.GetTeamDetail(r.Context(), teamID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", "Team not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get team",
			zap.String("team_id", teamID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_team_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: detail}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// MergeStatus handles GET /api/teams/{tid}/merge-status
func (h *TeamHandler) MergeStatus(w http.ResponseWriter, r *http.Request) {
	teamID, ok := ParseTeamID(w, r, h.logger)
	if !ok {
		return
	}

	status, err := h.mergeService.GetMergeStatus(r.Context(), teamID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", "Team not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get merge status",
			zap.String("team_id", teamID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "merge_status_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: status}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// History handles GET /api/teams/{tid}/audit
//
// The ledger outlives its teams, so an unknown team ID returns an empty
// list rather than 404.
func (h *TeamHandler) History(w http.ResponseWriter, r *http.Request) {
	teamID, ok := ParseTeamID(w, r, h.logger)
	if !ok {
		return
	}

	limit, ok := ParseLimitQuery(w, r, h.logger)
	if !ok {
		return
	}

	entries, err := h.auditService.GetTeamHistory(r.Context(), teamID, limit)
	if err != nil {
		h.logger.Error("Failed to get team merge history",
			zap.String("team_id", teamID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "team_history_failed", err.Error()); err != nil {
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
