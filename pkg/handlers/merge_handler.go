package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pitchrank/pitchrank-engine/pkg/apperrors"
	"github.com/pitchrank/pitchrank-engine/pkg/services"
)

// MergeTeamsRequest is the request body for executing a merge.
type MergeTeamsRequest struct {
	DeprecatedTeamID string             `json:"deprecated_team_id"`
	CanonicalTeamID  string             `json:"canonical_team_id"`
	Operator         string             `json:"operator"`
	Reason           *string            `json:"reason,omitempty"`
	Confidence       *float64           `json:"confidence,omitempty"`
	Signals          map[string]float64 `json:"signals,omitempty"`
}

// RevertMergeRequest is the request body for reverting a merge.
type RevertMergeRequest struct {
	Operator string  `json:"operator"`
	Reason   *string `json:"reason,omitempty"`
}

// MergeHandler executes operator-confirmed merges and reverts.
type MergeHandler struct {
	mergeService services.MergeService
	logger       *zap.Logger
}

// NewMergeHandler creates a new merge handler.
func NewMergeHandler(mergeService services.MergeService, logger *zap.Logger) *MergeHandler {
	return &MergeHandler{
		mergeService: mergeService,
		logger:       logger,
	}
}

// RegisterRoutes registers the merge handler's routes on the given mux.
func (h *MergeHandler) RegisterRoutes(mux *http.ServeMux, scopeMiddleware ScopeMiddleware) {
	// POST /api/merges - fold a duplicate team into its canonical record
	mux.HandleFunc("POST /api/merges", scopeMiddleware(h.Merge))
	// POST /api/merges/{mid}/revert - undo a recorded merge
	mux.HandleFunc("POST /api/merges/{mid}/revert", scopeMiddleware(h.Revert))
}

// Merge handles POST /api/merges
func (h *MergeHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req MergeTeamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.DeprecatedTeamID == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_team_id", "deprecated_team_id is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	deprecatedID, err := uuid.Parse(req.DeprecatedTeamID)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_team_id", "deprecated_team_id must be a UUID"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.CanonicalTeamID == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_team_id", "canonical_team_id is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	canonicalID, err := uuid.Parse(req.CanonicalTeamID)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_team_id", "canonical_team_id must be a UUID"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Operator == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_operator", "operator is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.mergeService.MergeTeams(r.Context(), &services.MergeRequest{
		DeprecatedTeamID: deprecatedID,
		CanonicalTeamID:  canonicalID,
		Operator:         req.Operator,
		Reason:           req.Reason,
		Confidence:       req.Confidence,
		Signals:          req.Signals,
	})
	if err != nil {
		// Precondition failures carry the team names, so the message goes
		// through verbatim for the operator.
		if errors.Is(err, apperrors.ErrSelfMerge) {
			if err := ErrorResponse(w, http.StatusBadRequest, "self_merge", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		if errors.Is(err, apperrors.ErrAlreadyMerged) {
			if err := ErrorResponse(w, http.StatusConflict, "already_merged", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		if errors.Is(err, apperrors.ErrCycleDetected) {
			if err := ErrorResponse(w, http.StatusConflict, "cycle_detected", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to merge teams",
			zap.String("deprecated_team_id", deprecatedID.String()),
			zap.String("canonical_team_id", canonicalID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "merge_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Revert handles POST /api/merges/{mid}/revert
func (h *MergeHandler) Revert(w http.ResponseWriter, r *http.Request) {
	mergeID, ok := ParseMergeID(w, r, h.logger)
	if !ok {
		return
	}

	var req RevertMergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Operator == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_operator", "operator is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.mergeService.RevertMerge(r.Context(), &services.RevertRequest{
		MergeID:  mergeID,
		Operator: req.Operator,
		Reason:   req.Reason,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to revert merge",
			zap.String("merge_id", mergeID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "revert_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
