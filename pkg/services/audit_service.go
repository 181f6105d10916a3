package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pitchrank/pitchrank-engine/pkg/models"
	"github.com/pitchrank/pitchrank-engine/pkg/repositories"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditService reads the merge ledger for operator review. The ledger is
// append-only; entries referencing teams that no longer resolve still appear.
type AuditService interface {
	// GetTeamHistory returns the ledger entries touching a team on either
	// side of a merge, newest first.
	GetTeamHistory(ctx context.Context, teamID uuid.UUID, limit int) ([]*models.MergeAuditEntry, error)

	// GetRecent returns the newest ledger entries across all teams.
	GetRecent(ctx context.Context, limit int) ([]*models.MergeAuditEntry, error)
}

type auditService struct {
	audit  repositories.AuditRepository
	logger *zap.Logger
}

// NewAuditService creates an AuditService.
func NewAuditService(audit repositories.AuditRepository, logger *zap.Logger) AuditService {
	return &auditService{
		audit:  audit,
		logger: logger.Named("audit-service"),
	}
}

var _ AuditService = (*auditService)(nil)

func (s *auditService) GetTeamHistory(ctx context.Context, teamID uuid.UUID, limit int) ([]*models.MergeAuditEntry, error) {
	entries, err := s.audit.ListByTeam(ctx, teamID, clampAuditLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get team history: %w", err)
	}

	s.logger.Debug("Fetched team history",
		zap.String("team_id", teamID.String()),
		zap.Int("entries", len(entries)))

	return entries, nil
}

func (s *auditService) GetRecent(ctx context.Context, limit int) ([]*models.MergeAuditEntry, error) {
	entries, err := s.audit.ListRecent(ctx, clampAuditLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get recent audit entries: %w", err)
	}

	return entries, nil
}

func clampAuditLimit(limit int) int {
	if limit <= 0 {
		return defaultAuditLimit
	}
	if limit > maxAuditLimit {
		return maxAuditLimit
	}
	return limit
}
