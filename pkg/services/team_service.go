package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pitchrank/pitchrank-engine/pkg/apperrors"
	"github.com/pitchrank/pitchrank-engine/pkg/models"
	"github.com/pitchrank/pitchrank-engine/pkg/repositories"
)

// TeamDetail is a registry row together with its provider aliases.
type TeamDetail struct {
	Team    *models.Team        `json:"team"`
	Aliases []*models.TeamAlias `json:"aliases"`
}

// TeamService reads registry teams for operator inspection.
type TeamService interface {
	// GetTeamDetail returns the team row with every provider alias currently
	// pointing at it.
	GetTeamDetail(ctx context.Context, teamID uuid.UUID) (*TeamDetail, error)
}

type teamService struct {
	teams   repositories.TeamRepository
	aliases repositories.TeamAliasRepository
	logger  *zap.Logger
}

// NewTeamService creates a TeamService.
func NewTeamService(teams repositories.TeamRepository, aliases repositories.TeamAliasRepository, logger *zap.Logger) TeamService {
	return &teamService{
		teams:   teams,
		aliases: aliases,
		logger:  logger.Named("team-service"),
	}
}

var _ TeamService = (*teamService)(nil)

func (s *teamService) GetTeamDetail(ctx context.Context, teamID uuid.UUID) (*TeamDetail, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if team == nil {
		return nil, fmt.Errorf("team %s: %w", teamID, apperrors.ErrNotFound)
	}

	aliases, err := s.aliases.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	if aliases == nil {
		aliases = []*models.TeamAlias{}
	}

	return &TeamDetail{Team: team, Aliases: aliases}, nil
}
