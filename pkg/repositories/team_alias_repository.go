package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pitchrank/pitchrank-engine/pkg/database"
	"github.com/pitchrank/pitchrank-engine/pkg/models"
)

// TeamAliasRepository provides data access for the provider alias map.
type TeamAliasRepository interface {
	Create(ctx context.Context, alias *models.TeamAlias) error
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*models.TeamAlias, error)
	// RepointTeam moves every alias of one team to another and returns the
	// number of rows moved. The merge cascade.
	RepointTeam(ctx context.Context, fromTeamID, toTeamID uuid.UUID) (int64, error)
	// RepointByProviderRefs moves only the aliases of fromTeamID whose
	// provider identifier appears in refs. The revert cascade: restores a
	// deprecated team's original footprint without touching aliases the
	// canonical team acquired elsewhere.
	RepointByProviderRefs(ctx context.Context, fromTeamID, toTeamID uuid.UUID, refs []models.ProviderRef) (int64, error)
}

type teamAliasRepository struct{}

// NewTeamAliasRepository creates a new TeamAliasRepository.
func NewTeamAliasRepository() TeamAliasRepository {
	return &teamAliasRepository{}
}

var _ TeamAliasRepository = (*teamAliasRepository)(nil)

func (r *teamAliasRepository) Create(ctx context.Context, alias *models.TeamAlias) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()
	if alias.CreatedAt.IsZero() {
		alias.CreatedAt = now
	}
	if alias.UpdatedAt.IsZero() {
		alias.UpdatedAt = now
	}
	if alias.ID == uuid.Nil {
		alias.ID = uuid.New()
	}

	query := `
		INSERT INTO team_aliases (
			id, provider, provider_team_id, team_id, match_method,
			confidence, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := scope.Conn.Exec(ctx, query,
		alias.ID,
		alias.Provider,
		alias.ProviderTeamID,
		alias.TeamID,
		alias.MatchMethod,
		alias.Confidence,
		alias.CreatedAt,
		alias.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create team alias: %w", err)
	}

	return nil
}

func (r *teamAliasRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*models.TeamAlias, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, provider, provider_team_id, team_id, match_method,
		       confidence, created_at, updated_at
		FROM team_aliases
		WHERE team_id = $1
		ORDER BY provider, provider_team_id`

	rows, err := scope.Conn.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team aliases: %w", err)
	}
	defer rows.Close()

	var aliases []*models.TeamAlias
	for rows.Next() {
		var a models.TeamAlias
		err := rows.Scan(
			&a.ID,
			&a.Provider,
			&a.ProviderTeamID,
			&a.TeamID,
			&a.MatchMethod,
			&a.Confidence,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team alias: %w", err)
		}
		aliases = append(aliases, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team aliases: %w", err)
	}

	return aliases, nil
}

func (r *teamAliasRepository) RepointTeam(ctx context.Context, fromTeamID, toTeamID uuid.UUID) (int64, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE team_aliases
		SET team_id = $2, updated_at = NOW()
		WHERE team_id = $1`

	result, err := scope.Conn.Exec(ctx, query, fromTeamID, toTeamID)
	if err != nil {
		return 0, fmt.Errorf("failed to repoint team aliases: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *teamAliasRepository) RepointByProviderRefs(ctx context.Context, fromTeamID, toTeamID uuid.UUID, refs []models.ProviderRef) (int64, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	if len(refs) == 0 {
		return 0, nil
	}

	// CTE with parallel arrays so the footprint binds as two parameters
	// regardless of its size.
	query := `
		WITH footprint AS (
			SELECT unnest($3::text[]) as provider,
			       unnest($4::text[]) as provider_team_id
		)
		UPDATE team_aliases a
		SET team_id = $2, updated_at = NOW()
		WHERE a.team_id = $1
		  AND EXISTS (
			  SELECT 1 FROM footprint f
			  WHERE f.provider = a.provider AND f.provider_team_id = a.provider_team_id
		  )`

	providers := make([]string, len(refs))
	providerTeamIDs := make([]string, len(refs))
	for i, ref := range refs {
		providers[i] = ref.Provider
		providerTeamIDs[i] = ref.ProviderTeamID
	}

	result, err := scope.Conn.Exec(ctx, query, fromTeamID, toTeamID, providers, providerTeamIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to repoint aliases by footprint: %w", err)
	}

	return result.RowsAffected(), nil
}
