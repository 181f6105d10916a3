package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pitchrank/pitchrank-engine/pkg/database"
	"github.com/pitchrank/pitchrank-engine/pkg/models"
)

// GameRepository provides read access to game evidence. Game rows are owned
// by ingestion and are never mutated here; Create exists for seeding and
// tests only.
type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	// CountByTeam counts games referencing the team on either side.
	CountByTeam(ctx context.Context, teamID uuid.UUID) (int, error)
	// ListSidesForTeams bulk-loads the per-team game views for a candidate
	// set in two queries (home side, away side) and groups them by team id.
	ListSidesForTeams(ctx context.Context, teamIDs []uuid.UUID) (map[uuid.UUID][]models.GameSide, error)
	// ListProviderRefs returns the distinct provider identifiers the team's
	// games were ingested under, from whichever side the team played.
	ListProviderRefs(ctx context.Context, teamID uuid.UUID) ([]models.ProviderRef, error)
}

type gameRepository struct{}

// NewGameRepository creates a new GameRepository.
func NewGameRepository() GameRepository {
	return &gameRepository{}
}

var _ GameRepository = (*gameRepository)(nil)

func (r *gameRepository) Create(ctx context.Context, game *models.Game) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()
	if game.CreatedAt.IsZero() {
		game.CreatedAt = now
	}
	if game.UpdatedAt.IsZero() {
		game.UpdatedAt = now
	}
	if game.ID == uuid.Nil {
		game.ID = uuid.New()
	}

	query := `
		INSERT INTO games (
			id, home_team_id, away_team_id, home_score, away_score,
			game_date, provider, home_provider_team_id, away_provider_team_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := scope.Conn.Exec(ctx, query,
		game.ID,
		game.HomeTeamID,
		game.AwayTeamID,
		game.HomeScore,
		game.AwayScore,
		game.GameDate,
		game.Provider,
		game.HomeProviderTeamID,
		game.AwayProviderTeamID,
		game.CreatedAt,
		game.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

func (r *gameRepository) CountByTeam(ctx context.Context, teamID uuid.UUID) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT COUNT(*)
		FROM games
		WHERE home_team_id = $1 OR away_team_id = $1`

	var count int
	if err := scope.Conn.QueryRow(ctx, query, teamID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}

func (r *gameRepository) ListSidesForTeams(ctx context.Context, teamIDs []uuid.UUID) (map[uuid.UUID][]models.GameSide, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	sides := make(map[uuid.UUID][]models.GameSide, len(teamIDs))
	if len(teamIDs) == 0 {
		return sides, nil
	}

	homeQuery := `
		SELECT home_team_id, id, game_date, away_team_id, home_score, away_score
		FROM games
		WHERE home_team_id = ANY($1)`

	awayQuery := `
		SELECT away_team_id, id, game_date, home_team_id, away_score, home_score
		FROM games
		WHERE away_team_id = ANY($1)`

	for _, query := range []string{homeQuery, awayQuery} {
		rows, err := scope.Conn.Query(ctx, query, teamIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to query game sides: %w", err)
		}

		for rows.Next() {
			var teamID uuid.UUID
			var side models.GameSide
			if err := rows.Scan(&teamID, &side.GameID, &side.Date, &side.OpponentID, &side.GoalsFor, &side.GoalsAgainst); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan game side: %w", err)
			}
			sides[teamID] = append(sides[teamID], side)
		}

		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("error iterating game sides: %w", err)
		}
	}

	return sides, nil
}

func (r *gameRepository) ListProviderRefs(ctx context.Context, teamID uuid.UUID) ([]models.ProviderRef, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	// UNION deduplicates across sides; blank refs predate provider tracking
	// and carry no identity.
	query := `
		SELECT provider, home_provider_team_id AS provider_team_id
		FROM games
		WHERE home_team_id = $1 AND home_provider_team_id <> ''
		UNION
		SELECT provider, away_provider_team_id AS provider_team_id
		FROM games
		WHERE away_team_id = $1 AND away_provider_team_id <> ''`

	rows, err := scope.Conn.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query provider refs: %w", err)
	}
	defer rows.Close()

	var refs []models.ProviderRef
	for rows.Next() {
		var ref models.ProviderRef
		if err := rows.Scan(&ref.Provider, &ref.ProviderTeamID); err != nil {
			return nil, fmt.Errorf("failed to scan provider ref: %w", err)
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating provider refs: %w", err)
	}

	return refs, nil
}
