package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pitchrank/pitchrank-engine/pkg/apperrors"
	"github.com/pitchrank/pitchrank-engine/pkg/database"
	"github.com/pitchrank/pitchrank-engine/pkg/models"
)

// TeamRepository provides data access for registry teams.
type TeamRepository interface {
	// Create inserts a team row. Ingestion owns team creation in production;
	// this exists for seeding and tests.
	Create(ctx context.Context, team *models.Team) error
	// GetByID returns the team or nil when no row exists.
	GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
	// ListActiveByCohort returns non-deprecated teams matching the given
	// filters, up to limit rows. Empty filter values match everything.
	ListActiveByCohort(ctx context.Context, ageGroup, gender, state string, limit int) ([]*models.Team, error)
	// SetDeprecated flips the deprecated flag on a team.
	SetDeprecated(ctx context.Context, teamID uuid.UUID, deprecated bool) error
}

type teamRepository struct{}

// NewTeamRepository creates a new TeamRepository.
func NewTeamRepository() TeamRepository {
	return &teamRepository{}
}

var _ TeamRepository = (*teamRepository)(nil)

func (r *teamRepository) Create(ctx context.Context, team *models.Team) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()
	if team.CreatedAt.IsZero() {
		team.CreatedAt = now
	}
	if team.UpdatedAt.IsZero() {
		team.UpdatedAt = now
	}
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}

	query := `
		INSERT INTO teams (
			id, name, club_name, age_group, gender, state,
			deprecated, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := scope.Conn.Exec(ctx, query,
		team.ID,
		team.Name,
		team.ClubName,
		team.AgeGroup,
		team.Gender,
		team.State,
		team.Deprecated,
		team.CreatedAt,
		team.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, name, club_name, age_group, gender, state,
		       deprecated, created_at, updated_at
		FROM teams
		WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, teamID)
	team, err := scanTeam(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Team not found
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

func (r *teamRepository) ListActiveByCohort(ctx context.Context, ageGroup, gender, state string, limit int) ([]*models.Team, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, name, club_name, age_group, gender, state,
		       deprecated, created_at, updated_at
		FROM teams
		WHERE NOT deprecated`

	var args []any
	if ageGroup != "" {
		args = append(args, ageGroup)
		query += fmt.Sprintf(" AND age_group = $%d", len(args))
	}
	if gender != "" {
		args = append(args, gender)
		query += fmt.Sprintf(" AND gender = $%d", len(args))
	}
	if state != "" {
		args = append(args, state)
		query += fmt.Sprintf(" AND UPPER(state) = UPPER($%d)", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY name, id LIMIT $%d", len(args))

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

func (r *teamRepository) SetDeprecated(ctx context.Context, teamID uuid.UUID, deprecated bool) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE teams
		SET deprecated = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := scope.Conn.Exec(ctx, query, teamID, deprecated)
	if err != nil {
		return fmt.Errorf("failed to update team deprecation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var t models.Team

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.ClubName,
		&t.AgeGroup,
		&t.Gender,
		&t.State,
		&t.Deprecated,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
