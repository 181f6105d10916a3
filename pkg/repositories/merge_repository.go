package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pitchrank/pitchrank-engine/pkg/apperrors"
	"github.com/pitchrank/pitchrank-engine/pkg/database"
	"github.com/pitchrank/pitchrank-engine/pkg/models"
)

// MergeRepository provides data access for active merge edges. An edge
// exists while a merge is in effect and is deleted by revert; the audit
// ledger keeps the durable history.
type MergeRepository interface {
	Create(ctx context.Context, merge *models.TeamMerge) error
	// GetByID returns the edge or nil when no row exists.
	GetByID(ctx context.Context, mergeID uuid.UUID) (*models.TeamMerge, error)
	// GetByDeprecatedTeam returns the edge whose source is the given team,
	// or nil. A team has at most one outgoing edge.
	GetByDeprecatedTeam(ctx context.Context, teamID uuid.UUID) (*models.TeamMerge, error)
	// ListByCanonicalTeam returns the edges merged into the given team.
	ListByCanonicalTeam(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMerge, error)
	Delete(ctx context.Context, mergeID uuid.UUID) error
}

type mergeRepository struct{}

// NewMergeRepository creates a new MergeRepository.
func NewMergeRepository() MergeRepository {
	return &mergeRepository{}
}

var _ MergeRepository = (*mergeRepository)(nil)

func (r *mergeRepository) Create(ctx context.Context, merge *models.TeamMerge) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	var signalsJSON []byte
	if len(merge.Signals) > 0 {
		var err error
		signalsJSON, err = json.Marshal(merge.Signals)
		if err != nil {
			return fmt.Errorf("failed to marshal merge signals: %w", err)
		}
	}

	query := `
		INSERT INTO team_merges (
			deprecated_team_id, canonical_team_id, operator, reason,
			confidence, signals
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := scope.Conn.QueryRow(ctx, query,
		merge.DeprecatedTeamID,
		merge.CanonicalTeamID,
		merge.Operator,
		merge.Reason,
		merge.Confidence,
		signalsJSON,
	).Scan(&merge.ID, &merge.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create merge edge: %w", err)
	}

	return nil
}

func (r *mergeRepository) GetByID(ctx context.Context, mergeID uuid.UUID) (*models.TeamMerge, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, deprecated_team_id, canonical_team_id, operator, reason,
		       confidence, signals, created_at
		FROM team_merges
		WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, mergeID)
	merge, err := scanMerge(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // No active edge with this id
		}
		return nil, fmt.Errorf("failed to get merge edge: %w", err)
	}

	return merge, nil
}

func (r *mergeRepository) GetByDeprecatedTeam(ctx context.Context, teamID uuid.UUID) (*models.TeamMerge, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, deprecated_team_id, canonical_team_id, operator, reason,
		       confidence, signals, created_at
		FROM team_merges
		WHERE deprecated_team_id = $1`

	row := scope.Conn.QueryRow(ctx, query, teamID)
	merge, err := scanMerge(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Team is not merged away
		}
		return nil, fmt.Errorf("failed to get merge edge: %w", err)
	}

	return merge, nil
}

func (r *mergeRepository) ListByCanonicalTeam(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMerge, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, deprecated_team_id, canonical_team_id, operator, reason,
		       confidence, signals, created_at
		FROM team_merges
		WHERE canonical_team_id = $1
		ORDER BY created_at`

	rows, err := scope.Conn.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query merge edges: %w", err)
	}
	defer rows.Close()

	var merges []*models.TeamMerge
	for rows.Next() {
		merge, err := scanMerge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan merge edge: %w", err)
		}
		merges = append(merges, merge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating merge edges: %w", err)
	}

	return merges, nil
}

func (r *mergeRepository) Delete(ctx context.Context, mergeID uuid.UUID) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `DELETE FROM team_merges WHERE id = $1`

	result, err := scope.Conn.Exec(ctx, query, mergeID)
	if err != nil {
		return fmt.Errorf("failed to delete merge edge: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanMerge(row pgx.Row) (*models.TeamMerge, error) {
	var m models.TeamMerge
	var signalsJSON []byte

	err := row.Scan(
		&m.ID,
		&m.DeprecatedTeamID,
		&m.CanonicalTeamID,
		&m.Operator,
		&m.Reason,
		&m.Confidence,
		&signalsJSON,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(signalsJSON) > 0 && string(signalsJSON) != "null" {
		if err := json.Unmarshal(signalsJSON, &m.Signals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal merge signals: %w", err)
		}
	}

	return &m, nil
}
