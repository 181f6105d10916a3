package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pitchrank/pitchrank-engine/pkg/apperrors"
	"github.com/pitchrank/pitchrank-engine/pkg/database"
	"github.com/pitchrank/pitchrank-engine/pkg/models"
)

// AuditRepository provides access to the append-only merge ledger. Entries
// are inserted and read; the single permitted mutation is stamping revert
// metadata onto a merge entry.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.MergeAuditEntry) error
	// GetMergeEntry returns the merge-action entry recorded for a merge
	// edge, or nil when none exists.
	GetMergeEntry(ctx context.Context, mergeID uuid.UUID) (*models.MergeAuditEntry, error)
	// ListByTeam returns entries touching the team on either side, newest
	// first.
	ListByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]*models.MergeAuditEntry, error)
	// ListRecent returns the newest entries across the whole ledger.
	ListRecent(ctx context.Context, limit int) ([]*models.MergeAuditEntry, error)
	// MarkReverted stamps revert metadata onto a merge entry.
	MarkReverted(ctx context.Context, entryID uuid.UUID, revertedAt time.Time, revertedBy string, revertReason *string) error
}

type auditRepository struct{}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository() AuditRepository {
	return &auditRepository{}
}

var _ AuditRepository = (*auditRepository)(nil)

func (r *auditRepository) Create(ctx context.Context, entry *models.MergeAuditEntry) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	var snapshotJSON []byte
	if entry.TeamSnapshot != nil {
		var err error
		snapshotJSON, err = json.Marshal(entry.TeamSnapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal team snapshot: %w", err)
		}
	}

	var signalsJSON []byte
	if len(entry.Signals) > 0 {
		var err error
		signalsJSON, err = json.Marshal(entry.Signals)
		if err != nil {
			return fmt.Errorf("failed to marshal audit signals: %w", err)
		}
	}

	query := `
		INSERT INTO merge_audit (
			id, action, merge_id, deprecated_team_id, canonical_team_id,
			team_snapshot, aliases_affected, games_affected, operator,
			reason, confidence, signals, reverted_audit_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := scope.Conn.Exec(ctx, query,
		entry.ID,
		string(entry.Action),
		entry.MergeID,
		entry.DeprecatedTeamID,
		entry.CanonicalTeamID,
		snapshotJSON,
		entry.AliasesAffected,
		entry.GamesAffected,
		entry.Operator,
		entry.Reason,
		entry.Confidence,
		signalsJSON,
		entry.RevertedAuditID,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	return nil
}

func (r *auditRepository) GetMergeEntry(ctx context.Context, mergeID uuid.UUID) (*models.MergeAuditEntry, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := auditSelect + `
		WHERE merge_id = $1 AND action = 'merge'`

	row := scope.Conn.QueryRow(ctx, query, mergeID)
	entry, err := scanAuditEntry(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // No merge entry recorded
		}
		return nil, fmt.Errorf("failed to get audit entry: %w", err)
	}

	return entry, nil
}

func (r *auditRepository) ListByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]*models.MergeAuditEntry, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := auditSelect + `
		WHERE deprecated_team_id = $1 OR canonical_team_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`

	rows, err := scope.Conn.Query(ctx, query, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	return collectAuditEntries(rows)
}

func (r *auditRepository) ListRecent(ctx context.Context, limit int) ([]*models.MergeAuditEntry, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := auditSelect + `
		ORDER BY created_at DESC, id
		LIMIT $1`

	rows, err := scope.Conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	return collectAuditEntries(rows)
}

func (r *auditRepository) MarkReverted(ctx context.Context, entryID uuid.UUID, revertedAt time.Time, revertedBy string, revertReason *string) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE merge_audit
		SET reverted_at = $2, reverted_by = $3, revert_reason = $4
		WHERE id = $1 AND action = 'merge'`

	result, err := scope.Conn.Exec(ctx, query, entryID, revertedAt, revertedBy, revertReason)
	if err != nil {
		return fmt.Errorf("failed to stamp revert metadata: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

const auditSelect = `
		SELECT id, action, merge_id, deprecated_team_id, canonical_team_id,
		       team_snapshot, aliases_affected, games_affected, operator,
		       reason, confidence, signals, reverted_at, reverted_by,
		       revert_reason, reverted_audit_id, created_at
		FROM merge_audit`

func collectAuditEntries(rows pgx.Rows) ([]*models.MergeAuditEntry, error) {
	var entries []*models.MergeAuditEntry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	return entries, nil
}

func scanAuditEntry(row pgx.Row) (*models.MergeAuditEntry, error) {
	var e models.MergeAuditEntry
	var action string
	var snapshotJSON, signalsJSON []byte

	err := row.Scan(
		&e.ID,
		&action,
		&e.MergeID,
		&e.DeprecatedTeamID,
		&e.CanonicalTeamID,
		&snapshotJSON,
		&e.AliasesAffected,
		&e.GamesAffected,
		&e.Operator,
		&e.Reason,
		&e.Confidence,
		&signalsJSON,
		&e.RevertedAt,
		&e.RevertedBy,
		&e.RevertReason,
		&e.RevertedAuditID,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Action = models.AuditAction(action)

	if len(snapshotJSON) > 0 && string(snapshotJSON) != "null" {
		var snapshot models.TeamSnapshot
		if err := json.Unmarshal(snapshotJSON, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal team snapshot: %w", err)
		}
		e.TeamSnapshot = &snapshot
	}

	if len(signalsJSON) > 0 && string(signalsJSON) != "null" {
		if err := json.Unmarshal(signalsJSON, &e.Signals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit signals: %w", err)
		}
	}

	return &e, nil
}
