package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pitchrank/pitchrank-engine/pkg/apperrors"
	"github.com/pitchrank/pitchrank-engine/pkg/database"
	"github.com/pitchrank/pitchrank-engine/pkg/models"
	"github.com/pitchrank/pitchrank-engine/pkg/repositories"
)

// maxChainWalk bounds the merge-chain walk. Chains longer than one edge are
// rejected at merge time, so anything deeper indicates corrupted data.
const maxChainWalk = 32

// MergeRequest carries the operator's decision to fold one team into another.
type MergeRequest struct {
	DeprecatedTeamID uuid.UUID          `json:"deprecated_team_id"`
	CanonicalTeamID  uuid.UUID          `json:"canonical_team_id"`
	Operator         string             `json:"operator"`
	Reason           *string            `json:"reason,omitempty"`
	Confidence       *float64           `json:"confidence,omitempty"`
	Signals          map[string]float64 `json:"signals,omitempty"`
}

// MergeResult reports what a completed merge changed.
type MergeResult struct {
	MergeID         uuid.UUID `json:"merge_id"`
	DeprecatedTeam  string    `json:"deprecated_team"`
	CanonicalTeam   string    `json:"canonical_team"`
	AliasesAffected int       `json:"aliases_affected"`
	GamesAffected   int       `json:"games_affected"`
	Summary         string    `json:"summary"`
}

// RevertRequest asks for a previously executed merge to be undone.
type RevertRequest struct {
	MergeID  uuid.UUID `json:"merge_id"`
	Operator string    `json:"operator"`
	Reason   *string   `json:"reason,omitempty"`
}

// RevertResult reports what a completed revert restored.
type RevertResult struct {
	MergeID          uuid.UUID `json:"merge_id"`
	DeprecatedTeamID uuid.UUID `json:"deprecated_team_id"`
	CanonicalTeamID  uuid.UUID `json:"canonical_team_id"`
	AliasesRestored  int       `json:"aliases_restored"`
	Summary          string    `json:"summary"`
}

// MergeStatus describes where a team stands in the merge graph.
type MergeStatus struct {
	TeamID     uuid.UUID          `json:"team_id"`
	TeamName   string             `json:"team_name"`
	Deprecated bool               `json:"deprecated"`
	Merge      *MergeStatusDetail `json:"merge,omitempty"`
}

// MergeStatusDetail is populated for deprecated teams and points at the
// canonical team that absorbed them.
type MergeStatusDetail struct {
	MergeID           uuid.UUID `json:"merge_id"`
	CanonicalTeamID   uuid.UUID `json:"canonical_team_id"`
	CanonicalTeamName string    `json:"canonical_team_name"`
	Operator          string    `json:"operator"`
	Reason            *string   `json:"reason,omitempty"`
	Confidence        *float64  `json:"confidence,omitempty"`
	MergedAt          time.Time `json:"merged_at"`
}

// MergeService executes operator-confirmed team merges and their reverts.
// Merging a team:
// - Re-points every provider alias from the deprecated team to the canonical one
// - Marks the deprecated team so cohort scans and rankings skip it
// - Records the merge edge and a full audit entry with a pre-merge snapshot
// Game rows are never rewritten; they stay attributed through the merge graph.
type MergeService interface {
	// MergeTeams folds the deprecated team into the canonical team.
	MergeTeams(ctx context.Context, req *MergeRequest) (*MergeResult, error)

	// RevertMerge undoes a recorded merge, restoring the deprecated team's
	// alias footprint and active status.
	RevertMerge(ctx context.Context, req *RevertRequest) (*RevertResult, error)

	// GetMergeStatus reports whether a team is active or merged away, and
	// into which team.
	GetMergeStatus(ctx context.Context, teamID uuid.UUID) (*MergeStatus, error)
}

type mergeService struct {
	teams   repositories.TeamRepository
	aliases repositories.TeamAliasRepository
	games   repositories.GameRepository
	merges  repositories.MergeRepository
	audit   repositories.AuditRepository
	cache   SuggestionCache
	clock   clockwork.Clock
	logger  *zap.Logger
}

// NewMergeService creates a MergeService.
func NewMergeService(
	teams repositories.TeamRepository,
	aliases repositories.TeamAliasRepository,
	games repositories.GameRepository,
	merges repositories.MergeRepository,
	audit repositories.AuditRepository,
	cache SuggestionCache,
	clock clockwork.Clock,
	logger *zap.Logger,
) MergeService {
	return &mergeService{
		teams:   teams,
		aliases: aliases,
		games:   games,
		merges:  merges,
		audit:   audit,
		cache:   cache,
		clock:   clock,
		logger:  logger.Named("merge-service"),
	}
}

var _ MergeService = (*mergeService)(nil)

func (s *mergeService) MergeTeams(ctx context.Context, req *MergeRequest) (*MergeResult, error) {
	if req.DeprecatedTeamID == req.CanonicalTeamID {
		return nil, fmt.Errorf("team %s: %w", req.DeprecatedTeamID, apperrors.ErrSelfMerge)
	}
	if req.Operator == "" {
		return nil, fmt.Errorf("operator is required")
	}

	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	s.logger.Info("Merging teams",
		zap.String("deprecated_team_id", req.DeprecatedTeamID.String()),
		zap.String("canonical_team_id", req.CanonicalTeamID.String()),
		zap.String("operator", req.Operator))

	tx, err := scope.Conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Both teams are locked in a stable order before any reads so that
	// concurrent merges touching either team serialize here.
	if err = database.AcquireTeamLocks(ctx, tx, req.DeprecatedTeamID, req.CanonicalTeamID); err != nil {
		return nil, fmt.Errorf("failed to lock teams: %w", err)
	}

	var source, target *models.Team
	if source, err = s.requireTeam(ctx, req.DeprecatedTeamID); err != nil {
		return nil, err
	}
	if target, err = s.requireTeam(ctx, req.CanonicalTeamID); err != nil {
		return nil, err
	}

	if source.Deprecated {
		err = fmt.Errorf("%s is already merged away: %w", source.Name, apperrors.ErrAlreadyMerged)
		return nil, err
	}
	if err = s.checkTarget(ctx, source, target); err != nil {
		return nil, err
	}

	// 1. Snapshot the team before anything changes so a revert can verify
	// what it is restoring.
	snapshot := source.Snapshot()

	// 2. Count the games that will flow to the canonical team through the
	// merge graph. Game rows themselves are left untouched.
	var gamesAffected int
	if gamesAffected, err = s.games.CountByTeam(ctx, source.ID); err != nil {
		return nil, fmt.Errorf("failed to count games: %w", err)
	}

	// 3. Re-point every provider alias to the canonical team.
	var aliasesAffected int64
	if aliasesAffected, err = s.aliases.RepointTeam(ctx, source.ID, target.ID); err != nil {
		return nil, fmt.Errorf("failed to re-point aliases: %w", err)
	}
	s.logger.Debug("Re-pointed aliases", zap.Int64("count", aliasesAffected))

	// 4. Deprecate the source so scans and rankings skip it.
	if err = s.teams.SetDeprecated(ctx, source.ID, true); err != nil {
		return nil, fmt.Errorf("failed to deprecate team: %w", err)
	}

	// 5. Record the merge edge.
	edge := &models.TeamMerge{
		DeprecatedTeamID: source.ID,
		CanonicalTeamID:  target.ID,
		Operator:         req.Operator,
		Reason:           req.Reason,
		Confidence:       req.Confidence,
		Signals:          req.Signals,
	}
	if err = s.merges.Create(ctx, edge); err != nil {
		return nil, fmt.Errorf("failed to record merge: %w", err)
	}

	// 6. Write the audit entry with the pre-merge snapshot.
	entry := &models.MergeAuditEntry{
		Action:           models.AuditActionMerge,
		MergeID:          edge.ID,
		DeprecatedTeamID: source.ID,
		CanonicalTeamID:  target.ID,
		TeamSnapshot:     &snapshot,
		AliasesAffected:  int(aliasesAffected),
		GamesAffected:    gamesAffected,
		Operator:         req.Operator,
		Reason:           req.Reason,
		Confidence:       req.Confidence,
		Signals:          req.Signals,
		CreatedAt:        s.clock.Now().UTC(),
	}
	if err = s.audit.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateSuggestions(ctx)

	s.logger.Info("Merge complete",
		zap.String("merge_id", edge.ID.String()),
		zap.Int64("aliases_affected", aliasesAffected),
		zap.Int("games_affected", gamesAffected))

	return &MergeResult{
		MergeID:         edge.ID,
		DeprecatedTeam:  source.Name,
		CanonicalTeam:   target.Name,
		AliasesAffected: int(aliasesAffected),
		GamesAffected:   gamesAffected,
		Summary: fmt.Sprintf("Merged %q into %q: %d alias(es) re-pointed, %d game(s) now counted under %q",
			source.Name, target.Name, aliasesAffected, gamesAffected, target.Name),
	}, nil
}

func (s *mergeService) RevertMerge(ctx context.Context, req *RevertRequest) (*RevertResult, error) {
	if req.Operator == "" {
		return nil, fmt.Errorf("operator is required")
	}

	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	s.logger.Info("Reverting merge",
		zap.String("merge_id", req.MergeID.String()),
		zap.String("operator", req.Operator))

	tx, err := scope.Conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// The edge is read before locking to learn which teams to lock. The
	// serializable isolation level catches the edge being deleted between
	// this read and the commit.
	var edge *models.TeamMerge
	if edge, err = s.merges.GetByID(ctx, req.MergeID); err != nil {
		return nil, fmt.Errorf("failed to get merge: %w", err)
	}
	if edge == nil {
		err = fmt.Errorf("merge %s: %w", req.MergeID, apperrors.ErrNotFound)
		return nil, err
	}

	if err = database.AcquireTeamLocks(ctx, tx, edge.DeprecatedTeamID, edge.CanonicalTeamID); err != nil {
		return nil, fmt.Errorf("failed to lock teams: %w", err)
	}

	// 1. Reconstruct the deprecated team's alias footprint from the provider
	// refs its games were ingested under, and move only those aliases back.
	var refs []models.ProviderRef
	if refs, err = s.games.ListProviderRefs(ctx, edge.DeprecatedTeamID); err != nil {
		return nil, fmt.Errorf("failed to list provider refs: %w", err)
	}

	var aliasesRestored int64
	if aliasesRestored, err = s.aliases.RepointByProviderRefs(ctx, edge.CanonicalTeamID, edge.DeprecatedTeamID, refs); err != nil {
		return nil, fmt.Errorf("failed to restore aliases: %w", err)
	}
	s.logger.Debug("Restored aliases", zap.Int64("count", aliasesRestored))

	// 2. Reactivate the team.
	if err = s.teams.SetDeprecated(ctx, edge.DeprecatedTeamID, false); err != nil {
		return nil, fmt.Errorf("failed to reactivate team: %w", err)
	}

	// 3. Mark the original merge audit entry as reverted and write the
	// revert entry pointing back at it.
	var mergeEntry *models.MergeAuditEntry
	if mergeEntry, err = s.audit.GetMergeEntry(ctx, edge.ID); err != nil {
		return nil, fmt.Errorf("failed to get merge audit entry: %w", err)
	}
	if mergeEntry == nil {
		err = fmt.Errorf("no audit entry recorded for merge %s", edge.ID)
		return nil, err
	}

	now := s.clock.Now().UTC()
	if err = s.audit.MarkReverted(ctx, mergeEntry.ID, now, req.Operator, req.Reason); err != nil {
		return nil, fmt.Errorf("failed to mark audit entry reverted: %w", err)
	}

	var gamesAffected int
	if gamesAffected, err = s.games.CountByTeam(ctx, edge.DeprecatedTeamID); err != nil {
		return nil, fmt.Errorf("failed to count games: %w", err)
	}

	revertEntry := &models.MergeAuditEntry{
		Action:           models.AuditActionRevert,
		MergeID:          edge.ID,
		DeprecatedTeamID: edge.DeprecatedTeamID,
		CanonicalTeamID:  edge.CanonicalTeamID,
		TeamSnapshot:     mergeEntry.TeamSnapshot,
		AliasesAffected:  int(aliasesRestored),
		GamesAffected:    gamesAffected,
		Operator:         req.Operator,
		Reason:           req.Reason,
		RevertedAuditID:  &mergeEntry.ID,
		CreatedAt:        now,
	}
	if err = s.audit.Create(ctx, revertEntry); err != nil {
		return nil, fmt.Errorf("failed to write revert audit entry: %w", err)
	}

	// 4. Remove the edge so the team rejoins the active pool.
	if err = s.merges.Delete(ctx, edge.ID); err != nil {
		return nil, fmt.Errorf("failed to delete merge: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateSuggestions(ctx)

	teamName := edge.DeprecatedTeamID.String()
	if mergeEntry.TeamSnapshot != nil {
		teamName = mergeEntry.TeamSnapshot.Name
	}
	s.logger.Info("Revert complete",
		zap.String("merge_id", edge.ID.String()),
		zap.String("team", teamName),
		zap.Int64("aliases_restored", aliasesRestored))

	return &RevertResult{
		MergeID:          edge.ID,
		DeprecatedTeamID: edge.DeprecatedTeamID,
		CanonicalTeamID:  edge.CanonicalTeamID,
		AliasesRestored:  int(aliasesRestored),
		Summary: fmt.Sprintf("Reverted merge of %q: %d alias(es) restored, team is active again",
			teamName, aliasesRestored),
	}, nil
}

func (s *mergeService) GetMergeStatus(ctx context.Context, teamID uuid.UUID) (*MergeStatus, error) {
	team, err := s.requireTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	status := &MergeStatus{
		TeamID:     team.ID,
		TeamName:   team.Name,
		Deprecated: team.Deprecated,
	}
	if !team.Deprecated {
		return status, nil
	}

	edge, err := s.merges.GetByDeprecatedTeam(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get merge: %w", err)
	}
	if edge == nil {
		// Deprecated without an edge happens when a team is retired by hand.
		return status, nil
	}

	canonical, err := s.teams.GetByID(ctx, edge.CanonicalTeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get canonical team: %w", err)
	}
	canonicalName := ""
	if canonical != nil {
		canonicalName = canonical.Name
	}

	status.Merge = &MergeStatusDetail{
		MergeID:           edge.ID,
		CanonicalTeamID:   edge.CanonicalTeamID,
		CanonicalTeamName: canonicalName,
		Operator:          edge.Operator,
		Reason:            edge.Reason,
		Confidence:        edge.Confidence,
		MergedAt:          edge.CreatedAt,
	}
	return status, nil
}

func (s *mergeService) requireTeam(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team %s: %w", teamID, err)
	}
	if team == nil {
		return nil, fmt.Errorf("team %s: %w", teamID, apperrors.ErrNotFound)
	}
	return team, nil
}

// checkTarget rejects targets that would break the single-level merge graph.
// A target that is itself merged away is walked first: if its chain ends at
// the source, the request is the reverse of an existing merge and reported as
// a cycle; otherwise the target must be reverted before it can absorb teams.
// A source that already absorbed other teams cannot be merged away either,
// since its absorbed teams would end up two hops from their canonical team.
func (s *mergeService) checkTarget(ctx context.Context, source, target *models.Team) error {
	if target.Deprecated {
		current := target.ID
		for i := 0; i < maxChainWalk; i++ {
			edge, err := s.merges.GetByDeprecatedTeam(ctx, current)
			if err != nil {
				return fmt.Errorf("failed to walk merge chain: %w", err)
			}
			if edge == nil {
				break
			}
			if edge.CanonicalTeamID == source.ID {
				return fmt.Errorf("%s is merged into %s: %w", target.Name, source.Name, apperrors.ErrCycleDetected)
			}
			current = edge.CanonicalTeamID
		}
		return fmt.Errorf("%s is already merged away: %w", target.Name, apperrors.ErrAlreadyMerged)
	}

	absorbed, err := s.merges.ListByCanonicalTeam(ctx, source.ID)
	if err != nil {
		return fmt.Errorf("failed to list absorbed teams: %w", err)
	}
	if len(absorbed) > 0 {
		return fmt.Errorf("%d team(s) are merged into %s, revert those merges first: %w",
			len(absorbed), source.Name, apperrors.ErrAlreadyMerged)
	}
	return nil
}

func (s *mergeService) invalidateSuggestions(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate suggestion cache", zap.Error(err))
	}
}
