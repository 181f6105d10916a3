package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pitchrank/pitchrank-engine/pkg/config"
	"github.com/pitchrank/pitchrank-engine/pkg/matching"
	"github.com/pitchrank/pitchrank-engine/pkg/models"
	"github.com/pitchrank/pitchrank-engine/pkg/repositories"
)

// SuggestionQuery filters the duplicate scan to a cohort. Empty fields match
// everything; MinConfidence nil means the configured default threshold.
type SuggestionQuery struct {
	AgeGroup      string   `json:"age_group,omitempty"`
	Gender        string   `json:"gender,omitempty"`
	State         string   `json:"state,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

// SuggestionReport is the outcome of one duplicate scan.
type SuggestionReport struct {
	Suggestions []models.MergeSuggestion `json:"suggestions"`
	// TotalCandidates counts pairs above the threshold before the limit.
	TotalCandidates int `json:"total_candidates"`
	// TeamsAnalyzed is the size of the scanned pool.
	TeamsAnalyzed int `json:"teams_analyzed"`
	// SkippedDifferentTeams counts pairs vetoed by name markers that indicate
	// sibling squads of the same club.
	SkippedDifferentTeams int    `json:"skipped_different_teams"`
	Message              string `json:"message,omitempty"`
}

// SuggestionService scans cohorts of active teams for probable duplicate
// records and scores each candidate pair across five similarity signals.
// Pairs whose names carry structural markers of distinct squads (location
// codes, team numbers, tier or league qualifiers) are vetoed regardless of
// score. Reports are cached until the next merge or revert.
type SuggestionService interface {
	// SuggestMerges runs the duplicate scan for the queried cohort.
	SuggestMerges(ctx context.Context, query *SuggestionQuery) (*SuggestionReport, error)
}

type suggestionService struct {
	teams   repositories.TeamRepository
	games   repositories.GameRepository
	markers *matching.MarkerDetector
	cache   SuggestionCache
	cfg     *config.MatchingConfig
	logger  *zap.Logger
}

// NewSuggestionService creates a SuggestionService.
func NewSuggestionService(
	teams repositories.TeamRepository,
	games repositories.GameRepository,
	markers *matching.MarkerDetector,
	cache SuggestionCache,
	cfg *config.MatchingConfig,
	logger *zap.Logger,
) SuggestionService {
	return &suggestionService{
		teams:   teams,
		games:   games,
		markers: markers,
		cache:   cache,
		cfg:     cfg,
		logger:  logger.Named("suggestion-service"),
	}
}

var _ SuggestionService = (*suggestionService)(nil)

func (s *suggestionService) SuggestMerges(ctx context.Context, query *SuggestionQuery) (*SuggestionReport, error) {
	minConfidence := s.cfg.DefaultMinConfidence
	if query.MinConfidence != nil {
		minConfidence = *query.MinConfidence
	}
	if minConfidence < s.cfg.MinConfidenceFloor {
		minConfidence = s.cfg.MinConfidenceFloor
	}
	if minConfidence > 1.0 {
		minConfidence = 1.0
	}

	limit := query.Limit
	if limit <= 0 || limit > s.cfg.MaxSuggestions {
		limit = s.cfg.MaxSuggestions
	}

	if s.cache != nil {
		if report, ok := s.cache.Get(ctx, query); ok {
			s.logger.Debug("Returning cached suggestion report")
			return report, nil
		}
	}

	s.logger.Info("Scanning for duplicate teams",
		zap.String("age_group", query.AgeGroup),
		zap.String("gender", query.Gender),
		zap.String("state", query.State),
		zap.Float64("min_confidence", minConfidence))

	pool, err := s.teams.ListActiveByCohort(ctx, query.AgeGroup, query.Gender, query.State, s.cfg.MaxPoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	report := &SuggestionReport{
		Suggestions:   []models.MergeSuggestion{},
		TeamsAnalyzed: len(pool),
	}
	if len(pool) < 2 {
		report.Message = fmt.Sprintf("only %d team(s) match the cohort filters; nothing to compare", len(pool))
		return report, nil
	}
	if len(pool) == s.cfg.MaxPoolSize {
		report.Message = fmt.Sprintf("team pool capped at %d; narrow the cohort filters for full coverage", s.cfg.MaxPoolSize)
	}

	ids := make([]uuid.UUID, len(pool))
	for i, team := range pool {
		ids[i] = team.ID
	}
	sides, err := s.games.ListSidesForTeams(ctx, ids)
	if err != nil {
		// Name, geography, and marker evidence still work without games.
		s.logger.Warn("Game history unavailable, scoring without behavioral signals", zap.Error(err))
		sides = map[uuid.UUID][]models.GameSide{}
	}

	var candidates []models.MergeSuggestion
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			source, target := pool[i], pool[j]
			if !source.SameCohort(target) {
				continue
			}
			if s.markers.HasDistinguishingMarkers(source.Name, target.Name) {
				report.SkippedDifferentTeams++
				continue
			}

			// The team with the thinner game history is the proposed merge
			// source, so the richer record survives as canonical.
			if len(sides[target.ID]) < len(sides[source.ID]) {
				source, target = target, source
			}

			signals, details := matching.EvaluatePair(source, target, sides[source.ID], sides[target.ID])
			confidence := signals.Confidence()
			if confidence < minConfidence {
				continue
			}

			candidates = append(candidates, models.MergeSuggestion{
				SourceTeamID:   source.ID,
				SourceTeamName: source.Name,
				TargetTeamID:   target.ID,
				TargetTeamName: target.Name,
				Confidence:     confidence,
				Tier:           models.TierFor(confidence),
				Signals:        details,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	report.TotalCandidates = len(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	if len(candidates) > 0 {
		report.Suggestions = candidates
	}

	if s.cache != nil {
		s.cache.Set(ctx, query, report)
	}

	s.logger.Info("Duplicate scan complete",
		zap.Int("teams_analyzed", report.TeamsAnalyzed),
		zap.Int("total_candidates", report.TotalCandidates),
		zap.Int("returned", len(report.Suggestions)),
		zap.Int("skipped_different_teams", report.SkippedDifferentTeams))

	return report, nil
}
