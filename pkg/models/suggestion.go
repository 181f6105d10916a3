package models

import "github.com/google/uuid"

// SuggestionTier buckets a suggestion by confidence for review triage.
type SuggestionTier string

const (
	TierHigh   SuggestionTier = "high"   // above 0.95, near-certain duplicates
	TierMedium SuggestionTier = "medium" // 0.90 to 0.95, strong candidates
	TierLow    SuggestionTier = "low"    // below 0.90, needs a closer look
)

// TierFor assigns the review tier for a confidence score.
func TierFor(confidence float64) SuggestionTier {
	switch {
	case confidence > 0.95:
		return TierHigh
	case confidence >= 0.90:
		return TierMedium
	default:
		return TierLow
	}
}

// SignalScore is one similarity signal's contribution to a suggestion,
// with a human-readable account of what matched.
type SignalScore struct {
	Signal string  `json:"signal"`
	Score  float64 `json:"score"`
	Detail string  `json:"detail,omitempty"`
}

// MergeSuggestion is a scored candidate pair from the duplicate scan. The
// team listed first has the fewer games and is the proposed merge source.
type MergeSuggestion struct {
	SourceTeamID   uuid.UUID      `json:"source_team_id"`
	SourceTeamName string         `json:"source_team_name"`
	TargetTeamID   uuid.UUID      `json:"target_team_id"`
	TargetTeamName string         `json:"target_team_name"`
	Confidence     float64        `json:"confidence"`
	Tier           SuggestionTier `json:"tier"`
	Signals        []SignalScore  `json:"signals"`
}
