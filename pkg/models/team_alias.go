package models

import (
	"time"

	"github.com/google/uuid"
)

// How an alias was bound to its team during ingestion.
const (
	MatchMethodExact  = "exact"
	MatchMethodFuzzy  = "fuzzy"
	MatchMethodManual = "manual"
)

// ProviderRef identifies a team within one provider's namespace. Game rows
// retain the refs they were ingested under, which is what lets a revert
// reconstruct a deprecated team's original alias footprint.
type ProviderRef struct {
	Provider       string `json:"provider"`
	ProviderTeamID string `json:"provider_team_id"`
}

// TeamAlias links a provider's team identifier to a canonical team. A
// provider identifier maps to exactly one team at a time; merges re-point
// aliases from the deprecated team to the canonical one.
type TeamAlias struct {
	ID             uuid.UUID `json:"id"`
	Provider       string    `json:"provider"`
	ProviderTeamID string    `json:"provider_team_id"`
	TeamID         uuid.UUID `json:"team_id"`
	MatchMethod    string    `json:"match_method,omitempty"`
	Confidence     *float64  `json:"confidence,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
