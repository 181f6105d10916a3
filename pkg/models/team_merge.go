package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamMerge is an active merge edge: the deprecated team's identity now
// resolves to the canonical team. Edges are removed on revert; the audit
// ledger keeps the permanent record.
type TeamMerge struct {
	ID               uuid.UUID          `json:"id"`
	DeprecatedTeamID uuid.UUID          `json:"deprecated_team_id"`
	CanonicalTeamID  uuid.UUID          `json:"canonical_team_id"`
	Operator         string             `json:"operator,omitempty"`
	Reason           *string            `json:"reason,omitempty"`
	Confidence       *float64           `json:"confidence,omitempty"`
	Signals          map[string]float64 `json:"signals,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}
