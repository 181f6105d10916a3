package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction identifies the kind of ledger entry.
type AuditAction string

const (
	AuditActionMerge  AuditAction = "merge"
	AuditActionRevert AuditAction = "revert"
)

// IsValid checks if the audit action is a known value.
func (a AuditAction) IsValid() bool {
	return a == AuditActionMerge || a == AuditActionRevert
}

// MergeAuditEntry is one row of the append-only merge ledger. Merge entries
// carry the pre-merge team snapshot and the counts of re-pointed records;
// revert entries reference the merge entry they undo. Entries are never
// updated except to stamp a merge entry as reverted.
type MergeAuditEntry struct {
	ID               uuid.UUID          `json:"id"`
	Action           AuditAction        `json:"action"`
	MergeID          uuid.UUID          `json:"merge_id"` // original merge edge id, survives edge deletion
	DeprecatedTeamID uuid.UUID          `json:"deprecated_team_id"`
	CanonicalTeamID  uuid.UUID          `json:"canonical_team_id"`
	TeamSnapshot     *TeamSnapshot      `json:"team_snapshot,omitempty"`
	AliasesAffected  int                `json:"aliases_affected"`
	GamesAffected    int                `json:"games_affected"`
	Operator         string             `json:"operator,omitempty"`
	Reason           *string            `json:"reason,omitempty"`
	Confidence       *float64           `json:"confidence,omitempty"`
	Signals          map[string]float64 `json:"signals,omitempty"`
	RevertedAt       *time.Time         `json:"reverted_at,omitempty"`
	RevertedBy       *string            `json:"reverted_by,omitempty"`
	RevertReason     *string            `json:"revert_reason,omitempty"`
	RevertedAuditID  *uuid.UUID         `json:"reverted_audit_id,omitempty"` // on revert entries: the merge entry undone
	CreatedAt        time.Time          `json:"created_at"`
}

// Reverted reports whether a merge entry has been undone.
func (e *MergeAuditEntry) Reverted() bool {
	return e.RevertedAt != nil
}
