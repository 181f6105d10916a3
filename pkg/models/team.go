// Package models contains domain types for pitchrank-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender of a team's cohort.
const (
	GenderBoys  = "boys"
	GenderGirls = "girls"
)

// Team represents a canonical team identity in the registry. Provider records
// attach to a team through aliases; games reference teams by id.
type Team struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ClubName   string    `json:"club_name,omitempty"` // parent club, e.g. "Rush SC"
	AgeGroup   string    `json:"age_group,omitempty"` // birth-year cohort, e.g. "2014"
	Gender     string    `json:"gender,omitempty"`
	State      string    `json:"state,omitempty"` // two-letter state code
	Deprecated bool      `json:"deprecated"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SameCohort reports whether two teams belong to the same age group and
// gender. Teams from different cohorts are never merge candidates.
func (t *Team) SameCohort(other *Team) bool {
	return t.AgeGroup == other.AgeGroup && t.Gender == other.Gender
}

// Snapshot captures the team's current state for the audit ledger.
func (t *Team) Snapshot() TeamSnapshot {
	return TeamSnapshot{
		ID:         t.ID,
		Name:       t.Name,
		ClubName:   t.ClubName,
		AgeGroup:   t.AgeGroup,
		Gender:     t.Gender,
		State:      t.State,
		Deprecated: t.Deprecated,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// TeamSnapshot is the JSONB image of a team recorded in the audit ledger at
// merge time. It preserves everything needed to restore the team on revert.
type TeamSnapshot struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ClubName   string    `json:"club_name,omitempty"`
	AgeGroup   string    `json:"age_group,omitempty"`
	Gender     string    `json:"gender,omitempty"`
	State      string    `json:"state,omitempty"`
	Deprecated bool      `json:"deprecated"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
