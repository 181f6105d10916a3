package models

import (
	"time"

	"github.com/google/uuid"
)

// Game is a single match between two teams. Scores are nullable because
// providers publish schedules before results come in.
type Game struct {
	ID                 uuid.UUID `json:"id"`
	HomeTeamID         uuid.UUID `json:"home_team_id"`
	AwayTeamID         uuid.UUID `json:"away_team_id"`
	HomeScore          *int      `json:"home_score,omitempty"`
	AwayScore          *int      `json:"away_score,omitempty"`
	GameDate           time.Time `json:"game_date"`
	Provider           string    `json:"provider,omitempty"`
	HomeProviderTeamID string    `json:"home_provider_team_id,omitempty"`
	AwayProviderTeamID string    `json:"away_provider_team_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// GameSide is one team's view of a game: the opponent they faced, when, and
// the score from their perspective. The suggestion scan works entirely on
// per-team sides rather than raw games.
type GameSide struct {
	GameID       uuid.UUID `json:"game_id"`
	Date         time.Time `json:"date"`
	OpponentID   uuid.UUID `json:"opponent_id"`
	GoalsFor     *int      `json:"goals_for,omitempty"`
	GoalsAgainst *int      `json:"goals_against,omitempty"`
}

// HasScore reports whether both sides of the result are known.
func (g GameSide) HasScore() bool {
	return g.GoalsFor != nil && g.GoalsAgainst != nil
}

// Sides splits a game into the two per-team views. Games with a missing
// team reference on either side produce no views.
func (g *Game) Sides() []GameSide {
	if g.HomeTeamID == uuid.Nil || g.AwayTeamID == uuid.Nil {
		return nil
	}
	return []GameSide{
		{
			GameID:       g.ID,
			Date:         g.GameDate,
			OpponentID:   g.AwayTeamID,
			GoalsFor:     g.HomeScore,
			GoalsAgainst: g.AwayScore,
		},
		{
			GameID:       g.ID,
			Date:         g.GameDate,
			OpponentID:   g.HomeTeamID,
			GoalsFor:     g.AwayScore,
			GoalsAgainst: g.HomeScore,
		},
	}
}
