package matching

import (
	"fmt"
	"strings"

	"github.com/pitchrank/pitchrank-engine/pkg/models"
)

// Signal names as they appear in suggestion breakdowns and merge records.
const (
	SignalOpponentOverlap   = "opponent_overlap"
	SignalScheduleAlignment = "schedule_alignment"
	SignalNameSimilarity    = "name_similarity"
	SignalGeography         = "geography"
	SignalPerformance       = "performance"
)

// EvaluatePair computes the full signal set for a candidate pair together
// with the per-signal detail strings shown to operators.
func EvaluatePair(a, b *models.Team, gamesA, gamesB []models.GameSide) (SignalSet, []models.SignalScore) {
	signals := ComputeSignals(a, b, gamesA, gamesB)

	details := []models.SignalScore{
		{Signal: SignalOpponentOverlap, Score: signals.OpponentOverlap, Detail: opponentDetail(gamesA, gamesB)},
		{Signal: SignalScheduleAlignment, Score: signals.ScheduleAlignment, Detail: scheduleDetail(gamesA, gamesB)},
		{Signal: SignalNameSimilarity, Score: signals.NameSimilarity, Detail: fmt.Sprintf("%q vs %q", a.Name, b.Name)},
		{Signal: SignalGeography, Score: signals.Geography, Detail: geographyDetail(a, b)},
		{Signal: SignalPerformance, Score: signals.Performance, Detail: performanceDetail(gamesA, gamesB)},
	}

	return signals, details
}

func opponentDetail(gamesA, gamesB []models.GameSide) string {
	if len(gamesA) == 0 || len(gamesB) == 0 {
		return "no game history for one or both teams"
	}

	setA := opponentSet(gamesA)
	setB := opponentSet(gamesB)
	shared := 0
	for id := range setA {
		if setB[id] {
			shared++
		}
	}
	return fmt.Sprintf("%d shared opponents across %d and %d distinct", shared, len(setA), len(setB))
}

func scheduleDetail(gamesA, gamesB []models.GameSide) string {
	daysA := distinctDays(gamesA)
	daysB := distinctDays(gamesB)
	if len(daysA) == 0 || len(daysB) == 0 {
		return "no game history for one or both teams"
	}

	matches := 0
	for day := range daysA {
		if daysB[day] || daysB[day-1] || daysB[day+1] {
			matches++
		}
	}
	denom := len(daysA)
	if len(daysB) < denom {
		denom = len(daysB)
	}
	return fmt.Sprintf("%d of %d game dates within one day of each other", matches, denom)
}

func geographyDetail(a, b *models.Team) string {
	var parts []string

	stateA := strings.ToLower(strings.TrimSpace(a.State))
	stateB := strings.ToLower(strings.TrimSpace(b.State))
	if stateA != "" && stateA == stateB {
		parts = append(parts, fmt.Sprintf("both in %s", strings.ToUpper(stateA)))
	}

	clubA := ClubKey(a.ClubName)
	clubB := ClubKey(b.ClubName)
	if clubA != "" && clubB != "" {
		if clubA == clubB {
			parts = append(parts, "same club")
		} else if editSimilarity(clubA, clubB) > 0.8 {
			parts = append(parts, "similar club names")
		}
	}

	if len(parts) == 0 {
		return "no shared location evidence"
	}
	return strings.Join(parts, "; ")
}

func performanceDetail(gamesA, gamesB []models.GameSide) string {
	winRateA, goalDiffA, okA := scoredRecord(gamesA)
	winRateB, goalDiffB, okB := scoredRecord(gamesB)
	if !okA || !okB {
		return "no scored games for one or both teams"
	}
	return fmt.Sprintf("win rate %.2f vs %.2f, mean goal diff %+.1f vs %+.1f",
		winRateA, winRateB, goalDiffA, goalDiffB)
}
