// Package matching implements the similarity signals and structural name
// heuristics used to detect duplicate team records created by independent
// ingestion pipelines.
package matching

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/pitchrank/pitchrank-engine/pkg/models"
)

// Signal weights. Behavioral evidence (who a team played, and when) gets far
// more weight than name spelling because provider feeds frequently mangle
// names but rarely fabricate a shared fixture list.
const (
	WeightOpponentOverlap   = 0.40
	WeightScheduleAlignment = 0.25
	WeightNameSimilarity    = 0.20
	WeightGeography         = 0.10
	WeightPerformance       = 0.05
)

// SignalSet holds the five similarity signals for one candidate pair.
// Each value is in [0,1].
type SignalSet struct {
	OpponentOverlap   float64 `json:"opponent_overlap"`
	ScheduleAlignment float64 `json:"schedule_alignment"`
	NameSimilarity    float64 `json:"name_similarity"`
	Geography         float64 `json:"geography"`
	Performance       float64 `json:"performance"`
}

// Confidence combines the signals into the weighted [0,1] score used to rank
// and threshold suggestions.
func (s SignalSet) Confidence() float64 {
	return WeightOpponentOverlap*s.OpponentOverlap +
		WeightScheduleAlignment*s.ScheduleAlignment +
		WeightNameSimilarity*s.NameSimilarity +
		WeightGeography*s.Geography +
		WeightPerformance*s.Performance
}

// Map returns the signals keyed by name, for persisting alongside a merge.
func (s SignalSet) Map() map[string]float64 {
	return map[string]float64{
		SignalOpponentOverlap:   s.OpponentOverlap,
		SignalScheduleAlignment: s.ScheduleAlignment,
		SignalNameSimilarity:    s.NameSimilarity,
		SignalGeography:         s.Geography,
		SignalPerformance:       s.Performance,
	}
}

// ComputeSignals evaluates all five signals for a pair of teams.
func ComputeSignals(a, b *models.Team, gamesA, gamesB []models.GameSide) SignalSet {
	return SignalSet{
		OpponentOverlap:   OpponentOverlap(gamesA, gamesB),
		ScheduleAlignment: ScheduleAlignment(gamesA, gamesB),
		NameSimilarity:    NameSimilarity(a, b),
		Geography:         Geography(a, b),
		Performance:       PerformanceFingerprint(gamesA, gamesB),
	}
}

// OpponentOverlap is the Jaccard index of the two teams' distinct-opponent
// sets. Returns 0 if either team has no games.
func OpponentOverlap(gamesA, gamesB []models.GameSide) float64 {
	if len(gamesA) == 0 || len(gamesB) == 0 {
		return 0
	}

	setA := opponentSet(gamesA)
	setB := opponentSet(gamesB)

	shared := 0
	for id := range setA {
		if setB[id] {
			shared++
		}
	}

	union := len(setA) + len(setB) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// ScheduleAlignment counts how many of team A's distinct game dates have a
// team B game within one day, normalized by the smaller distinct-date count
// and capped at 1.0. Returns 0 if either team has no games.
func ScheduleAlignment(gamesA, gamesB []models.GameSide) float64 {
	daysA := distinctDays(gamesA)
	daysB := distinctDays(gamesB)
	if len(daysA) == 0 || len(daysB) == 0 {
		return 0
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

	score := float64(matches) / float64(denom)
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// NameSimilarity blends edit-distance similarity of the display names with
// that of the club names: 0.7 * name + 0.3 * club. The club term drops out
// when either side has no club recorded; with no club data at all the name
// term stands alone so a team always scores 1.0 against itself.
func NameSimilarity(a, b *models.Team) float64 {
	nameScore := editSimilarity(NormalizeName(a.Name), NormalizeName(b.Name))

	clubA := NormalizeName(a.ClubName)
	clubB := NormalizeName(b.ClubName)
	if clubA == "" && clubB == "" {
		return nameScore
	}
	if clubA == "" || clubB == "" {
		return 0.7 * nameScore
	}
	return 0.7*nameScore + 0.3*editSimilarity(clubA, clubB)
}

// Geography scores shared location evidence: 0.5 for matching state codes,
// plus 0.5 for identical club names or 0.3 for highly similar ones. Returns
// 0 when there is no state or club data to compare.
func Geography(a, b *models.Team) float64 {
	score := 0.0

	stateA := strings.ToLower(strings.TrimSpace(a.State))
	stateB := strings.ToLower(strings.TrimSpace(b.State))
	if stateA != "" && stateA == stateB {
		score += 0.5
	}

	clubA := ClubKey(a.ClubName)
	clubB := ClubKey(b.ClubName)
	if clubA != "" && clubB != "" {
		if clubA == clubB {
			score += 0.5
		} else if editSimilarity(clubA, clubB) > 0.8 {
			score += 0.3
		}
	}

	return score
}

// PerformanceFingerprint compares win rate and mean goal differential over
// games with known scores. Returns 0 if either team has no scored games.
func PerformanceFingerprint(gamesA, gamesB []models.GameSide) float64 {
	winRateA, goalDiffA, okA := scoredRecord(gamesA)
	winRateB, goalDiffB, okB := scoredRecord(gamesB)
	if !okA || !okB {
		return 0
	}

	winTerm := 1.0 - math.Abs(winRateA-winRateB)
	if winTerm < 0 {
		winTerm = 0
	}
	diffTerm := 1.0 - math.Abs(goalDiffA-goalDiffB)/5.0
	if diffTerm < 0 {
		diffTerm = 0
	}

	return 0.6*winTerm + 0.4*diffTerm
}

func opponentSet(games []models.GameSide) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(games))
	for _, g := range games {
		if g.OpponentID != uuid.Nil {
			set[g.OpponentID] = true
		}
	}
	return set
}

// distinctDays maps each game to its UTC day ordinal.
func distinctDays(games []models.GameSide) map[int64]bool {
	days := make(map[int64]bool, len(games))
	for _, g := range games {
		if g.Date.IsZero() {
			continue
		}
		days[g.Date.UTC().Unix()/86400] = true
	}
	return days
}

// scoredRecord computes win rate and mean goal differential over games with
// both scores known. ok is false when no such games exist.
func scoredRecord(games []models.GameSide) (winRate, meanGoalDiff float64, ok bool) {
	scored := 0
	wins := 0
	diff := 0
	for _, g := range games {
		if !g.HasScore() {
			continue
		}
		scored++
		if *g.GoalsFor > *g.GoalsAgainst {
			wins++
		}
		diff += *g.GoalsFor - *g.GoalsAgainst
	}
	if scored == 0 {
		return 0, 0, false
	}
	return float64(wins) / float64(scored), float64(diff) / float64(scored), true
}

// editSimilarity is 1 - editDistance/maxLen on the given strings. Two empty
// strings are identical.
func editSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}
	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - float64(levenshteinDistance(s1, s2))/float64(maxLen)
}

// levenshteinDistance calculates the edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// Use a single row of the DP table for space efficiency
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = minInt(
				curr[j-1]+1,    // insertion
				prev[j]+1,      // deletion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// minInt returns the minimum of three integers.
func minInt(a, b, c int) int {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}
