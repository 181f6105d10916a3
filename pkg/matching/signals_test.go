package matching

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pitchrank/pitchrank-engine/pkg/models"
)

var (
	oppW = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	oppX = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
	oppY = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000003")
	oppZ = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000004")
)

func gameOn(day int, opponent uuid.UUID, goalsFor, goalsAgainst int) models.GameSide {
	return models.GameSide{
		Date:         time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		OpponentID:   opponent,
		GoalsFor:     &goalsFor,
		GoalsAgainst: &goalsAgainst,
	}
}

func unscoredGameOn(day int, opponent uuid.UUID) models.GameSide {
	return models.GameSide{
		Date:       time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		OpponentID: opponent,
	}
}

func team(name, club, state string) *models.Team {
	return &models.Team{
		ID:       uuid.New(),
		Name:     name,
		ClubName: club,
		AgeGroup: "2014",
		Gender:   models.GenderBoys,
		State:    state,
	}
}

func TestOpponentOverlap(t *testing.T) {
	gamesA := []models.GameSide{
		gameOn(0, oppW, 2, 1),
		gameOn(7, oppX, 1, 1),
		gameOn(14, oppY, 0, 3),
	}
	gamesB := []models.GameSide{
		gameOn(1, oppW, 3, 0),
		gameOn(8, oppX, 2, 2),
		gameOn(15, oppZ, 1, 0),
	}

	// Shared {W,X}, union {W,X,Y,Z}.
	assert.InDelta(t, 0.5, OpponentOverlap(gamesA, gamesB), 1e-9)
}

func TestOpponentOverlap_NoGames(t *testing.T) {
	gamesA := []models.GameSide{gameOn(0, oppW, 2, 1)}

	assert.Zero(t, OpponentOverlap(gamesA, nil))
	assert.Zero(t, OpponentOverlap(nil, gamesA))
	assert.Zero(t, OpponentOverlap(nil, nil))
}

func TestScheduleAlignment_AdjacentDays(t *testing.T) {
	gamesA := []models.GameSide{
		gameOn(0, oppW, 1, 0),
		gameOn(7, oppX, 1, 0),
		gameOn(14, oppY, 1, 0),
		gameOn(21, oppZ, 1, 0),
	}
	// Saturday vs Sunday fixtures: every date one day off, plus one far miss.
	gamesB := []models.GameSide{
		gameOn(1, oppW, 1, 0),
		gameOn(8, oppX, 1, 0),
		gameOn(15, oppY, 1, 0),
		gameOn(40, oppZ, 1, 0),
	}

	// 3 of A's 4 dates have a B game within a day, normalized by min(4,4).
	assert.InDelta(t, 0.75, ScheduleAlignment(gamesA, gamesB), 1e-9)
}

func TestScheduleAlignment_CappedAtOne(t *testing.T) {
	// A has one distinct date, B brackets it on both sides.
	gamesA := []models.GameSide{gameOn(5, oppW, 1, 0)}
	gamesB := []models.GameSide{
		gameOn(4, oppX, 1, 0),
		gameOn(5, oppY, 1, 0),
		gameOn(6, oppZ, 1, 0),
	}

	assert.InDelta(t, 1.0, ScheduleAlignment(gamesA, gamesB), 1e-9)
}

func TestScheduleAlignment_NoGames(t *testing.T) {
	gamesA := []models.GameSide{gameOn(0, oppW, 1, 0)}

	assert.Zero(t, ScheduleAlignment(gamesA, nil))
	assert.Zero(t, ScheduleAlignment(nil, gamesA))
}

func TestNameSimilarity_Identity(t *testing.T) {
	withClub := team("Rush 2014B Premier", "Rush SC", "CO")
	assert.InDelta(t, 1.0, NameSimilarity(withClub, withClub), 1e-9)

	// Identity must hold even when no club is recorded.
	noClub := team("Lonetree United", "", "CO")
	assert.InDelta(t, 1.0, NameSimilarity(noClub, noClub), 1e-9)
}

func TestNameSimilarity_OneClubMissing(t *testing.T) {
	a := team("Rush 2014B", "Rush SC", "CO")
	b := team("Rush 2014B", "", "CO")

	// Identical names, but the club term contributes nothing.
	assert.InDelta(t, 0.7, NameSimilarity(a, b), 1e-9)
}

func TestNameSimilarity_CaseInsensitive(t *testing.T) {
	a := team("FC DALLAS", "FC DALLAS", "TX")
	b := team("fc dallas", "fc dallas", "TX")

	assert.InDelta(t, 1.0, NameSimilarity(a, b), 1e-9)
}

func TestGeography(t *testing.T) {
	tests := []struct {
		name     string
		a        *models.Team
		b        *models.Team
		expected float64
	}{
		{
			name:     "same state and same club",
			a:        team("A", "FC Dallas", "TX"),
			b:        team("B", "FC Dallas", "TX"),
			expected: 1.0,
		},
		{
			name:     "same state only",
			a:        team("A", "FC Dallas", "TX"),
			b:        team("B", "Solar SC", "TX"),
			expected: 0.5,
		},
		{
			name:     "same club different state",
			a:        team("A", "Rush SC", "CO"),
			b:        team("B", "Rush SC", "TX"),
			expected: 0.5,
		},
		{
			name:     "similar but not identical club",
			a:        team("A", "Dallas Texans SC", ""),
			b:        team("B", "Dallas Texans FC", ""),
			expected: 0.3,
		},
		{
			name:     "no location data",
			a:        team("A", "", ""),
			b:        team("B", "", ""),
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Geography(tt.a, tt.b), 1e-9)
		})
	}
}

func TestGeography_SingularizesClubNames(t *testing.T) {
	a := team("A", "Dallas Strikers", "TX")
	b := team("B", "Dallas Striker", "TX")

	// Plural and singular club spellings compare equal.
	assert.InDelta(t, 1.0, Geography(a, b), 1e-9)
}

func TestPerformanceFingerprint(t *testing.T) {
	// A: 2 wins of 4, mean diff (2-1 + 1-2 + 3-0 + 0-1)/4 = 0.5
	gamesA := []models.GameSide{
		gameOn(0, oppW, 2, 1),
		gameOn(7, oppX, 1, 2),
		gameOn(14, oppY, 3, 0),
		gameOn(21, oppZ, 0, 1),
	}
	// B: 1 win of 2, mean diff (2-0 + 0-1)/2 = 0.5
	gamesB := []models.GameSide{
		gameOn(1, oppW, 2, 0),
		gameOn(8, oppX, 0, 1),
	}

	// Equal win rates and equal mean differentials score a full 1.0.
	assert.InDelta(t, 1.0, PerformanceFingerprint(gamesA, gamesB), 1e-9)
}

func TestPerformanceFingerprint_NoScoredGames(t *testing.T) {
	scored := []models.GameSide{gameOn(0, oppW, 2, 1)}
	unscored := []models.GameSide{unscoredGameOn(0, oppX)}

	assert.Zero(t, PerformanceFingerprint(scored, unscored))
	assert.Zero(t, PerformanceFingerprint(unscored, scored))
}

func TestPerformanceFingerprint_LargeDifferentialGap(t *testing.T) {
	// A wins everything by a lot, B loses everything by a lot. The goal-diff
	// term bottoms out at zero rather than going negative.
	gamesA := []models.GameSide{gameOn(0, oppW, 9, 0)}
	gamesB := []models.GameSide{gameOn(0, oppX, 0, 9)}

	assert.InDelta(t, 0.0, PerformanceFingerprint(gamesA, gamesB), 1e-9)
}

// Every signal must be symmetric in its arguments.
func TestSignals_Symmetry(t *testing.T) {
	a := team("FC Dallas 2014B", "FC Dallas", "TX")
	b := team("FC Dallas Academy", "FC Dallas", "TX")
	gamesA := []models.GameSide{
		gameOn(0, oppW, 2, 1),
		gameOn(7, oppX, 1, 1),
		gameOn(14, oppY, 0, 2),
	}
	gamesB := []models.GameSide{
		gameOn(1, oppW, 3, 1),
		gameOn(7, oppX, 2, 0),
		gameOn(15, oppZ, 1, 1),
	}

	assert.Equal(t, OpponentOverlap(gamesA, gamesB), OpponentOverlap(gamesB, gamesA))
	assert.Equal(t, ScheduleAlignment(gamesA, gamesB), ScheduleAlignment(gamesB, gamesA))
	assert.Equal(t, NameSimilarity(a, b), NameSimilarity(b, a))
	assert.Equal(t, Geography(a, b), Geography(b, a))
	assert.Equal(t, PerformanceFingerprint(gamesA, gamesB), PerformanceFingerprint(gamesB, gamesA))
}

func TestConfidence_Weighting(t *testing.T) {
	signals := SignalSet{
		OpponentOverlap:   1.0,
		ScheduleAlignment: 1.0,
		NameSimilarity:    1.0,
		Geography:         1.0,
		Performance:       1.0,
	}
	assert.InDelta(t, 1.0, signals.Confidence(), 1e-9)

	signals = SignalSet{OpponentOverlap: 1.0}
	assert.InDelta(t, 0.40, signals.Confidence(), 1e-9)

	signals = SignalSet{
		OpponentOverlap:   0.5,
		ScheduleAlignment: 0.8,
		NameSimilarity:    0.25,
		Geography:         1.0,
		Performance:       0.6,
	}
	// 0.40*0.5 + 0.25*0.8 + 0.20*0.25 + 0.10*1.0 + 0.05*0.6
	assert.InDelta(t, 0.58, signals.Confidence(), 1e-9)
}

// Behavioral evidence dominates the weighting: two sibling-club teams with
// clearly different names but a nearly identical fixture list still score
// far above what name similarity alone would give them.
func TestConfidence_BehavioralEvidenceDominates(t *testing.T) {
	a := team("FC Dallas 2014B", "FC Dallas", "TX")
	b := team("FC Dallas Academy", "FC Dallas", "TX")

	opponents := []uuid.UUID{oppW, oppX, oppY, oppZ}
	var gamesA, gamesB []models.GameSide
	for i, opp := range opponents {
		gamesA = append(gamesA, gameOn(i*7, opp, 2, 1))
		gamesB = append(gamesB, gameOn(i*7+1, opp, 2, 1))
	}

	signals := ComputeSignals(a, b, gamesA, gamesB)
	confidence := signals.Confidence()

	assert.InDelta(t, 1.0, signals.OpponentOverlap, 1e-9)
	assert.InDelta(t, 1.0, signals.ScheduleAlignment, 1e-9)
	assert.Less(t, signals.NameSimilarity, 0.85)
	assert.Greater(t, confidence, 0.90)

	// Name similarity contributed at most 0.17 of that confidence.
	assert.Greater(t, confidence-WeightNameSimilarity*signals.NameSimilarity, 0.70)
}

func TestEvaluatePair_Details(t *testing.T) {
	a := team("FC Dallas 2014B", "FC Dallas", "TX")
	b := team("FC Dallas Academy", "FC Dallas", "TX")
	gamesA := []models.GameSide{gameOn(0, oppW, 2, 1), gameOn(7, oppX, 1, 0)}
	gamesB := []models.GameSide{gameOn(1, oppW, 3, 1), gameOn(8, oppX, 2, 0)}

	signals, details := EvaluatePair(a, b, gamesA, gamesB)

	assert.Len(t, details, 5)
	byName := map[string]models.SignalScore{}
	for _, d := range details {
		byName[d.Signal] = d
	}

	assert.Equal(t, signals.OpponentOverlap, byName[SignalOpponentOverlap].Score)
	assert.Contains(t, byName[SignalOpponentOverlap].Detail, "2 shared opponents")
	assert.Contains(t, byName[SignalScheduleAlignment].Detail, "2 of 2 game dates")
	assert.Contains(t, byName[SignalGeography].Detail, "same club")
	assert.Contains(t, byName[SignalNameSimilarity].Detail, "FC Dallas 2014B")
	assert.Contains(t, byName[SignalPerformance].Detail, "win rate")
}

func TestEvaluatePair_MissingGamesDegrade(t *testing.T) {
	a := team("FC Dallas 2014B", "FC Dallas", "TX")
	b := team("FC Dallas Academy", "FC Dallas", "TX")

	signals, details := EvaluatePair(a, b, nil, nil)

	assert.Zero(t, signals.OpponentOverlap)
	assert.Zero(t, signals.ScheduleAlignment)
	assert.Zero(t, signals.Performance)
	assert.NotZero(t, signals.NameSimilarity)

	byName := map[string]models.SignalScore{}
	for _, d := range details {
		byName[d.Signal] = d
	}
	assert.Contains(t, byName[SignalOpponentOverlap].Detail, "no game history")
}
