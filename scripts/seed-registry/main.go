// seed-registry loads a small 2014 boys Colorado cohort into the registry so
// the merge workflow can be exercised end to end. The cohort contains one
// deliberate duplicate pair: the same spring league ingested from two
// providers, leaving "Pikes Peak Rush 2014B" (gotsport) and "Pikes Peak Rush
// SC 2014 Boys" (playmetrics) with mirrored fixtures against the same
// opponents. It also contains two Real Colorado sibling squads whose tier
// markers keep them apart in the duplicate scan.
//
// After seeding, walk the workflow with:
//
//	pitchctl suggest --age-group 2014 --gender boys --state CO
//	pitchctl merge <deprecated-id> <canonical-id> --operator you
//
// Re-running against a freshly seeded database is safe: rows that already
// exist are skipped. After merging, re-seed with -wipe instead, since a merge
// rewrites the rows the existence checks look for.
//
// Usage: go run ./scripts/seed-registry
//
// Database connection: Uses standard PG* environment variables. The schema
// must already exist (start the engine once, or apply ./migrations).
//
// Flags:
//
//	-wipe   Delete all registry rows before seeding (demo databases only)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type seedTeam struct {
	id       uuid.UUID
	name     string
	clubName string
}

type seedAlias struct {
	provider       string
	providerTeamID string
	teamID         uuid.UUID
}

type seedGame struct {
	homeTeamID uuid.UUID
	awayTeamID uuid.UUID
	homeScore  *int
	awayScore  *int
	date       time.Time
	provider   string
	homeRef    string
	awayRef    string
}

// Fixed IDs keep re-runs idempotent and make the demo teams easy to find.
var (
	rushGotsportID    = uuid.MustParse("1f0d2a7e-5b3c-4e8d-9a16-3c42e1b7a901")
	rushPlaymetricsID = uuid.MustParse("2a9b5c1d-7e4f-4a2b-8c3d-5e6f7a8b9c0d")
	arsenalID         = uuid.MustParse("3b8c6d2e-9f5a-4b3c-ad4e-6f7a8b9c0d1e")
	stormID           = uuid.MustParse("4c7d5e3f-0a6b-4c4d-be5f-7a8b9c0d1e2f")
	rapidsID          = uuid.MustParse("5d6e4f2a-1b7c-4d5e-af60-8b9c0d1e2f3a")
	realPremierID     = uuid.MustParse("6e5f3a1b-2c8d-4e6f-b071-9c0d1e2f3a4b")
	realEliteID       = uuid.MustParse("7f4a2b0c-3d9e-4f70-8182-0d1e2f3a4b5c")
)

var demoTeams = []seedTeam{
	// The duplicate pair. Same squad, ingested under two providers with
	// slightly different spellings and no conflicting markers.
	{rushGotsportID, "Pikes Peak Rush 2014B", "Pikes Peak Rush"},
	{rushPlaymetricsID, "Pikes Peak Rush SC 2014 Boys", "Pikes Peak Rush"},

	// Regular opponents shared by both halves of the pair.
	{arsenalID, "Arsenal Colorado 2014B", "Arsenal Colorado"},
	{stormID, "Storm FC Thornton 2014B", "Storm FC"},
	{rapidsID, "Colorado Rapids Youth 2014B", "Colorado Rapids Youth"},

	// Sibling squads from one club. Their names differ only by tier
	// marker, so the scan must report them as distinct squads.
	{realPremierID, "Real Colorado 2014B Premier", "Real Colorado"},
	{realEliteID, "Real Colorado 2014B Elite", "Real Colorado"},
}

var demoAliases = []seedAlias{
	{"gotsport", "gs-408211", rushGotsportID},
	{"playmetrics", "pm-88172", rushPlaymetricsID},
	{"gotsport", "gs-395107", arsenalID},
	{"gotsport", "gs-401263", stormID},
	{"gotsport", "gs-388094", rapidsID},
	{"gotsport", "gs-392551", realPremierID},
	{"gotsport", "gs-392552", realEliteID},
	{"playmetrics", "pm-90415", arsenalID},
	{"playmetrics", "pm-91822", stormID},
	{"playmetrics", "pm-89307", rapidsID},
}

var demoGames = []seedGame{
	// The spring league as gotsport recorded it.
	{rushGotsportID, arsenalID, intPtr(3), intPtr(1), day("2026-03-07"), "gotsport", "gs-408211", "gs-395107"},
	{stormID, rushGotsportID, intPtr(2), intPtr(2), day("2026-03-14"), "gotsport", "gs-401263", "gs-408211"},
	{rushGotsportID, rapidsID, intPtr(1), intPtr(4), day("2026-03-21"), "gotsport", "gs-408211", "gs-388094"},
	{rushGotsportID, stormID, intPtr(2), intPtr(0), day("2026-03-28"), "gotsport", "gs-408211", "gs-401263"},

	// The playmetrics feed recorded three of the same fixtures under its
	// own team record, so the pair shares opponents, dates, and results.
	{rushPlaymetricsID, arsenalID, intPtr(3), intPtr(1), day("2026-03-07"), "playmetrics", "pm-88172", "pm-90415"},
	{stormID, rushPlaymetricsID, intPtr(2), intPtr(2), day("2026-03-14"), "playmetrics", "pm-91822", "pm-88172"},
	{rushPlaymetricsID, rapidsID, intPtr(1), intPtr(4), day("2026-03-21"), "playmetrics", "pm-88172", "pm-89307"},

	// Background fixtures so the cohort is not just the pair.
	{arsenalID, rapidsID, intPtr(0), intPtr(2), day("2026-03-14"), "gotsport", "gs-395107", "gs-388094"},
	{realPremierID, realEliteID, intPtr(2), intPtr(1), day("2026-04-04"), "gotsport", "gs-392551", "gs-392552"},
	{rapidsID, stormID, intPtr(3), intPtr(3), day("2026-04-11"), "gotsport", "gs-388094", "gs-401263"},
	{realEliteID, arsenalID, intPtr(1), intPtr(2), day("2026-04-18"), "gotsport", "gs-392552", "gs-395107"},

	// A scheduled fall fixture with no result yet.
	{realPremierID, stormID, nil, nil, day("2026-09-12"), "gotsport", "gs-392551", "gs-401263"},
}

func main() {
	wipe := flag.Bool("wipe", false, "Delete all registry rows before seeding")
	flag.Parse()

	ctx := context.Background()

	conn, err := pgx.Connect(ctx, buildConnString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	if *wipe {
		if err := wipeRegistry(ctx, conn); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to wipe registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry wiped")
	}

	teamsInserted, err := seedTeams(ctx, conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed teams: %v\n", err)
		os.Exit(1)
	}

	aliasesInserted, err := seedAliases(ctx, conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed aliases: %v\n", err)
		os.Exit(1)
	}

	gamesInserted, err := seedGames(ctx, conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed games: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Teams: %d inserted, %d already present\n", teamsInserted, len(demoTeams)-teamsInserted)
	fmt.Printf("Aliases: %d inserted, %d already present\n", aliasesInserted, len(demoAliases)-aliasesInserted)
	fmt.Printf("Games: %d inserted, %d already present\n", gamesInserted, len(demoGames)-gamesInserted)
	fmt.Println()
	fmt.Println("Next: pitchctl suggest --age-group 2014 --gender boys --state CO")
}

// wipeRegistry clears every registry table. Children first, the teams
// table last.
func wipeRegistry(ctx context.Context, conn *pgx.Conn) error {
	for _, table := range []string{"merge_audit", "team_merges", "games", "team_aliases", "teams"} {
		if _, err := conn.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}

func seedTeams(ctx context.Context, conn *pgx.Conn) (int, error) {
	inserted := 0
	for _, t := range demoTeams {
		result, err := conn.Exec(ctx, `
			INSERT INTO teams (id, name, club_name, age_group, gender, state)
			VALUES ($1, $2, $3, '2014', 'boys', 'CO')
			ON CONFLICT (id) DO NOTHING
		`, t.id, t.name, t.clubName)
		if err != nil {
			return inserted, fmt.Errorf("insert team %q: %w", t.name, err)
		}
		inserted += int(result.RowsAffected())
	}
	return inserted, nil
}

func seedAliases(ctx context.Context, conn *pgx.Conn) (int, error) {
	inserted := 0
	for _, a := range demoAliases {
		result, err := conn.Exec(ctx, `
			INSERT INTO team_aliases (provider, provider_team_id, team_id, match_method, confidence)
			VALUES ($1, $2, $3, 'exact', 1.0)
			ON CONFLICT (provider, provider_team_id) DO NOTHING
		`, a.provider, a.providerTeamID, a.teamID)
		if err != nil {
			return inserted, fmt.Errorf("insert alias %s/%s: %w", a.provider, a.providerTeamID, err)
		}
		inserted += int(result.RowsAffected())
	}
	return inserted, nil
}

// seedGames inserts each fixture unless a game between the same two teams on
// the same date already exists. Games carry no natural unique key, so the
// guard lives in the insert itself.
func seedGames(ctx context.Context, conn *pgx.Conn) (int, error) {
	inserted := 0
	for _, g := range demoGames {
		result, err := conn.Exec(ctx, `
			INSERT INTO games (home_team_id, away_team_id, home_score, away_score, game_date, provider, home_provider_team_id, away_provider_team_id)
			SELECT $1, $2, $3, $4, $5, $6, $7, $8
			WHERE NOT EXISTS (
				SELECT 1 FROM games
				WHERE home_team_id = $1 AND away_team_id = $2 AND game_date = $5
			)
		`, g.homeTeamID, g.awayTeamID, g.homeScore, g.awayScore, g.date, g.provider, g.homeRef, g.awayRef)
		if err != nil {
			return inserted, fmt.Errorf("insert game on %s: %w", g.date.Format("2006-01-02"), err)
		}
		inserted += int(result.RowsAffected())
	}
	return inserted, nil
}

func buildConnString() string {
	host := getEnvOrDefault("PGHOST", "localhost")
	port := getEnvOrDefault("PGPORT", "5432")
	user := getEnvOrDefault("PGUSER", "postgres")
	dbname := getEnvOrDefault("PGDATABASE", "pitchrank")
	password := os.Getenv("PGPASSWORD")

	connStr := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
	if password != "" {
		connStr += fmt.Sprintf(" password=%s", password)
	}
	return connStr
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func intPtr(v int) *int {
	return &v
}
