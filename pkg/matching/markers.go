package matching

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const markersPathEnv = "PITCHRANK_MARKERS_YAML"

//go:embed markers.yaml
var markersFS embed.FS

// markerVocabulary is the tunable token vocabulary behind the detector.
type markerVocabulary struct {
	LocationCodes []string `yaml:"location_codes"`
	Directionals  []string `yaml:"directionals"`
	TierMarkers   []string `yaml:"tier_markers"`
	LeagueMarkers []string `yaml:"league_markers"`
}

// MarkerDetector flags candidate pairs whose names carry structural evidence
// of being different squads within the same club program: differing location
// codes, team-number suffixes, tier qualifiers, or league numbering. A flagged
// pair is excluded from suggestions no matter how high its similarity score,
// because sibling squads share opponents, schedules, and rosters and are
// indistinguishable on behavioral evidence alone.
type MarkerDetector struct {
	locations  map[string]bool
	tiers      map[string]bool
	leagues    map[string]bool
	qualifiers map[string]bool
}

// NewMarkerDetector loads the embedded marker vocabulary. Set
// PITCHRANK_MARKERS_YAML to load a tuned vocabulary from disk instead.
func NewMarkerDetector() (*MarkerDetector, error) {
	data, err := readMarkersFile()
	if err != nil {
		return nil, fmt.Errorf("failed to read marker vocabulary: %w", err)
	}

	var vocab markerVocabulary
	if err := yaml.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("failed to parse marker vocabulary: %w", err)
	}
	if err := validateVocabulary(&vocab); err != nil {
		return nil, fmt.Errorf("invalid marker vocabulary: %w", err)
	}

	return newMarkerDetector(&vocab), nil
}

func readMarkersFile() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(markersPathEnv)); path != "" {
		return os.ReadFile(path)
	}
	return markersFS.ReadFile("markers.yaml")
}

func validateVocabulary(vocab *markerVocabulary) error {
	if len(vocab.LocationCodes) == 0 {
		return errors.New("no location codes defined")
	}
	if len(vocab.TierMarkers) == 0 {
		return errors.New("no tier markers defined")
	}
	return nil
}

func newMarkerDetector(vocab *markerVocabulary) *MarkerDetector {
	d := &MarkerDetector{
		locations:  tokenSet(vocab.LocationCodes),
		tiers:      tokenSet(vocab.TierMarkers),
		leagues:    tokenSet(vocab.LeagueMarkers),
		qualifiers: tokenSet(vocab.Directionals),
	}
	// Directional words double as location evidence.
	for tok := range d.qualifiers {
		d.locations[tok] = true
	}
	return d
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" {
			set[tok] = true
		}
	}
	return set
}

// HasDistinguishingMarkers reports whether the two names carry structural
// markers indicating distinct teams of the same club. Identical names (after
// case folding) never count as different.
func (d *MarkerDetector) HasDistinguishingMarkers(nameA, nameB string) bool {
	a := NormalizeName(nameA)
	b := NormalizeName(nameB)
	if a == b {
		return false
	}

	tokensA := Tokens(a)
	tokensB := Tokens(b)

	if d.differentLocationCodes(tokensA, tokensB) {
		return true
	}
	if differentTeamNumbers(tokensA, tokensB) {
		return true
	}
	if d.differentTierUnits(tokensA, tokensB) {
		return true
	}
	if d.differentLeagueNumbers(tokensA, tokensB) {
		return true
	}
	return false
}

// differentLocationCodes fires when both names carry location tokens and the
// token sets differ.
func (d *MarkerDetector) differentLocationCodes(tokensA, tokensB []string) bool {
	locsA := d.collectTokens(tokensA, d.locations)
	locsB := d.collectTokens(tokensB, d.locations)
	if len(locsA) == 0 || len(locsB) == 0 {
		return false
	}
	return !equalTokenSets(locsA, locsB)
}

// differentTeamNumbers fires when the trailing team-number suffixes mismatch:
// one name has a suffix and the other doesn't, or the numbers differ. Digit,
// Roman-numeral, ordinal, and spelled-out forms of the same number compare
// equal. Birth-year cohort tokens ("2014", "2014b") are not team numbers.
func differentTeamNumbers(tokensA, tokensB []string) bool {
	numA, okA := trailingTeamNumber(tokensA)
	numB, okB := trailingTeamNumber(tokensB)
	if okA != okB {
		return true
	}
	return okA && okB && numA != numB
}

// differentTierUnits fires when both names carry tier markers and the
// marker-plus-qualifier units differ ("premier north" vs "premier south",
// or "premier" vs "elite").
func (d *MarkerDetector) differentTierUnits(tokensA, tokensB []string) bool {
	unitsA := d.tierUnits(tokensA)
	unitsB := d.tierUnits(tokensB)
	if len(unitsA) == 0 || len(unitsB) == 0 {
		return false
	}
	return !equalTokenSets(unitsA, unitsB)
}

// differentLeagueNumbers fires when both names carry the same league marker
// with differing squad numbers, counting a bare marker against a numbered one
// ("Rush NPL" vs "Rush NPL 2").
func (d *MarkerDetector) differentLeagueNumbers(tokensA, tokensB []string) bool {
	numsA := d.leagueNumbers(tokensA)
	numsB := d.leagueNumbers(tokensB)
	for league, numA := range numsA {
		if numB, ok := numsB[league]; ok && numA != numB {
			return true
		}
	}
	return false
}

func (d *MarkerDetector) collectTokens(tokens []string, vocab map[string]bool) map[string]bool {
	var found map[string]bool
	for _, tok := range tokens {
		if vocab[tok] {
			if found == nil {
				found = make(map[string]bool)
			}
			found[tok] = true
		}
	}
	return found
}

// tierUnits collects each tier marker joined with its qualifier, if the next
// token is a directional or a number form.
func (d *MarkerDetector) tierUnits(tokens []string) map[string]bool {
	var units map[string]bool
	for i, tok := range tokens {
		if !d.tiers[tok] {
			continue
		}
		unit := tok
		if i+1 < len(tokens) {
			next := tokens[i+1]
			if d.qualifiers[next] {
				unit = tok + " " + next
			} else if n, ok := teamNumberValue(next); ok && !isBirthYearToken(next) {
				unit = tok + " " + strconv.Itoa(n)
			}
		}
		if units == nil {
			units = make(map[string]bool)
		}
		units[unit] = true
	}
	return units
}

// leagueNumbers maps each league marker to its squad-number annotation, an
// empty string when the marker stands bare. Handles both split ("npl 2") and
// fused ("npl2") forms.
func (d *MarkerDetector) leagueNumbers(tokens []string) map[string]string {
	var nums map[string]string
	for i, tok := range tokens {
		league := tok
		num := ""

		if !d.leagues[tok] {
			trimmed := strings.TrimRight(tok, "0123456789")
			if trimmed == tok || !d.leagues[trimmed] {
				continue
			}
			league = trimmed
			num = tok[len(trimmed):]
		} else if i+1 < len(tokens) && isAllDigits(tokens[i+1]) && !isBirthYearToken(tokens[i+1]) {
			num = tokens[i+1]
		}

		if nums == nil {
			nums = make(map[string]string)
		}
		nums[league] = num
	}
	return nums
}

// trailingTeamNumber extracts the team-number suffix from the last name
// token, accepting digits, Roman numerals I-V, ordinals 1st-5th, and
// spelled-out one-five.
func trailingTeamNumber(tokens []string) (int, bool) {
	if len(tokens) == 0 {
		return 0, false
	}
	last := tokens[len(tokens)-1]
	if isBirthYearToken(last) {
		return 0, false
	}
	return teamNumberValue(last)
}

var romanNumbers = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5,
}

var ordinalNumbers = map[string]int{
	"1st": 1, "2nd": 2, "3rd": 3, "4th": 4, "5th": 5,
}

var spelledNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
}

func teamNumberValue(tok string) (int, bool) {
	if isAllDigits(tok) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	if n, ok := romanNumbers[tok]; ok {
		return n, true
	}
	if n, ok := ordinalNumbers[tok]; ok {
		return n, true
	}
	if n, ok := spelledNumbers[tok]; ok {
		return n, true
	}
	return 0, false
}

// isBirthYearToken matches age-cohort tokens: a 19xx/20xx year with an
// optional squad letter, as in "2014" or "2014b".
func isBirthYearToken(tok string) bool {
	if len(tok) != 4 && len(tok) != 5 {
		return false
	}
	if !strings.HasPrefix(tok, "19") && !strings.HasPrefix(tok, "20") {
		return false
	}
	for _, r := range tok[2:4] {
		if r < '0' || r > '9' {
			return false
		}
	}
	if len(tok) == 5 {
		r := tok[4]
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func equalTokenSets(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for tok := range a {
		if !b[tok] {
			return false
		}
	}
	return true
}
