package matching

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// NormalizeName lowercases a display name, trims it, and collapses runs of
// whitespace. All name comparisons start from this form.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Tokens splits a name into lowercased alphanumeric tokens.
func Tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ClubKey produces the comparison key for club names: lowercased tokens with
// plural nouns singularized, so "Dallas Strikers" and "Dallas Striker" refer
// to the same club. Short tokens stay untouched to keep abbreviations like
// "fc" and "sc" intact.
func ClubKey(s string) string {
	tokens := Tokens(s)
	for i, tok := range tokens {
		if len(tok) >= 4 && isAlpha(tok) {
			tokens[i] = inflection.Singular(tok)
		}
	}
	return strings.Join(tokens, " ")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
