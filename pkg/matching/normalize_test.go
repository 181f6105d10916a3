package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "fc dallas 2014b", NormalizeName("  FC   Dallas 2014B "))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"fc", "dallas", "2014b"}, Tokens("FC Dallas 2014B"))
	assert.Equal(t, []string{"rush", "npl", "2"}, Tokens("Rush-NPL (2)"))
}

func TestClubKey(t *testing.T) {
	// Plural club nouns singularize so provider spellings converge.
	assert.Equal(t, ClubKey("Dallas Strikers"), ClubKey("Dallas Striker"))
	assert.Equal(t, ClubKey("Colorado Rapids SC"), ClubKey("Colorado Rapid SC"))

	// Short tokens and abbreviations stay as-is.
	assert.Equal(t, "fc dallas", ClubKey("FC Dallas"))
	assert.NotEqual(t, ClubKey("Solar SC"), ClubKey("Solar FC"))
}
