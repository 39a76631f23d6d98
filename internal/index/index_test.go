package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDeduplicatesAndSorts(t *testing.T) {
	ix := Build([]string{"beta event", "alpha event", "beta event"})
	assert.Equal(t, 2, ix.Len())
	assert.Equal(t, []string{"alpha event", "beta event"}, ix.Targets())
}

func TestCandidatesForSubsetAndBound(t *testing.T) {
	targets := []string{
		"Will the Fed cut rates in Dec 2025?",
		"Fed rate decision December 2025",
		"BTC to close above 100k in 2025",
		"Champions League winner 2026",
	}
	ix := Build(targets)

	candidates := ix.CandidatesFor("Fed cuts rates in Dec 2025", 10)
	require.NotEmpty(t, candidates)
	assert.LessOrEqual(t, len(candidates), 10)
	for _, c := range candidates {
		assert.Contains(t, targets, c)
	}
}

func TestCandidatesForNumericHardFilter(t *testing.T) {
	ix := Build([]string{
		"CPI above 3 in 2025",
		"CPI above 4 in 2025",
	})
	candidates := ix.CandidatesFor("CPI above 3 in 2025", 10)
	assert.Equal(t, []string{"CPI above 3 in 2025"}, candidates)
}

func TestCandidatesForFallbackIsDeterministic(t *testing.T) {
	ix := Build([]string{"delta one", "charlie two", "bravo three", "alpha four"})

	// no token overlap anywhere: fixed-order prefix of the sorted targets
	first := ix.CandidatesFor("zzz qqq", 2)
	assert.Equal(t, []string{"alpha four", "bravo three"}, first)
	second := ix.CandidatesFor("zzz qqq", 2)
	assert.Equal(t, first, second)
}

func TestCandidatesForFallbackKeepsNumericFilter(t *testing.T) {
	ix := Build([]string{"alpha one", "bravo two", "zebra crossing 42"})

	// no shared token (every source word is under the token length floor), but
	// the numeric window still narrows the fallback set to the exact match
	candidates := ix.CandidatesFor("zz 42 qq", 5)
	assert.Equal(t, []string{"zebra crossing 42"}, candidates)
}

func TestCandidatesForEntityTruncation(t *testing.T) {
	ix := Build([]string{
		"game alpha tonight",
		"Lakers game seven",
	})
	candidates := ix.CandidatesFor("Lakers game tonight", 1)
	assert.Equal(t, []string{"Lakers game seven"}, candidates)
}

func TestCandidatesForEmptyIndex(t *testing.T) {
	ix := Build(nil)
	assert.Nil(t, ix.CandidatesFor("anything", 5))
}
