package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestMatchNormalizedEquivalents(t *testing.T) {
	m := New(Config{})
	sources := []string{"Will BTC close above 100k in 2025?"}
	targets := []string{"will btc close above 100k in 2025"}

	got := m.BestMatch(sources, targets)
	require.Len(t, got, 1)
	assert.Equal(t, targets[0], got[sources[0]])
}

func TestBestMatchBelowThreshold(t *testing.T) {
	m := New(Config{})
	got := m.BestMatch(
		[]string{"Will the Fed cut rates?"},
		[]string{"Fed budget deficit grows"},
	)
	assert.Empty(t, got)
}

func TestAliasForcesMatch(t *testing.T) {
	m := New(Config{
		Aliases: map[string]string{
			"rate decision by fed": "FOMC December Outcome",
		},
	})
	got := m.BestMatch(
		[]string{"rate decision by fed"},
		[]string{"FOMC December Outcome"},
	)
	require.Len(t, got, 1)
	assert.Equal(t, "FOMC December Outcome", got["rate decision by fed"])
}

func TestAliasMatchesWithoutTokenOverlap(t *testing.T) {
	m := New(Config{
		Aliases: map[string]string{
			"rate decision by fed": "FOMC December Outcome",
		},
	})

	// the second target shares tokens with the source, so the no-overlap
	// fallback never fires; the aliased target shares none and must still win
	got := m.BestMatch(
		[]string{"rate decision by fed"},
		[]string{"FOMC December Outcome", "rate decision timing poll"},
	)
	require.Len(t, got, 1)
	assert.Equal(t, "FOMC December Outcome", got["rate decision by fed"])
}

func TestAliasDoesNotBypassNumericGuard(t *testing.T) {
	m := New(Config{
		Aliases: map[string]string{
			"election 2024": "vote 2028",
		},
	})
	got := m.BestMatch([]string{"election 2024"}, []string{"vote 2028"})
	assert.Empty(t, got)
}

func TestEntityGuardRejectsDisjointSubjects(t *testing.T) {
	m := New(Config{})
	got := m.BestMatch(
		[]string{"Will Alice win the race in 2025?"},
		[]string{"Will Bob win the race in 2025?"},
	)
	assert.Empty(t, got)
}

func TestSearchActorSubjectGuard(t *testing.T) {
	m := New(Config{})

	// same template, different person: near-identical score but rejected
	got := m.BestMatch(
		[]string{"Year in Search 2025: Will Pedro Pascal be the top searched actor?"},
		[]string{"Year in Search 2025: Will Glen Powell be the top searched actor?"},
	)
	assert.Empty(t, got)

	// same subject on both sides passes
	got = m.BestMatch(
		[]string{"Year in Search 2025: Will Pedro Pascal be the top actor?"},
		[]string{"year in search 2025: will pedro pascal be the top actor"},
	)
	assert.Len(t, got, 1)
}

func TestTopK(t *testing.T) {
	m := New(Config{})
	sources := []string{"Will BTC close above 100k in 2025?"}
	targets := []string{
		"will btc close above 100k in 2025",
		"BTC closes above 100k in 2025",
		"BTC to finish 2025 above 100k",
		"Champions League winner 2026",
	}

	got := m.TopK(sources, targets, 2, 0.3)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 2)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Similarity, got[i].Similarity)
	}
	assert.Contains(t, got[0].EventKey, " <-> ")
}

func TestProgressPanicIsolated(t *testing.T) {
	m := New(Config{
		Progress: func(done, total int) {
			panic("sink failure")
		},
	})
	assert.NotPanics(t, func() {
		m.BestMatch([]string{"alpha event one"}, []string{"alpha event one"})
	})
}

func TestProgressReported(t *testing.T) {
	var calls [][2]int
	m := New(Config{
		Progress: func(done, total int) {
			calls = append(calls, [2]int{done, total})
		},
	})
	m.BestMatch([]string{"one event", "two event", "three event"}, []string{"one event"})

	// final call always fires even under the reporting interval
	require.NotEmpty(t, calls)
	assert.Equal(t, [2]int{3, 3}, calls[len(calls)-1])
}
