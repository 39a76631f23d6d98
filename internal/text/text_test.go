package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "will btc hit 100k", Normalize("  Will “BTC” hit $100K?  "))
	assert.Equal(t, "it s done", Normalize("It’s done"))
	assert.Equal(t, "", Normalize("  ...  "))
	assert.Equal(t, "a b c", Normalize("a\t b\n  c"))
}

func TestNumbersWindow(t *testing.T) {
	assert.Equal(t, []int{5, 2024}, NumbersWindow("Election Nov 5, 2024"))
	assert.Nil(t, NumbersWindow("no digits here"))
	// runs longer than four digits split greedily
	assert.Equal(t, []int{1234, 5}, NumbersWindow("12345"))
}

func TestNumbersConsistent(t *testing.T) {
	assert.True(t, NumbersConsistent(nil, []int{2024}))
	assert.True(t, NumbersConsistent([]int{2024}, nil))
	assert.True(t, NumbersConsistent([]int{3, 2025}, []int{3, 2025}))
	assert.False(t, NumbersConsistent([]int{2024}, []int{2028}))
	assert.False(t, NumbersConsistent([]int{3, 2025}, []int{2025, 3}))
	assert.False(t, NumbersConsistent([]int{3}, []int{3, 2025}))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"will", "the", "fed", "cut", "rates", "dec"}, Tokens("Will the Fed cut rates in Dec?"))
	assert.Nil(t, Tokens("a b c"))
	// duplicates collapse, first appearance wins
	assert.Equal(t, []string{"btc", "above", "100"}, Tokens("BTC above 100, BTC above 100"))
}

func TestEntityTokens(t *testing.T) {
	ents := EntityTokens("Will Alice defeat Bob in November 2025?")
	assert.Contains(t, ents, "alice")
	assert.Contains(t, ents, "bob")
	assert.NotContains(t, ents, "will")
	assert.NotContains(t, ents, "november")

	assert.Nil(t, EntityTokens("all lowercase title"))
	assert.Nil(t, EntityTokens("Will December January"))
}

func TestEntityOverlap(t *testing.T) {
	a := EntityTokens("Lakers vs Celtics")
	b := EntityTokens("Celtics championship odds")
	assert.Equal(t, 1, EntityOverlap(a, b))
	assert.Equal(t, 0, EntityOverlap(a, nil))
	assert.Equal(t, 0, EntityOverlap(nil, b))
}

func TestSearchActorSubject(t *testing.T) {
	subject, ok := SearchActorSubject("Year in Search 2025: Will Pedro Pascal be the top searched actor?")
	assert.True(t, ok)
	assert.Equal(t, "pedro pascal", subject)

	_, ok = SearchActorSubject("Will Pedro Pascal win an Oscar?")
	assert.False(t, ok)

	_, ok = SearchActorSubject("Year in Search 2025: top trending topics")
	assert.False(t, ok)
}
