package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatioIdentical(t *testing.T) {
	assert.InDelta(t, 1.0, Ratio("Will the Fed cut rates?", "Will the Fed cut rates?"), 1e-12)
	// differences erased by normalization still score 1.0
	assert.InDelta(t, 1.0, Ratio("Hello, World!", "hello world"), 1e-12)
}

func TestRatioEmpty(t *testing.T) {
	assert.InDelta(t, 1.0, Ratio("", ""), 1e-12)
	assert.InDelta(t, 1.0, Ratio("!!!", "???"), 1e-12)
	assert.InDelta(t, 0.0, Ratio("something", ""), 1e-12)
	assert.InDelta(t, 0.0, Ratio("", "something"), 1e-12)
}

func TestRatioKnownValue(t *testing.T) {
	// longest block "bcd" over sequences of length 4 each: 2*3/8
	assert.InDelta(t, 0.75, Ratio("abcd", "bcde"), 1e-12)
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Will BTC close above 100k in 2025?", "BTC above 100k by end of 2025"},
		{"Fed cuts rates in December", "Will the Fed cut rates in Dec?"},
		{"abcd", "bcde"},
	}
	for _, p := range pairs {
		assert.Equal(t, Ratio(p[0], p[1]), Ratio(p[1], p[0]), "pair %q / %q", p[0], p[1])
	}
}

func TestRatioBounds(t *testing.T) {
	score := Ratio("US CPI YoY Oct 2025 >= 3.0?", "CPI year over year above 3 in October 2025")
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	// scale invariance
	assert.InDelta(t, 1.0, Cosine([]float32{2, 2}, []float32{5, 5}), 1e-6)
}

func TestCosineDegenerate(t *testing.T) {
	assert.Zero(t, Cosine(nil, []float32{1}))
	assert.Zero(t, Cosine([]float32{1, 2}, []float32{1}))
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 1}))
}
