package matcher

import (
	"github.com/hetulpatel/polykalshi/internal/similarity"
)

// Provider scores a source/target title pair. Two variants exist: lexical
// sequence matching and cosine over precomputed embeddings. The matcher treats
// the provider as a black box; guards are applied outside of it.
type Provider interface {
	Score(source, target string) float64
	Threshold() float64
}

const (
	// DefaultThreshold is the acceptance floor for lexical similarity.
	DefaultThreshold = 0.72
	// DefaultMinCosine is the floor for embedding similarity; embeddings
	// separate scores more sharply, hence the higher bar.
	DefaultMinCosine = 0.82
)

type lexicalProvider struct {
	threshold float64
}

// NewLexicalProvider scores by normalized sequence-matching ratio.
func NewLexicalProvider(threshold float64) Provider {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &lexicalProvider{threshold: threshold}
}

func (p *lexicalProvider) Score(source, target string) float64 {
	return similarity.Ratio(source, target)
}

func (p *lexicalProvider) Threshold() float64 {
	return p.threshold
}

type vectorProvider struct {
	vectors   map[string][]float32
	minCosine float64
}

// NewVectorProvider scores by cosine over unit-norm embeddings keyed by the
// exact title text. Titles with no vector score 0 and fall below any sensible
// threshold; callers that could not embed at all should use the lexical
// provider instead.
func NewVectorProvider(vectors map[string][]float32, minCosine float64) Provider {
	if minCosine <= 0 || minCosine > 1 {
		minCosine = DefaultMinCosine
	}
	return &vectorProvider{vectors: vectors, minCosine: minCosine}
}

func (p *vectorProvider) Score(source, target string) float64 {
	va, okA := p.vectors[source]
	vb, okB := p.vectors[target]
	if !okA || !okB {
		return 0
	}
	return similarity.Cosine(va, vb)
}

func (p *vectorProvider) Threshold() float64 {
	return p.minCosine
}
