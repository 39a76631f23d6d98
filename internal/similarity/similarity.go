// Package similarity scores event titles. The lexical ratio is a
// longest-matching-blocks sequence ratio over normalized text, which trades
// recall on heavily reordered phrasing for precision on near-identical titles.
package similarity

import (
	"math"

	"github.com/hetulpatel/polykalshi/internal/text"
)

// Ratio returns a similarity in [0,1] between two titles after normalization.
// 1.0 means the normalized texts are identical. The result is symmetric:
// arguments are ordered canonically before matching.
func Ratio(a, b string) float64 {
	na := []rune(text.Normalize(a))
	nb := []rune(text.Normalize(b))
	if len(na) == 0 && len(nb) == 0 {
		return 1.0
	}
	if len(na) == 0 || len(nb) == 0 {
		return 0.0
	}
	// Block matching prefers blocks in the first sequence; pinning the order
	// makes Ratio(a,b) == Ratio(b,a) hold exactly.
	if string(na) > string(nb) {
		na, nb = nb, na
	}
	m := newBlockMatcher(na, nb)
	matched := m.matchedSize(0, len(na), 0, len(nb))
	return 2.0 * float64(matched) / float64(len(na)+len(nb))
}

// Cosine computes cosine similarity over equal-length vectors. Vectors from
// the embedding layer are unit-norm, so this reduces to a dot product; the
// norms are still computed to stay safe on raw inputs. Returns 0 when either
// vector is empty or zero-norm.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// blockMatcher finds the total size of the longest matching blocks between
// two rune sequences, recursing on the unmatched regions either side of each
// block.
type blockMatcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newBlockMatcher(a, b []rune) *blockMatcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	return &blockMatcher{a: a, b: b, b2j: b2j}
}

func (m *blockMatcher) matchedSize(alo, ahi, blo, bhi int) int {
	besti, bestj, bestSize := m.longestMatch(alo, ahi, blo, bhi)
	if bestSize == 0 {
		return 0
	}
	total := bestSize
	total += m.matchedSize(alo, besti, blo, bestj)
	total += m.matchedSize(besti+bestSize, ahi, bestj+bestSize, bhi)
	return total
}

func (m *blockMatcher) longestMatch(alo, ahi, blo, bhi int) (besti, bestj, bestSize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestSize {
				besti, bestj, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}
	return besti, bestj, bestSize
}
