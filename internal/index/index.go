// Package index builds inverted token and numeric-window indexes over one
// venue's event titles so the matcher scores a bounded candidate set instead
// of every source/target combination.
package index

import (
	"fmt"
	"sort"

	"github.com/hetulpatel/polykalshi/internal/text"
)

// DefaultCap bounds how many candidates a single lookup may return.
const DefaultCap = 800

// Index is an immutable candidate index over a set of target event titles.
type Index struct {
	targets []string         // unique, sorted for deterministic fallback order
	tokens  map[string][]int // token -> target positions, ascending
	numbers map[string][]int // numeric window key -> target positions, ascending
}

// Build deduplicates and indexes the given titles. The target list is sorted
// alphabetically so the no-token-overlap fallback slice is reproducible.
func Build(events []string) *Index {
	seen := make(map[string]struct{}, len(events))
	targets := make([]string, 0, len(events))
	for _, ev := range events {
		if _, ok := seen[ev]; ok {
			continue
		}
		seen[ev] = struct{}{}
		targets = append(targets, ev)
	}
	sort.Strings(targets)

	ix := &Index{
		targets: targets,
		tokens:  make(map[string][]int),
		numbers: make(map[string][]int),
	}
	for pos, ev := range targets {
		for _, tok := range text.Tokens(ev) {
			ix.tokens[tok] = append(ix.tokens[tok], pos)
		}
		if nums := text.NumbersWindow(ev); len(nums) > 0 {
			key := windowKey(nums)
			ix.numbers[key] = append(ix.numbers[key], pos)
		}
	}
	return ix
}

// Targets returns the indexed titles in their fixed order.
func (ix *Index) Targets() []string {
	return ix.targets
}

// Len reports the number of indexed titles.
func (ix *Index) Len() int {
	return len(ix.targets)
}

// CandidatesFor returns a bounded candidate subset for one source title:
// the union of token-index hits (or, with zero overlap, every target),
// hard-filtered by exact numeric-window equality when both the source and the
// index carry that window, then truncated to cap by entity-token overlap.
func (ix *Index) CandidatesFor(source string, limit int) []string {
	if limit <= 0 {
		limit = DefaultCap
	}
	if len(ix.targets) == 0 {
		return nil
	}

	hits := make(map[int]struct{})
	for _, tok := range text.Tokens(source) {
		for _, pos := range ix.tokens[tok] {
			hits[pos] = struct{}{}
		}
	}
	if len(hits) == 0 {
		// No shared token anywhere: consider every target, still subject to
		// the numeric filter and the cap below.
		for pos := range ix.targets {
			hits[pos] = struct{}{}
		}
	}

	if nums := text.NumbersWindow(source); len(nums) > 0 {
		if exact, ok := ix.numbers[windowKey(nums)]; ok {
			keep := make(map[int]struct{}, len(exact))
			for _, pos := range exact {
				if _, in := hits[pos]; in {
					keep[pos] = struct{}{}
				}
			}
			hits = keep
		}
	}
	if len(hits) == 0 {
		return nil
	}

	positions := make([]int, 0, len(hits))
	for pos := range hits {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	if len(positions) > limit {
		srcEnts := text.EntityTokens(source)
		// Stable sort over the already-ordered positions keeps ties
		// deterministic.
		sort.SliceStable(positions, func(i, j int) bool {
			return ix.entityScore(positions[i], srcEnts) > ix.entityScore(positions[j], srcEnts)
		})
		positions = positions[:limit]
	}

	out := make([]string, len(positions))
	for i, pos := range positions {
		out[i] = ix.targets[pos]
	}
	return out
}

func (ix *Index) entityScore(pos int, srcEnts map[string]struct{}) int {
	if len(srcEnts) == 0 {
		return 0
	}
	return text.EntityOverlap(srcEnts, text.EntityTokens(ix.targets[pos]))
}

func windowKey(nums []int) string {
	key := ""
	for i, n := range nums {
		if i > 0 {
			key += ","
		}
		key += fmt.Sprintf("%d", n)
	}
	return key
}
