// Package matcher pairs semantically equivalent events across venues. It
// combines the candidate index, a similarity provider, and numeric/entity
// guards; guards exist because a mismatched pair treated as arbitrage is a
// far worse failure than a missed pair.
package matcher

import (
	"sort"

	"github.com/hetulpatel/polykalshi/internal/index"
	"github.com/hetulpatel/polykalshi/internal/logging"
	"github.com/hetulpatel/polykalshi/internal/market"
	"github.com/hetulpatel/polykalshi/internal/text"
)

// progressInterval bounds how often the progress sink fires.
const progressInterval = 50

// ProgressFunc receives coarse-grained matching progress. Invocations are
// fire-and-forget: panics are swallowed and never fail the matching pass.
type ProgressFunc func(done, total int)

// Config controls a Matcher.
type Config struct {
	// Aliases force similarity 1.0 for a named source -> target pair. The
	// numeric and entity guards still apply: aliases override the score, not
	// the guards, so a copy-paste alias error cannot produce false arbitrage.
	Aliases      map[string]string
	Provider     Provider
	CandidateCap int
	Progress     ProgressFunc
	Logger       *Logger
}

// Matcher holds matching configuration. It keeps no mutable state across
// calls; every method operates on the arguments alone.
type Matcher struct {
	aliases      map[string]string
	provider     Provider
	candidateCap int
	progress     ProgressFunc
	logger       *Logger
}

// New builds a matcher, defaulting to the lexical provider.
func New(cfg Config) *Matcher {
	provider := cfg.Provider
	if provider == nil {
		provider = NewLexicalProvider(DefaultThreshold)
	}
	candidateCap := cfg.CandidateCap
	if candidateCap <= 0 {
		candidateCap = index.DefaultCap
	}
	aliases := make(map[string]string, len(cfg.Aliases))
	for src, dst := range cfg.Aliases {
		aliases[market.EventKey(src)] = market.EventKey(dst)
	}
	return &Matcher{
		aliases:      aliases,
		provider:     provider,
		candidateCap: candidateCap,
		progress:     cfg.Progress,
		logger:       cfg.Logger,
	}
}

// BestMatch maps each source title to its single best admissible target with
// score at or above the provider threshold. Candidates come from the index,
// plus the aliased target when one is configured; an alias must never depend
// on token overlap to be scored. Sources with no admissible target are absent
// from the result; an empty map is a normal outcome.
func (m *Matcher) BestMatch(sources, targets []string) map[string]string {
	ix := index.Build(targets)
	out := make(map[string]string)

	tgtByKey := m.targetKeyMap(targets)

	for i, src := range sources {
		feats := newSourceFeatures(src)
		bestScore := -1.0
		bestTarget := ""
		for _, tgt := range m.candidates(ix, tgtByKey, src) {
			if !m.admissible(feats, tgt) {
				continue
			}
			score := m.scorePair(src, tgt)
			if score > bestScore {
				bestScore = score
				bestTarget = tgt
			}
		}
		if bestTarget != "" && bestScore >= m.provider.Threshold() {
			out[src] = bestTarget
			if m.logger != nil {
				m.logger.LogMatch(src, bestTarget, bestScore, m.provider.Threshold())
			}
		}
		m.reportProgress(i+1, len(sources))
	}
	return out
}

// TopK keeps up to k admissible candidates per source at or above minScore,
// for diagnostics and embedding-assisted flows. Candidates are ordered by
// descending score, ties broken by target title.
func (m *Matcher) TopK(sources, targets []string, k int, minScore float64) []market.MatchCandidate {
	if k <= 0 {
		k = 3
	}
	ix := index.Build(targets)
	tgtByKey := m.targetKeyMap(targets)
	var out []market.MatchCandidate

	for i, src := range sources {
		feats := newSourceFeatures(src)
		type scored struct {
			target string
			score  float64
		}
		var kept []scored
		for _, tgt := range m.candidates(ix, tgtByKey, src) {
			if !m.admissible(feats, tgt) {
				continue
			}
			score := m.scorePair(src, tgt)
			if score >= minScore {
				kept = append(kept, scored{target: tgt, score: score})
			}
		}
		sort.Slice(kept, func(a, b int) bool {
			if kept[a].score != kept[b].score {
				return kept[a].score > kept[b].score
			}
			return kept[a].target < kept[b].target
		})
		if len(kept) > k {
			kept = kept[:k]
		}
		for _, c := range kept {
			out = append(out, market.MatchCandidate{
				EventKey:   market.PairKey(src, c.target),
				Similarity: c.score,
			})
		}
		m.reportProgress(i+1, len(sources))
	}
	return out
}

// targetKeyMap indexes targets by event key for alias resolution. Returns nil
// when no aliases are configured.
func (m *Matcher) targetKeyMap(targets []string) map[string]string {
	if len(m.aliases) == 0 {
		return nil
	}
	out := make(map[string]string, len(targets))
	for _, t := range targets {
		out[market.EventKey(t)] = t
	}
	return out
}

// candidates returns the index hits for src, with the aliased target appended
// when it exists in the target set and the index did not already surface it.
func (m *Matcher) candidates(ix *index.Index, tgtByKey map[string]string, src string) []string {
	cands := ix.CandidatesFor(src, m.candidateCap)
	dst, ok := m.aliases[market.EventKey(src)]
	if !ok {
		return cands
	}
	title, ok := tgtByKey[dst]
	if !ok {
		return cands
	}
	for _, c := range cands {
		if c == title {
			return cands
		}
	}
	return append(cands, title)
}

// Threshold exposes the provider's acceptance floor.
func (m *Matcher) Threshold() float64 {
	return m.provider.Threshold()
}

// sourceFeatures caches per-source guard inputs so candidate loops do not
// re-extract them.
type sourceFeatures struct {
	title      string
	numbers    []int
	entities   map[string]struct{}
	subject    string
	hasSubject bool
}

func newSourceFeatures(title string) sourceFeatures {
	subject, hasSubject := text.SearchActorSubject(title)
	return sourceFeatures{
		title:      title,
		numbers:    text.NumbersWindow(title),
		entities:   text.EntityTokens(title),
		subject:    subject,
		hasSubject: hasSubject,
	}
}

func (m *Matcher) admissible(src sourceFeatures, target string) bool {
	if !text.NumbersConsistent(src.numbers, text.NumbersWindow(target)) {
		return false
	}

	tgtSubject, tgtHasSubject := text.SearchActorSubject(target)
	if src.hasSubject || tgtHasSubject {
		// Templated questions differing only by a person's name score nearly
		// identical; require both sides to expose the same subject.
		if !src.hasSubject || !tgtHasSubject || src.subject != tgtSubject {
			return false
		}
	}

	tgtEntities := text.EntityTokens(target)
	if len(src.entities) > 0 && len(tgtEntities) > 0 &&
		text.EntityOverlap(src.entities, tgtEntities) == 0 {
		return false
	}
	return true
}

func (m *Matcher) scorePair(source, target string) float64 {
	if dst, ok := m.aliases[market.EventKey(source)]; ok && dst == market.EventKey(target) {
		return 1.0
	}
	return m.provider.Score(source, target)
}

func (m *Matcher) reportProgress(done, total int) {
	if m.progress == nil {
		return
	}
	if done%progressInterval != 0 && done != total {
		return
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Debugf("[matcher] progress sink panic: %v", r)
			}
		}()
		m.progress(done, total)
	}()
}
