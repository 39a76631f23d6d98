// Package validator runs the optional LLM post-filter over matcher output,
// pruning pairs that do not describe the same binary proposition before they
// reach the arbitrage detector.
package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hetulpatel/polykalshi/internal/cache"
	"github.com/hetulpatel/polykalshi/internal/hashutil"
	"github.com/hetulpatel/polykalshi/internal/llm"
	"github.com/hetulpatel/polykalshi/internal/logging"
)

const systemPrompt = "You are a strict validator for market title equivalence across two prediction-market exchanges. Decide if two titles describe the SAME underlying event proposition and direction (YES/NO orientation). Consider entities, dates, numbers, and resolution criteria. Respond only with JSON."

// Pair is one source/target title pairing to validate.
type Pair struct {
	Source string
	Target string
}

// Key returns the order-dependent digest used for verdict caching: the same
// titles in the same roles always resolve to the same cache entry.
func (p Pair) Key() string {
	return hashutil.HashStrings(strings.TrimSpace(p.Source), strings.TrimSpace(p.Target))
}

// Config controls the validator.
type Config struct {
	LLMClient    *llm.Client
	VerdictCache cache.VerdictCache
	SystemPrompt string
}

// Service validates title pairs via LLM, with verdict caching.
type Service struct {
	llm          *llm.Client
	cache        cache.VerdictCache
	systemPrompt string
}

// NewService creates a validator.
func NewService(cfg Config) (*Service, error) {
	if cfg.LLMClient == nil {
		return nil, fmt.Errorf("validator: llm client is required")
	}
	system := cfg.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = systemPrompt
	}
	return &Service{
		llm:          cfg.LLMClient,
		cache:        cfg.VerdictCache,
		systemPrompt: system,
	}, nil
}

// ValidatePairs returns a verdict per pair key. Cached verdicts are served
// without an LLM call; the remainder goes out in one batched prompt. Pairs the
// model fails to answer default to an unsafe verdict.
func (s *Service) ValidatePairs(ctx context.Context, pairs []Pair) (map[string]cache.PairVerdict, error) {
	if s == nil {
		return nil, fmt.Errorf("validator: service is nil")
	}
	out := make(map[string]cache.PairVerdict, len(pairs))

	var toQuery []Pair
	for _, p := range pairs {
		key := p.Key()
		if _, done := out[key]; done {
			continue
		}
		if s.cache != nil {
			if verdict, ok, err := s.cache.Get(ctx, key); err != nil {
				logging.Warnf("[validator] verdict cache get: %v", err)
			} else if ok {
				out[key] = verdict
				continue
			}
		}
		toQuery = append(toQuery, p)
	}
	if len(toQuery) == 0 {
		return out, nil
	}

	verdicts, err := s.queryBatch(ctx, toQuery)
	if err != nil {
		return nil, err
	}
	for i, p := range toQuery {
		verdict := verdicts[i]
		key := p.Key()
		out[key] = verdict
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, verdict); err != nil {
				logging.Warnf("[validator] verdict cache set: %v", err)
			}
		}
	}
	return out, nil
}

type promptItem struct {
	ID     int    `json:"id"`
	Source string `json:"kalshi"`
	Target string `json:"polymarket"`
}

type responseRow struct {
	ID                  int    `json:"id"`
	SameEvent           bool   `json:"same_event"`
	DirectionConsistent bool   `json:"direction_consistent"`
	Rationale           string `json:"rationale"`
}

type responseEnvelope struct {
	Results []responseRow `json:"results"`
}

func (s *Service) queryBatch(ctx context.Context, pairs []Pair) ([]cache.PairVerdict, error) {
	items := make([]promptItem, len(pairs))
	for i, p := range pairs {
		items[i] = promptItem{ID: i, Source: p.Source, Target: p.Target}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("validator: marshal pairs: %w", err)
	}

	userPrompt := strings.Join([]string{
		"Validate these pairs. Titles are similar but may differ in phrasing.",
		"Only mark same_event=true if a rational trader could hedge them as the same binary proposition.",
		"Return EXACTLY this JSON format:",
		`{"results": [{"id": 0, "same_event": true|false, "direction_consistent": true|false, "rationale": "short explanation"}]}`,
		"Pairs: " + string(itemsJSON),
	}, "\n")

	raw, err := s.llm.Complete(ctx, s.systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("validator: llm call: %w", err)
	}

	rows := parseRows(raw)
	byID := make(map[int]responseRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	verdicts := make([]cache.PairVerdict, len(pairs))
	for i := range pairs {
		row, ok := byID[i]
		if !ok {
			// Missing answers are unsafe by default; false negatives beat
			// false positives here.
			verdicts[i] = cache.PairVerdict{Rationale: "no verdict returned"}
			continue
		}
		verdicts[i] = cache.PairVerdict{
			SameEvent:           row.SameEvent,
			DirectionConsistent: row.DirectionConsistent,
			Rationale:           row.Rationale,
		}
	}
	return verdicts, nil
}

// parseRows tolerates code fences and leading prose around the JSON envelope.
func parseRows(raw string) []responseRow {
	raw = strings.TrimSpace(raw)
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	var envelope responseEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		logging.Warnf("[validator] unparseable response: %v", err)
		return nil
	}
	return envelope.Results
}
