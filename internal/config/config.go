// Package config carries the fee, risk, and matching parameters for a
// detection pass. Settings are plain values handed to each component: two
// concurrent passes with different risk limits never share state.
package config

import (
	"os"
	"strconv"
)

// Fees holds per-venue trading cost assumptions.
type Fees struct {
	TakerBPS float64
}

// Risk bounds position sizing and filters marginal opportunities.
type Risk struct {
	MaxNotionalPerLeg float64
	MinProfitUSD      float64
	SlippageBPS       float64
}

// Matching tunes the event matcher.
type Matching struct {
	Threshold    float64 // lexical similarity floor
	MinCosine    float64 // embedding similarity floor
	CandidateCap int
	TopK         int
}

// Settings is the full configuration bundle, read-only during a pass.
type Settings struct {
	Fees     Fees
	Risk     Risk
	Matching Matching
}

// Default returns the stock parameters.
func Default() Settings {
	return Settings{
		Fees: Fees{TakerBPS: 20},
		Risk: Risk{
			MaxNotionalPerLeg: 500,
			MinProfitUSD:      2.0,
			SlippageBPS:       10,
		},
		Matching: Matching{
			Threshold:    0.72,
			MinCosine:    0.82,
			CandidateCap: 800,
			TopK:         3,
		},
	}
}

// FromEnv returns Default overridden by environment variables where set.
func FromEnv() Settings {
	s := Default()
	s.Fees.TakerBPS = envFloat("TAKER_FEE_BPS", s.Fees.TakerBPS)
	s.Risk.MaxNotionalPerLeg = envFloat("MAX_NOTIONAL_PER_LEG", s.Risk.MaxNotionalPerLeg)
	s.Risk.MinProfitUSD = envFloat("MIN_PROFIT_USD", s.Risk.MinProfitUSD)
	s.Risk.SlippageBPS = envFloat("SLIPPAGE_BPS", s.Risk.SlippageBPS)
	s.Matching.Threshold = envFloat("SIMILARITY_THRESHOLD", s.Matching.Threshold)
	s.Matching.MinCosine = envFloat("MIN_COSINE", s.Matching.MinCosine)
	s.Matching.CandidateCap = envInt("CANDIDATE_CAP", s.Matching.CandidateCap)
	s.Matching.TopK = envInt("MATCH_TOP_K", s.Matching.TopK)
	return s
}

// TotalCostBPS is the combined fee and slippage buffer applied to both legs.
func (s Settings) TotalCostBPS() float64 {
	return s.Fees.TakerBPS + s.Risk.SlippageBPS
}

func envFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}
