package market

import (
	"fmt"
	"strings"
	"time"
)

// Exchange identifies the venue a quote belongs to.
type Exchange string

const (
	ExchangeKalshi     Exchange = "kalshi"
	ExchangePolymarket Exchange = "polymarket"
)

// Outcome is one side of a binary market.
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// BookLevel is a single price/size pair of order depth.
type BookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// Quote is a single-outcome top-of-book quote for a binary market.
// Quotes are value objects: produced fresh each fetch cycle, never mutated.
type Quote struct {
	Exchange Exchange    `json:"exchange"`
	MarketID string      `json:"market_id"`
	Event    string      `json:"event"`
	Outcome  Outcome     `json:"outcome"`
	Price    float64     `json:"price"` // USD in [0,1]
	Size     float64     `json:"size"`  // fillable contracts; notional = price * size
	EndDate  time.Time   `json:"end_date,omitzero"`
	Depth    []BookLevel `json:"depth,omitempty"`
}

// Tradable reports whether the quote carries an executable price and size.
func (q Quote) Tradable() bool {
	return q.Price > 0 && q.Price < 1 && q.Size > 0
}

// EventKey canonicalizes free-text event titles for joining across venues.
func EventKey(event string) string {
	return strings.ToLower(strings.TrimSpace(event))
}

// PairKey builds the composite "source <-> target" key used by match and arb records.
func PairKey(source, target string) string {
	return fmt.Sprintf("%s <-> %s", source, target)
}
