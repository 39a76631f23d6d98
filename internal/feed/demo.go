package feed

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/hetulpatel/polykalshi/internal/market"
)

// demoEvents are shared across both demo venues so exact-key detection has
// something to pair.
var demoEvents = []string{
	"US CPI YoY Oct 2025 >= 3.0?",
	"Will Fed cut rates in Dec 2025?",
	"BTC to close > $100k in 2025?",
}

// DemoFeed produces synthetic YES/NO quote pairs for offline runs and tests.
// A fixed seed makes the snapshot deterministic.
type DemoFeed struct {
	exchange market.Exchange
	seed     int64
}

func NewDemoFeed(exchange market.Exchange, seed int64) *DemoFeed {
	return &DemoFeed{exchange: exchange, seed: seed}
}

func (f *DemoFeed) Name() string {
	return fmt.Sprintf("%s-demo", f.exchange)
}

func (f *DemoFeed) Fetch(_ context.Context) ([]market.Quote, error) {
	rng := rand.New(rand.NewSource(f.seed))
	quotes := make([]market.Quote, 0, 2*len(demoEvents))

	for idx, event := range demoEvents {
		base := 0.2 + 0.6*rng.Float64()
		skew := -0.05 + 0.1*rng.Float64()
		yesPrice := clipPrice(base + skew)
		noPrice := clipPrice(1 - yesPrice)
		size := 50 + 250*rng.Float64()

		quotes = append(quotes,
			market.Quote{
				Exchange: f.exchange,
				MarketID: fmt.Sprintf("%s-%d-YES", f.exchange, idx),
				Event:    event,
				Outcome:  market.OutcomeYes,
				Price:    yesPrice,
				Size:     size,
			},
			market.Quote{
				Exchange: f.exchange,
				MarketID: fmt.Sprintf("%s-%d-NO", f.exchange, idx),
				Event:    event,
				Outcome:  market.OutcomeNo,
				Price:    noPrice,
				Size:     size,
			},
		)
	}
	return quotes, nil
}

func clipPrice(p float64) float64 {
	return math.Max(0.01, math.Min(0.99, p))
}
