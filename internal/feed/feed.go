// Package feed defines the quote source abstraction the scanner consumes.
// Venue-specific clients (kalshi, polymarket) and the built-in demo source
// implement it.
package feed

import (
	"context"
	"time"

	"github.com/hetulpatel/polykalshi/internal/logging"
	"github.com/hetulpatel/polykalshi/internal/market"
)

// Feed produces a fresh snapshot of per-outcome quotes for one venue.
type Feed interface {
	Name() string
	Fetch(ctx context.Context) ([]market.Quote, error)
}

// RunLoop polls a feed at the given interval and hands each snapshot to
// handleFn. Fetch and handler errors are logged and the loop continues; a
// failing cycle degrades to "no data this cycle".
func RunLoop(ctx context.Context, f Feed, interval time.Duration, handleFn func(context.Context, []market.Quote) error) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		quotes, err := f.Fetch(ctx)
		if err != nil {
			logging.Errorf("[%s] fetch failed: %v", f.Name(), err)
		} else if handleFn != nil && len(quotes) > 0 {
			if err := handleFn(ctx, quotes); err != nil {
				logging.Errorf("[%s] handler error: %v", f.Name(), err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
