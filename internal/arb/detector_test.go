package arb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/polykalshi/internal/config"
	"github.com/hetulpatel/polykalshi/internal/market"
	"github.com/hetulpatel/polykalshi/internal/matcher"
)

func quote(ex market.Exchange, id, event string, outcome market.Outcome, price, size float64) market.Quote {
	return market.Quote{
		Exchange: ex,
		MarketID: id,
		Event:    event,
		Outcome:  outcome,
		Price:    price,
		Size:     size,
	}
}

func TestComputeEdgeBPS(t *testing.T) {
	assert.InDelta(t, 0.0, ComputeEdgeBPS(0.5, 0.5), 1e-9)
	assert.InDelta(t, 1500.0, ComputeEdgeBPS(0.40, 0.55), 1e-6)
	assert.InDelta(t, -2500.0, ComputeEdgeBPS(0.60, 0.35), 1e-6)
}

func TestDetectArbs(t *testing.T) {
	d := NewDetector(config.Default())

	kalshiQuotes := []market.Quote{
		quote(market.ExchangeKalshi, "K1", "Fed cuts rates in Dec", market.OutcomeYes, 0.40, 100),
	}
	polyQuotes := []market.Quote{
		quote(market.ExchangePolymarket, "P1", "Fed cuts rates in Dec", market.OutcomeNo, 0.55, 100),
	}

	arbs := d.DetectArbs(kalshiQuotes, polyQuotes)
	require.Len(t, arbs, 1)

	opp := arbs[0]
	assert.Equal(t, "fed cuts rates in dec", opp.EventKey)
	assert.Equal(t, "K1", opp.Long.MarketID)
	assert.Equal(t, "P1", opp.Short.MarketID)
	// raw 1500bps less 20bps taker and 10bps slippage
	assert.InDelta(t, 1470.0, opp.EdgeBPS, 1e-6)
	// min(100*0.40, 100*0.45, 500)
	assert.InDelta(t, 40.0, opp.MaxNotional, 1e-6)
	assert.InDelta(t, 5.88, opp.GrossProfitUSD, 1e-6)
}

func TestDetectArbsNoEdge(t *testing.T) {
	d := NewDetector(config.Default())

	arbs := d.DetectArbs(
		[]market.Quote{quote(market.ExchangeKalshi, "K1", "Fed cuts rates", market.OutcomeYes, 0.60, 100)},
		[]market.Quote{quote(market.ExchangePolymarket, "P1", "Fed cuts rates", market.OutcomeNo, 0.35, 100)},
	)
	assert.Empty(t, arbs)
}

func TestDetectArbsMinProfitFilter(t *testing.T) {
	d := NewDetector(config.Default())

	// same edge as the profitable case but size caps profit below $2
	arbs := d.DetectArbs(
		[]market.Quote{quote(market.ExchangeKalshi, "K1", "Fed cuts rates", market.OutcomeYes, 0.40, 10)},
		[]market.Quote{quote(market.ExchangePolymarket, "P1", "Fed cuts rates", market.OutcomeNo, 0.55, 10)},
	)
	assert.Empty(t, arbs)
}

func TestDetectArbsIgnoresUntradableQuotes(t *testing.T) {
	d := NewDetector(config.Default())

	arbs := d.DetectArbs(
		[]market.Quote{quote(market.ExchangeKalshi, "K1", "Fed cuts rates", market.OutcomeYes, 0, 100)},
		[]market.Quote{quote(market.ExchangePolymarket, "P1", "Fed cuts rates", market.OutcomeNo, 0.55, 100)},
	)
	assert.Empty(t, arbs)
}

func TestDetectArbsBothDirections(t *testing.T) {
	d := NewDetector(config.Default())

	kalshiQuotes := []market.Quote{
		quote(market.ExchangeKalshi, "K1", "Fed cuts rates", market.OutcomeYes, 0.40, 100),
		quote(market.ExchangeKalshi, "K2", "Fed cuts rates", market.OutcomeNo, 0.55, 100),
	}
	polyQuotes := []market.Quote{
		quote(market.ExchangePolymarket, "P1", "Fed cuts rates", market.OutcomeYes, 0.40, 100),
		quote(market.ExchangePolymarket, "P2", "Fed cuts rates", market.OutcomeNo, 0.55, 100),
	}

	arbs := d.DetectArbs(kalshiQuotes, polyQuotes)
	assert.Len(t, arbs, 2)
}

func TestDetectArbsIdempotent(t *testing.T) {
	d := NewDetector(config.Default())

	kalshiQuotes := []market.Quote{
		quote(market.ExchangeKalshi, "K1", "Fed cuts rates", market.OutcomeYes, 0.40, 100),
	}
	polyQuotes := []market.Quote{
		quote(market.ExchangePolymarket, "P1", "Fed cuts rates", market.OutcomeNo, 0.55, 100),
	}

	first := d.DetectArbs(kalshiQuotes, polyQuotes)
	second := d.DetectArbs(kalshiQuotes, polyQuotes)
	assert.Equal(t, first, second)
}

func TestDetectTwoBuyArbs(t *testing.T) {
	d := NewDetector(config.Default())

	arbs := d.DetectTwoBuyArbs(
		[]market.Quote{quote(market.ExchangeKalshi, "K1", "Fed cuts rates", market.OutcomeYes, 0.45, 100)},
		[]market.Quote{quote(market.ExchangePolymarket, "P1", "Fed cuts rates", market.OutcomeNo, 0.50, 100)},
	)
	require.Len(t, arbs, 1)

	opp := arbs[0]
	assert.InDelta(t, 0.95, opp.SumPrice, 1e-9)
	// 1 - 0.95 - 0.003*0.95
	assert.InDelta(t, 471.5, opp.EdgeBPS, 1e-6)
	assert.InDelta(t, 100.0, opp.Contracts, 1e-9)
	assert.InDelta(t, 4.715, opp.GrossProfitUSD, 1e-6)
}

func TestDetectTwoBuyArbsNoEdge(t *testing.T) {
	d := NewDetector(config.Default())

	arbs := d.DetectTwoBuyArbs(
		[]market.Quote{quote(market.ExchangeKalshi, "K1", "Fed cuts rates", market.OutcomeYes, 0.55, 100)},
		[]market.Quote{quote(market.ExchangePolymarket, "P1", "Fed cuts rates", market.OutcomeNo, 0.50, 100)},
	)
	assert.Empty(t, arbs)
}

func TestDetectTwoBuyArbsNotionalCap(t *testing.T) {
	settings := config.Default()
	settings.Risk.MaxNotionalPerLeg = 10
	settings.Risk.MinProfitUSD = 0.5

	d := NewDetector(settings)
	arbs := d.DetectTwoBuyArbs(
		[]market.Quote{quote(market.ExchangeKalshi, "K1", "Fed cuts rates", market.OutcomeYes, 0.45, 1000)},
		[]market.Quote{quote(market.ExchangePolymarket, "P1", "Fed cuts rates", market.OutcomeNo, 0.50, 1000)},
	)
	require.Len(t, arbs, 1)
	// 10 / 0.50 caps tighter than 10 / 0.45 or either size
	assert.InDelta(t, 20.0, arbs[0].Contracts, 1e-9)
}

func TestDetectArbsWithMatcher(t *testing.T) {
	d := NewDetector(config.Default())
	m := matcher.New(matcher.Config{})

	// different raw titles, identical after normalization; exact keys miss
	kalshiQuotes := []market.Quote{
		quote(market.ExchangeKalshi, "K1", "Will BTC close above 100k in 2025?", market.OutcomeYes, 0.40, 100),
	}
	polyQuotes := []market.Quote{
		quote(market.ExchangePolymarket, "P1", "will btc close above 100k in 2025", market.OutcomeNo, 0.55, 100),
	}

	assert.Empty(t, d.DetectArbs(kalshiQuotes, polyQuotes))

	arbs := d.DetectArbsWithMatcher(kalshiQuotes, polyQuotes, m)
	require.Len(t, arbs, 1)
	assert.Equal(t, market.PairKey("Will BTC close above 100k in 2025?", "will btc close above 100k in 2025"), arbs[0].EventKey)
	assert.InDelta(t, 1470.0, arbs[0].EdgeBPS, 1e-6)
}

func TestDetectArbsWithMatcherSkipsExactKeyPairs(t *testing.T) {
	d := NewDetector(config.Default())
	m := matcher.New(matcher.Config{})

	// identical titles: the exact tier prices this pair, the fuzzy tier
	// must not emit the same legs again under a composite key
	kalshiQuotes := []market.Quote{
		quote(market.ExchangeKalshi, "K1", "Fed cuts rates in Dec", market.OutcomeYes, 0.40, 100),
	}
	polyQuotes := []market.Quote{
		quote(market.ExchangePolymarket, "P1", "Fed cuts rates in Dec", market.OutcomeNo, 0.55, 100),
	}

	require.Len(t, d.DetectArbs(kalshiQuotes, polyQuotes), 1)
	assert.Empty(t, d.DetectArbsWithMatcher(kalshiQuotes, polyQuotes, m))
}
