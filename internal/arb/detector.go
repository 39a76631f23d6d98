// Package arb converts matched quote pairs into fee- and slippage-adjusted
// opportunities. Two independent strategies are evaluated: cross-exchange
// long/short and two-buy. Both directions are tried per event; an event can
// yield zero, one, or two opportunities.
package arb

import (
	"math"

	"github.com/hetulpatel/polykalshi/internal/config"
	"github.com/hetulpatel/polykalshi/internal/market"
	"github.com/hetulpatel/polykalshi/internal/matcher"
)

const epsilon = 1e-9

// Detector computes opportunities under an explicit settings value. It holds
// no other state; a pass never mutates anything it reads.
type Detector struct {
	settings config.Settings
}

// NewDetector builds a detector for one configuration.
func NewDetector(settings config.Settings) *Detector {
	return &Detector{settings: settings}
}

// ComputeEdgeBPS returns the raw edge, in basis points, of holding YES at
// longPrice against NO at shortPrice. Zero when the implied total is exactly 1.
func ComputeEdgeBPS(longPrice, shortPrice float64) float64 {
	impliedTotal := longPrice + (1.0 - shortPrice)
	return (1.0 - impliedTotal) * 10000.0
}

// outcomeBook indexes quotes by event key then outcome. Later quotes for the
// same key/outcome replace earlier ones, matching per-cycle snapshot semantics.
type outcomeBook map[string]map[market.Outcome]market.Quote

func buildBook(quotes []market.Quote) outcomeBook {
	book := make(outcomeBook)
	for _, q := range quotes {
		key := market.EventKey(q.Event)
		if book[key] == nil {
			book[key] = make(map[market.Outcome]market.Quote)
		}
		book[key][q.Outcome] = q
	}
	return book
}

// DetectArbs finds cross-exchange opportunities over exact event-key matches.
// Quotes with a missing price or size contribute nothing; an empty result is a
// normal outcome, not an error.
func (d *Detector) DetectArbs(kalshiQuotes, polyQuotes []market.Quote) []market.CrossExchangeArb {
	kalshi := buildBook(kalshiQuotes)
	poly := buildBook(polyQuotes)

	var arbs []market.CrossExchangeArb
	for key, k := range kalshi {
		p, ok := poly[key]
		if !ok {
			continue
		}
		arbs = d.appendCrossArbs(arbs, key, k, p)
	}
	return arbs
}

// appendCrossArbs evaluates both outcome assignments for one matched event.
func (d *Detector) appendCrossArbs(arbs []market.CrossExchangeArb, key string, a, b map[market.Outcome]market.Quote) []market.CrossExchangeArb {
	if arb, ok := d.crossArb(key, a[market.OutcomeYes], b[market.OutcomeNo]); ok {
		arbs = append(arbs, arb)
	}
	if arb, ok := d.crossArb(key, b[market.OutcomeYes], a[market.OutcomeNo]); ok {
		arbs = append(arbs, arb)
	}
	return arbs
}

func (d *Detector) crossArb(key string, long, short market.Quote) (market.CrossExchangeArb, bool) {
	if long.Outcome != market.OutcomeYes || short.Outcome != market.OutcomeNo {
		return market.CrossExchangeArb{}, false
	}
	if !long.Tradable() || !short.Tradable() {
		return market.CrossExchangeArb{}, false
	}
	edgeBPS := ComputeEdgeBPS(long.Price, short.Price) - d.settings.TotalCostBPS()
	if edgeBPS <= 0 {
		return market.CrossExchangeArb{}, false
	}
	maxNotional := math.Min(long.Size*long.Price,
		math.Min(short.Size*(1-short.Price), d.settings.Risk.MaxNotionalPerLeg))
	grossProfit := edgeBPS / 10000.0 * maxNotional
	if grossProfit < d.settings.Risk.MinProfitUSD {
		return market.CrossExchangeArb{}, false
	}
	return market.CrossExchangeArb{
		EventKey:       key,
		Long:           long,
		Short:          short,
		EdgeBPS:        edgeBPS,
		GrossProfitUSD: grossProfit,
		MaxNotional:    maxNotional,
	}, true
}

// DetectTwoBuyArbs finds pairs where buying YES on one venue and NO on the
// other costs less than $1 after price-proportional fees. Both legs are buys.
func (d *Detector) DetectTwoBuyArbs(kalshiQuotes, polyQuotes []market.Quote) []market.TwoBuyArb {
	kalshi := buildBook(kalshiQuotes)
	poly := buildBook(polyQuotes)

	var arbs []market.TwoBuyArb
	for key, k := range kalshi {
		p, ok := poly[key]
		if !ok {
			continue
		}
		if arb, ok := d.twoBuyArb(key, k[market.OutcomeYes], p[market.OutcomeNo]); ok {
			arbs = append(arbs, arb)
		}
		if arb, ok := d.twoBuyArb(key, p[market.OutcomeYes], k[market.OutcomeNo]); ok {
			arbs = append(arbs, arb)
		}
	}
	return arbs
}

func (d *Detector) twoBuyArb(key string, buyYes, buyNo market.Quote) (market.TwoBuyArb, bool) {
	if buyYes.Outcome != market.OutcomeYes || buyNo.Outcome != market.OutcomeNo {
		return market.TwoBuyArb{}, false
	}
	if !buyYes.Tradable() || !buyNo.Tradable() {
		return market.TwoBuyArb{}, false
	}

	sumPrice := buyYes.Price + buyNo.Price
	feeRate := (d.settings.Fees.TakerBPS + d.settings.Risk.SlippageBPS) / 10000.0
	// Fees scale with each leg's own notional.
	edge := 1.0 - sumPrice - feeRate*sumPrice
	if edge <= 0 {
		return market.TwoBuyArb{}, false
	}

	capYes := d.settings.Risk.MaxNotionalPerLeg / math.Max(buyYes.Price, epsilon)
	capNo := d.settings.Risk.MaxNotionalPerLeg / math.Max(buyNo.Price, epsilon)
	contracts := math.Min(math.Min(buyYes.Size, buyNo.Size), math.Min(capYes, capNo))
	if contracts <= 0 {
		return market.TwoBuyArb{}, false
	}

	grossProfit := edge * contracts
	if grossProfit < d.settings.Risk.MinProfitUSD {
		return market.TwoBuyArb{}, false
	}
	return market.TwoBuyArb{
		EventKey:       key,
		BuyYes:         buyYes,
		BuyNo:          buyNo,
		SumPrice:       sumPrice,
		EdgeBPS:        edge * 10000.0,
		Contracts:      contracts,
		GrossProfitUSD: grossProfit,
	}, true
}

// DetectArbsWithMatcher widens recall by pairing events through the fuzzy
// matcher before pricing. This is strictly the fallback tier: pairs whose
// event keys already line up belong to DetectArbs and are skipped here, so
// running both tiers never prices the same legs twice.
func (d *Detector) DetectArbsWithMatcher(kalshiQuotes, polyQuotes []market.Quote, m *matcher.Matcher) []market.CrossExchangeArb {
	kalshi := buildBook(kalshiQuotes)
	poly := buildBook(polyQuotes)

	mapping := m.BestMatch(uniqueEvents(kalshiQuotes), uniqueEvents(polyQuotes))

	var arbs []market.CrossExchangeArb
	for srcEvent, dstEvent := range mapping {
		srcKey := market.EventKey(srcEvent)
		dstKey := market.EventKey(dstEvent)
		if srcKey == dstKey {
			continue
		}
		k, okK := kalshi[srcKey]
		p, okP := poly[dstKey]
		if !okK || !okP {
			continue
		}
		key := market.PairKey(srcEvent, dstEvent)
		arbs = d.appendCrossArbs(arbs, key, k, p)
	}
	return arbs
}

// uniqueEvents preserves first-appearance order, which keeps matcher progress
// reporting and diagnostics stable across runs of the same snapshot.
func uniqueEvents(quotes []market.Quote) []string {
	seen := make(map[string]struct{}, len(quotes))
	var out []string
	for _, q := range quotes {
		if _, ok := seen[q.Event]; ok {
			continue
		}
		seen[q.Event] = struct{}{}
		out = append(out, q.Event)
	}
	return out
}
