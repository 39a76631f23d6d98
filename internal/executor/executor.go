package executor

import (
	"github.com/hetulpatel/polykalshi/internal/logging"
	"github.com/hetulpatel/polykalshi/internal/market"
)

// Fill records one simulated leg of an executed opportunity.
type Fill struct {
	Exchange market.Exchange `json:"exchange"`
	MarketID string          `json:"market_id"`
	Side     string          `json:"side"`
	Price    float64         `json:"price"`
	Size     float64         `json:"size"`
}

// PaperExecutor simulates execution of detected opportunities without
// touching either venue, sizing each leg off the opportunity's notional cap.
type PaperExecutor struct{}

func NewPaperExecutor() *PaperExecutor {
	return &PaperExecutor{}
}

// Execute simulates both legs of each cross-exchange opportunity and returns
// the fills in leg order (long, short).
func (e *PaperExecutor) Execute(opportunities []market.CrossExchangeArb) []Fill {
	fills := make([]Fill, 0, 2*len(opportunities))
	for _, opp := range opportunities {
		var sizeYes, sizeNo float64
		if opp.Long.Price > 0 {
			sizeYes = opp.MaxNotional / opp.Long.Price
		}
		if opp.Short.Price < 1 {
			sizeNo = opp.MaxNotional / (1 - opp.Short.Price)
		}
		fills = append(fills,
			Fill{Exchange: opp.Long.Exchange, MarketID: opp.Long.MarketID, Side: "BUY", Price: opp.Long.Price, Size: sizeYes},
			Fill{Exchange: opp.Short.Exchange, MarketID: opp.Short.MarketID, Side: "SELL", Price: opp.Short.Price, Size: sizeNo},
		)
		logging.Infof(
			"paper trade %s: long %s@%.2f, short %s@%.2f, notional=%.2f, profit=$%.2f",
			opp.EventKey, opp.Long.Exchange, opp.Long.Price, opp.Short.Exchange, opp.Short.Price,
			opp.MaxNotional, opp.GrossProfitUSD,
		)
	}
	return fills
}

// ExecuteTwoBuy simulates both legs of each same-venue two-buy opportunity.
func (e *PaperExecutor) ExecuteTwoBuy(opportunities []market.TwoBuyArb) []Fill {
	fills := make([]Fill, 0, 2*len(opportunities))
	for _, opp := range opportunities {
		fills = append(fills,
			Fill{Exchange: opp.BuyYes.Exchange, MarketID: opp.BuyYes.MarketID, Side: "BUY", Price: opp.BuyYes.Price, Size: opp.Contracts},
			Fill{Exchange: opp.BuyNo.Exchange, MarketID: opp.BuyNo.MarketID, Side: "BUY", Price: opp.BuyNo.Price, Size: opp.Contracts},
		)
		logging.Infof(
			"paper trade %s: buy YES@%.2f + NO@%.2f x %.2f, edge=%.1fbps, profit=$%.2f",
			opp.EventKey, opp.BuyYes.Price, opp.BuyNo.Price, opp.Contracts, opp.EdgeBPS, opp.GrossProfitUSD,
		)
	}
	return fills
}
