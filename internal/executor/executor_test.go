package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/polykalshi/internal/market"
)

func TestExecuteCrossExchange(t *testing.T) {
	opp := market.CrossExchangeArb{
		EventKey: "fed cuts rates",
		Long: market.Quote{
			Exchange: market.ExchangeKalshi, MarketID: "K1",
			Outcome: market.OutcomeYes, Price: 0.40, Size: 100,
		},
		Short: market.Quote{
			Exchange: market.ExchangePolymarket, MarketID: "P1",
			Outcome: market.OutcomeNo, Price: 0.55, Size: 100,
		},
		EdgeBPS:        1470,
		MaxNotional:    40,
		GrossProfitUSD: 5.88,
	}

	fills := NewPaperExecutor().Execute([]market.CrossExchangeArb{opp})
	require.Len(t, fills, 2)

	long, short := fills[0], fills[1]
	assert.Equal(t, "K1", long.MarketID)
	assert.Equal(t, "BUY", long.Side)
	assert.InDelta(t, 100.0, long.Size, 1e-9) // 40 / 0.40

	assert.Equal(t, "P1", short.MarketID)
	assert.Equal(t, "SELL", short.Side)
	assert.InDelta(t, 40.0/0.45, short.Size, 1e-9)
}

func TestExecuteDegenerateLegPrices(t *testing.T) {
	opp := market.CrossExchangeArb{
		Long:        market.Quote{Price: 0},
		Short:       market.Quote{Price: 1},
		MaxNotional: 40,
	}
	fills := NewPaperExecutor().Execute([]market.CrossExchangeArb{opp})
	require.Len(t, fills, 2)
	assert.Zero(t, fills[0].Size)
	assert.Zero(t, fills[1].Size)
}

func TestExecuteTwoBuy(t *testing.T) {
	opp := market.TwoBuyArb{
		EventKey: "fed cuts rates",
		BuyYes: market.Quote{
			Exchange: market.ExchangeKalshi, MarketID: "K1",
			Outcome: market.OutcomeYes, Price: 0.45, Size: 100,
		},
		BuyNo: market.Quote{
			Exchange: market.ExchangePolymarket, MarketID: "P1",
			Outcome: market.OutcomeNo, Price: 0.50, Size: 100,
		},
		Contracts: 100,
	}

	fills := NewPaperExecutor().ExecuteTwoBuy([]market.TwoBuyArb{opp})
	require.Len(t, fills, 2)
	assert.Equal(t, "BUY", fills[0].Side)
	assert.Equal(t, "BUY", fills[1].Side)
	assert.InDelta(t, 100.0, fills[0].Size, 1e-9)
	assert.InDelta(t, 100.0, fills[1].Size, 1e-9)
}

func TestExecuteEmpty(t *testing.T) {
	assert.Empty(t, NewPaperExecutor().Execute(nil))
	assert.Empty(t, NewPaperExecutor().ExecuteTwoBuy(nil))
}
