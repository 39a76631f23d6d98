package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/polykalshi/internal/market"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateTables(context.Background()))
	return store
}

func TestUpsertQuotes(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	quotes := []market.Quote{
		{Exchange: market.ExchangeKalshi, MarketID: "K1", Event: "Fed cuts rates", Outcome: market.OutcomeYes, Price: 0.40, Size: 100},
		{Exchange: market.ExchangeKalshi, MarketID: "K1", Event: "Fed cuts rates", Outcome: market.OutcomeNo, Price: 0.62, Size: 80},
	}
	require.NoError(t, store.UpsertQuotes(ctx, quotes))

	// second pass updates in place rather than erroring on the primary key
	quotes[0].Price = 0.41
	require.NoError(t, store.UpsertQuotes(ctx, quotes))

	var count int
	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&count))
	assert.Equal(t, 2, count)

	var price float64
	require.NoError(t, store.db.QueryRowContext(ctx,
		`SELECT price FROM quotes WHERE exchange='kalshi' AND market_id='K1' AND outcome='YES'`).Scan(&price))
	assert.InDelta(t, 0.41, price, 1e-9)
}

func TestInsertOpportunities(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	cross := []market.CrossExchangeArb{{
		EventKey:       "fed cuts rates",
		Long:           market.Quote{Exchange: market.ExchangeKalshi, MarketID: "K1", Outcome: market.OutcomeYes, Price: 0.40, Size: 100},
		Short:          market.Quote{Exchange: market.ExchangePolymarket, MarketID: "P1", Outcome: market.OutcomeNo, Price: 0.55, Size: 100},
		EdgeBPS:        1470,
		MaxNotional:    40,
		GrossProfitUSD: 5.88,
	}}
	require.NoError(t, store.InsertCrossExchangeArbs(ctx, cross))

	twoBuy := []market.TwoBuyArb{{
		EventKey:       "fed cuts rates",
		BuyYes:         market.Quote{Exchange: market.ExchangeKalshi, MarketID: "K1", Outcome: market.OutcomeYes, Price: 0.45, Size: 100},
		BuyNo:          market.Quote{Exchange: market.ExchangePolymarket, MarketID: "P1", Outcome: market.OutcomeNo, Price: 0.50, Size: 100},
		SumPrice:       0.95,
		EdgeBPS:        471.5,
		Contracts:      100,
		GrossProfitUSD: 4.715,
	}}
	require.NoError(t, store.InsertTwoBuyArbs(ctx, twoBuy))

	var count int
	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM arb_opportunities`).Scan(&count))
	assert.Equal(t, 2, count)

	var crossCount int
	require.NoError(t, store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM arb_opportunities WHERE strategy='cross_exchange'`).Scan(&crossCount))
	assert.Equal(t, 1, crossCount)

	var contracts float64
	require.NoError(t, store.db.QueryRowContext(ctx,
		`SELECT contracts FROM arb_opportunities WHERE strategy='two_buy'`).Scan(&contracts))
	assert.InDelta(t, 100.0, contracts, 1e-9)
}

func TestClearAndDropTables(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertQuotes(ctx, []market.Quote{
		{Exchange: market.ExchangePolymarket, MarketID: "P1", Event: "BTC 100k", Outcome: market.OutcomeYes, Price: 0.3, Size: 10},
	}))
	require.NoError(t, store.ClearTables(ctx))

	var count int
	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&count))
	assert.Zero(t, count)

	require.NoError(t, store.DropTables(ctx))
	require.NoError(t, store.CreateTables(ctx))
}
