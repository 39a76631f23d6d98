package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/polykalshi/internal/market"
)

func TestDemoFeedDeterministic(t *testing.T) {
	a := NewDemoFeed(market.ExchangeKalshi, 7)
	b := NewDemoFeed(market.ExchangeKalshi, 7)

	first, err := a.Fetch(context.Background())
	require.NoError(t, err)
	second, err := b.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDemoFeedQuoteShape(t *testing.T) {
	f := NewDemoFeed(market.ExchangePolymarket, 1)
	quotes, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 2*len(demoEvents))

	for i := 0; i < len(quotes); i += 2 {
		yes, no := quotes[i], quotes[i+1]
		assert.Equal(t, market.ExchangePolymarket, yes.Exchange)
		assert.Equal(t, market.OutcomeYes, yes.Outcome)
		assert.Equal(t, market.OutcomeNo, no.Outcome)
		assert.Equal(t, yes.Event, no.Event)
		assert.True(t, yes.Tradable(), "quote %d", i)
		assert.True(t, no.Tradable(), "quote %d", i+1)
		assert.InDelta(t, 1.0, yes.Price+no.Price, 0.02)
	}
}

func TestDemoFeedName(t *testing.T) {
	assert.Equal(t, "kalshi-demo", NewDemoFeed(market.ExchangeKalshi, 1).Name())
}
