package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hetulpatel/polykalshi/internal/market"
)

const opportunitiesSchemaSQL = `
CREATE TABLE IF NOT EXISTS arb_opportunities (
	event_key TEXT NOT NULL,
	strategy TEXT NOT NULL,
	edge_bps REAL,
	gross_profit_usd REAL,
	max_notional_usd REAL,
	contracts REAL,
	long_exchange TEXT,
	long_market_id TEXT,
	long_price REAL,
	short_exchange TEXT,
	short_market_id TEXT,
	short_price REAL,
	detected_at TEXT NOT NULL,
	raw_json TEXT
);
CREATE INDEX IF NOT EXISTS arb_opportunities_event_idx ON arb_opportunities(event_key, detected_at);
`

// InsertCrossExchangeArbs stores a batch of cross-exchange opportunities.
func (s *Store) InsertCrossExchangeArbs(ctx context.Context, opps []market.CrossExchangeArb) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialized")
	}
	if len(opps) == 0 {
		return nil
	}

	detectedAt := time.Now().UTC().Format(time.RFC3339Nano)
	for _, opp := range opps {
		rawJSON, err := json.Marshal(opp)
		if err != nil {
			return fmt.Errorf("marshal opportunity: %w", err)
		}
		_, err = s.db.ExecContext(
			ctx,
			opportunityInsertSQL,
			opp.EventKey,
			"cross_exchange",
			opp.EdgeBPS,
			opp.GrossProfitUSD,
			opp.MaxNotional,
			opp.MaxNotional/nonZero(opp.Long.Price),
			string(opp.Long.Exchange),
			opp.Long.MarketID,
			opp.Long.Price,
			string(opp.Short.Exchange),
			opp.Short.MarketID,
			opp.Short.Price,
			detectedAt,
			string(rawJSON),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// InsertTwoBuyArbs stores a batch of same-venue two-buy opportunities.
func (s *Store) InsertTwoBuyArbs(ctx context.Context, opps []market.TwoBuyArb) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialized")
	}
	if len(opps) == 0 {
		return nil
	}

	detectedAt := time.Now().UTC().Format(time.RFC3339Nano)
	for _, opp := range opps {
		rawJSON, err := json.Marshal(opp)
		if err != nil {
			return fmt.Errorf("marshal opportunity: %w", err)
		}
		_, err = s.db.ExecContext(
			ctx,
			opportunityInsertSQL,
			opp.EventKey,
			"two_buy",
			opp.EdgeBPS,
			opp.GrossProfitUSD,
			opp.SumPrice*opp.Contracts,
			opp.Contracts,
			string(opp.BuyYes.Exchange),
			opp.BuyYes.MarketID,
			opp.BuyYes.Price,
			string(opp.BuyNo.Exchange),
			opp.BuyNo.MarketID,
			opp.BuyNo.Price,
			detectedAt,
			string(rawJSON),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

const opportunityInsertSQL = `
INSERT INTO arb_opportunities (
	event_key, strategy, edge_bps, gross_profit_usd, max_notional_usd, contracts,
	long_exchange, long_market_id, long_price,
	short_exchange, short_market_id, short_price,
	detected_at, raw_json
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
`

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
