package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/polykalshi/internal/market"
)

// PublishQuotes wraps each quote in a timestamped snapshot and writes the
// batch to the venue topic. A nil writer or empty batch is a no-op.
func PublishQuotes(ctx context.Context, writer *kafka.Writer, quotes []market.Quote) error {
	if writer == nil || len(quotes) == 0 {
		return nil
	}

	captured := time.Now().UTC()
	msgs := make([]kafka.Message, 0, len(quotes))

	for _, q := range quotes {
		snapshot := market.NewQuoteSnapshot(q, captured)
		payload, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("marshal snapshot %s: %w", q.MarketID, err)
		}
		key := fmt.Sprintf("%s-%s-%s-%d", q.Exchange, q.MarketID, q.Outcome, captured.UnixNano())
		msgs = append(msgs, kafka.Message{Key: []byte(key), Value: payload})
	}

	return writer.WriteMessages(ctx, msgs...)
}

// PublishOpportunities publishes cross-exchange and two-buy opportunities to
// the opportunities topic, each tagged with a strategy for downstream routing.
func PublishOpportunities(ctx context.Context, writer *kafka.Writer, cross []market.CrossExchangeArb, twoBuy []market.TwoBuyArb) error {
	if writer == nil || len(cross)+len(twoBuy) == 0 {
		return nil
	}

	detected := time.Now().UTC()
	msgs := make([]kafka.Message, 0, len(cross)+len(twoBuy))

	for _, opp := range cross {
		envelope := opportunityEnvelope{Strategy: "cross_exchange", DetectedAt: detected, CrossExchange: &opp}
		payload, err := json.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("marshal opportunity %s: %w", opp.EventKey, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(opp.EventKey), Value: payload})
	}

	for _, opp := range twoBuy {
		envelope := opportunityEnvelope{Strategy: "two_buy", DetectedAt: detected, TwoBuy: &opp}
		payload, err := json.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("marshal opportunity %s: %w", opp.EventKey, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(opp.EventKey), Value: payload})
	}

	return writer.WriteMessages(ctx, msgs...)
}

type opportunityEnvelope struct {
	Strategy      string                   `json:"strategy"`
	DetectedAt    time.Time                `json:"detected_at"`
	CrossExchange *market.CrossExchangeArb `json:"cross_exchange,omitempty"`
	TwoBuy        *market.TwoBuyArb        `json:"two_buy,omitempty"`
}
