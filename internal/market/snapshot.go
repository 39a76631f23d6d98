package market

import "time"

// QuoteSnapshot is the per-quote envelope placed on the venue Kafka topics.
type QuoteSnapshot struct {
	Quote      Quote     `json:"quote"`
	CapturedAt time.Time `json:"captured_at"`
}

// NewQuoteSnapshot stamps a quote with its capture time.
func NewQuoteSnapshot(q Quote, capturedAt time.Time) QuoteSnapshot {
	return QuoteSnapshot{Quote: q, CapturedAt: capturedAt}
}
