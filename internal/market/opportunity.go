package market

// MatchCandidate is a scored cross-venue event pairing, kept for diagnostics.
type MatchCandidate struct {
	EventKey   string  `json:"event_key"`
	Similarity float64 `json:"similarity"`
}

// CrossExchangeArb is a long-YES / short-equivalent-NO position across venues.
// Long is always the YES leg and Short the NO leg, on different exchanges.
type CrossExchangeArb struct {
	EventKey       string  `json:"event_key"`
	Long           Quote   `json:"long"`
	Short          Quote   `json:"short"`
	EdgeBPS        float64 `json:"edge_bps"`
	GrossProfitUSD float64 `json:"gross_profit_usd"`
	MaxNotional    float64 `json:"max_notional"`
}

// TwoBuyArb buys YES on one venue and NO on the other; both legs are buys.
// Any positive edge requires SumPrice < 1 before fees.
type TwoBuyArb struct {
	EventKey       string  `json:"event_key"`
	BuyYes         Quote   `json:"buy_yes"`
	BuyNo          Quote   `json:"buy_no"`
	SumPrice       float64 `json:"sum_price"`
	EdgeBPS        float64 `json:"edge_bps"`
	Contracts      float64 `json:"contracts"`
	GrossProfitUSD float64 `json:"gross_profit_usd"`
}
