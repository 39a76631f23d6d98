// Package kalshi adapts the Kalshi Trade API into canonical per-outcome
// quotes. Parsing is tolerant: a missing or malformed field produces a zero
// value on the quote, never an error, and zero-priced quotes are dropped by
// the detector downstream.
package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hetulpatel/polykalshi/internal/logging"
	"github.com/hetulpatel/polykalshi/internal/market"
)

const (
	defaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2/markets"
	defaultBookURL = "https://api.elections.kalshi.com/trade-api/v2/markets"
)

// Client talks to the Kalshi Trade API.
type Client struct {
	baseURL    string
	bookURL    string
	pageSize   int
	maxPages   int
	withDepth  bool
	httpClient *http.Client
	nextCursor string
}

// Config provides optional overrides.
type Config struct {
	BaseURL   string
	BookURL   string
	PageSize  int
	MaxPages  int
	WithDepth bool
	Timeout   time.Duration
}

// NewClient builds a configured Kalshi API client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	book := cfg.BookURL
	if book == "" {
		book = defaultBookURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	if pageSize > 200 {
		pageSize = 200 // API limit
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 10
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:   base,
		bookURL:   book,
		pageSize:  pageSize,
		maxPages:  maxPages,
		withDepth: cfg.WithDepth,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Name() string {
	return "kalshi"
}

// Fetch retrieves up to maxPages of open markets, advancing the internal
// cursor, and returns one YES and one NO quote per market. When the end is
// reached the cursor resets so the next call starts over.
func (c *Client) Fetch(ctx context.Context) ([]market.Quote, error) {
	var quotes []market.Quote
	for page := 0; page < c.maxPages; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := c.listMarkets(ctx, c.pageSize, c.nextCursor)
		if err != nil {
			return nil, fmt.Errorf("list kalshi markets: %w", err)
		}
		logging.Debugf("[kalshi] processing batch of %d markets (cursor: %s)", len(resp.Markets), c.nextCursor)

		for _, m := range resp.Markets {
			if m.Status != "active" {
				continue
			}
			quotes = append(quotes, c.toQuotes(ctx, &m)...)
		}

		c.nextCursor = resp.Cursor
		if c.nextCursor == "" {
			logging.Debugf("[kalshi] reached end of markets, resetting cursor")
			break
		}
	}
	return quotes, nil
}

func (c *Client) listMarkets(ctx context.Context, limit int, cursor string) (*marketsResponse, error) {
	u, _ := url.Parse(c.baseURL)
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("status", "open")
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	var out marketsResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) fetchDepth(ctx context.Context, ticker string) (yes, no []market.BookLevel, err error) {
	u := fmt.Sprintf("%s/%s/orderbook?depth=5", strings.TrimRight(c.bookURL, "/"), ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}
	var out orderbookResponse
	if err := c.do(req, &out); err != nil {
		return nil, nil, err
	}
	return convertLevels(out.Orderbook.Yes), convertLevels(out.Orderbook.No), nil
}

func (c *Client) do(req *http.Request, dst any) error {
	var attempt int
	for {
		attempt++
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if shouldRetry(attempt, 0) {
				sleep(attempt)
				continue
			}
			return err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			defer resp.Body.Close()
			return json.NewDecoder(resp.Body).Decode(dst)
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()

		if shouldRetry(attempt, resp.StatusCode) {
			sleep(attempt)
			continue
		}
		return fmt.Errorf("kalshi API %s: %s", resp.Status, string(body))
	}
}

// toQuotes maps one market row into its YES and NO quotes. Prices arrive in
// cents; size comes from reported liquidity.
func (c *Client) toQuotes(ctx context.Context, m *marketRow) []market.Quote {
	event := m.Title
	if event == "" {
		event = m.Ticker
	}

	var endDate time.Time
	if m.CloseTime != "" {
		if ts, err := time.Parse(time.RFC3339, m.CloseTime); err == nil {
			endDate = ts
		}
	}

	var yesDepth, noDepth []market.BookLevel
	if c.withDepth {
		ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
		if y, n, err := c.fetchDepth(ctxWithTimeout, m.Ticker); err == nil {
			yesDepth, noDepth = y, n
		}
		cancel()
	}

	size := m.Liquidity
	return []market.Quote{
		{
			Exchange: market.ExchangeKalshi,
			MarketID: m.Ticker,
			Event:    event,
			Outcome:  market.OutcomeYes,
			Price:    centsToFloat(m.YesAsk),
			Size:     size,
			EndDate:  endDate,
			Depth:    yesDepth,
		},
		{
			Exchange: market.ExchangeKalshi,
			MarketID: m.Ticker,
			Event:    event,
			Outcome:  market.OutcomeNo,
			Price:    centsToFloat(m.NoAsk),
			Size:     size,
			EndDate:  endDate,
			Depth:    noDepth,
		},
	}
}

func centsToFloat(v int64) float64 {
	return float64(v) / 100.0
}

func convertLevels(levels [][2]float64) []market.BookLevel {
	if len(levels) == 0 {
		return nil
	}
	out := make([]market.BookLevel, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, market.BookLevel{
			Price: lvl[0] / 100.0,
			Size:  lvl[1],
		})
	}
	return out
}

func shouldRetry(attempt int, status int) bool {
	if attempt >= 5 {
		return false
	}
	if status == 0 {
		return true
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		return true
	}
	return false
}

func sleep(attempt int) {
	backoff := time.Duration(1<<uint(attempt-1)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	time.Sleep(backoff)
}

type marketsResponse struct {
	Markets []marketRow `json:"markets"`
	Cursor  string      `json:"cursor"`
}

type marketRow struct {
	Ticker    string  `json:"ticker"`
	Title     string  `json:"title"`
	Status    string  `json:"status"`
	CloseTime string  `json:"close_time"`
	YesAsk    int64   `json:"yes_ask"`
	NoAsk     int64   `json:"no_ask"`
	YesBid    int64   `json:"yes_bid"`
	NoBid     int64   `json:"no_bid"`
	Liquidity float64 `json:"liquidity"`
	Volume    float64 `json:"volume"`
}

type orderbookResponse struct {
	Orderbook struct {
		Yes [][2]float64 `json:"yes"`
		No  [][2]float64 `json:"no"`
	} `json:"orderbook"`
}
