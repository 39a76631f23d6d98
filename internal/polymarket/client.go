// Package polymarket adapts the Gamma events API plus CLOB order books into
// canonical per-outcome quotes. Venue JSON is loosely typed; the adapter maps
// missing or malformed fields to zero values and never fails a whole fetch
// over a single bad market.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hetulpatel/polykalshi/internal/logging"
	"github.com/hetulpatel/polykalshi/internal/market"
)

const (
	defaultBaseURL = "https://gamma-api.polymarket.com/events"
	defaultBookURL = "https://clob.polymarket.com/book"

	// bookConcurrency bounds parallel CLOB book fetches per batch.
	bookConcurrency = 8
)

// Client fetches Polymarket events + CLOB data.
type Client struct {
	baseURL    string
	bookURL    string
	pageSize   int
	maxPages   int
	httpClient *http.Client
	nextOffset int
}

// Config controls optional overrides for the client.
type Config struct {
	BaseURL  string
	BookURL  string
	PageSize int
	MaxPages int
	Timeout  time.Duration
}

// NewClient builds a Polymarket client with sane defaults.
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
		pageSize = 50
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
		baseURL:  base,
		bookURL:  book,
		pageSize: pageSize,
		maxPages: maxPages,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Name() string {
	return "polymarket"
}

// Fetch retrieves pages of open events, advancing the internal offset, and
// returns YES/NO quote pairs priced off the CLOB best asks. When the end of
// results is reached the offset resets to start over.
func (c *Client) Fetch(ctx context.Context) ([]market.Quote, error) {
	var quotes []market.Quote
	for page := 0; page < c.maxPages; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		list, err := c.listEvents(ctx, c.pageSize, c.nextOffset)
		if err != nil {
			return nil, fmt.Errorf("polymarket list events: %w", err)
		}
		if len(list) == 0 {
			logging.Debugf("[polymarket] reached end of events, resetting offset")
			c.nextOffset = 0
			break
		}
		logging.Debugf("[polymarket] processing batch of %d events (offset: %d)", len(list), c.nextOffset)

		for _, ev := range list {
			if ev.Closed {
				continue
			}
			quotes = append(quotes, c.toQuotes(ctx, &ev)...)
		}

		if len(list) < c.pageSize {
			c.nextOffset = 0
			break
		}
		c.nextOffset += c.pageSize
	}
	return quotes, nil
}

func (c *Client) listEvents(ctx context.Context, limit, offset int) ([]eventDetail, error) {
	u, _ := url.Parse(c.baseURL)
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("closed", "false")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	var events []eventDetail
	if err := c.do(req, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// toQuotes maps an event's binary markets to quote pairs. CLOB books for all
// token IDs in the event are fetched with bounded concurrency; one failing
// book degrades to an empty quote for that token, not a failed event.
func (c *Client) toQuotes(ctx context.Context, ev *eventDetail) []market.Quote {
	var endDate time.Time
	if ev.EndDate != "" {
		if ts, err := time.Parse(time.RFC3339, ev.EndDate); err == nil {
			endDate = ts
		}
	}

	type tokenRef struct {
		marketID string
		question string
		tokenID  string
		outcome  market.Outcome
	}
	var refs []tokenRef
	for _, m := range ev.Markets {
		if m.Closed || !m.Active {
			continue
		}
		tokenIDs := parseClobTokenIDs(m.ClobTokenIds)
		if len(tokenIDs) < 2 {
			continue
		}
		question := m.Question
		if question == "" {
			question = ev.Title
		}
		refs = append(refs,
			tokenRef{marketID: m.ID, question: question, tokenID: tokenIDs[0], outcome: market.OutcomeYes},
			tokenRef{marketID: m.ID, question: question, tokenID: tokenIDs[1], outcome: market.OutcomeNo},
		)
	}
	if len(refs) == 0 {
		return nil
	}

	books := make([]clobBook, len(refs))
	sem := make(chan struct{}, bookConcurrency)
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, tokenID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			bookCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			book, err := c.fetchBook(bookCtx, tokenID)
			if err != nil {
				logging.Debugf("[polymarket] book %s: %v", tokenID, err)
				return
			}
			books[i] = book
		}(i, ref.tokenID)
	}
	wg.Wait()

	quotes := make([]market.Quote, 0, len(refs))
	for i, ref := range refs {
		price, size, depth := bestAsk(books[i])
		quotes = append(quotes, market.Quote{
			Exchange: market.ExchangePolymarket,
			MarketID: ref.marketID,
			Event:    ref.question,
			Outcome:  ref.outcome,
			Price:    price,
			Size:     size,
			EndDate:  endDate,
			Depth:    depth,
		})
	}
	return quotes
}

func (c *Client) fetchBook(ctx context.Context, tokenID string) (clobBook, error) {
	u, _ := url.Parse(c.bookURL)
	q := u.Query()
	q.Set("token_id", tokenID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return clobBook{}, err
	}

	var book clobBook
	if err := c.do(req, &book); err != nil {
		return clobBook{}, err
	}
	return book, nil
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
		return fmt.Errorf("polymarket API %s: %s", resp.Status, string(body))
	}
}

// bestAsk returns the lowest ask price, its size, and the full ask ladder
// sorted cheapest-first. A missing or empty book yields zeros.
func bestAsk(book clobBook) (price, size float64, depth []market.BookLevel) {
	for _, lvl := range book.Asks {
		p := parseDecimal(lvl.Price)
		s := parseDecimal(lvl.Size)
		if p <= 0 || s <= 0 {
			continue
		}
		depth = append(depth, market.BookLevel{Price: p, Size: s})
	}
	if len(depth) == 0 {
		return 0, 0, nil
	}
	for i := 1; i < len(depth); i++ {
		for j := i; j > 0 && depth[j].Price < depth[j-1].Price; j-- {
			depth[j], depth[j-1] = depth[j-1], depth[j]
		}
	}
	return depth[0].Price, depth[0].Size, depth
}

func parseClobTokenIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}

func parseDecimal(val string) float64 {
	f, _ := strconv.ParseFloat(val, 64)
	return f
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

type eventDetail struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Closed  bool        `json:"closed"`
	EndDate string      `json:"endDate"`
	Markets []marketRow `json:"markets"`
}

type marketRow struct {
	ID           string `json:"id"`
	Question     string `json:"question"`
	ClobTokenIds string `json:"clobTokenIds"`
	Active       bool   `json:"active"`
	Closed       bool   `json:"closed"`
}

type clobBook struct {
	Bids []clobLevel `json:"bids"`
	Asks []clobLevel `json:"asks"`
}

type clobLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}
