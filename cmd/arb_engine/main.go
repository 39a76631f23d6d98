package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/hetulpatel/polykalshi/internal/arb"
	"github.com/hetulpatel/polykalshi/internal/cache"
	"github.com/hetulpatel/polykalshi/internal/config"
	"github.com/hetulpatel/polykalshi/internal/kafka"
	"github.com/hetulpatel/polykalshi/internal/logging"
	"github.com/hetulpatel/polykalshi/internal/market"
	"github.com/hetulpatel/polykalshi/internal/queue"
	sqlstore "github.com/hetulpatel/polykalshi/internal/storage/sqlite"
	"github.com/hetulpatel/polykalshi/internal/workers"
)

// quoteBook keeps the freshest quote per (exchange, market, outcome) fed in
// from the venue topics.
type quoteBook struct {
	mu     sync.Mutex
	quotes map[string]market.Quote
}

func newQuoteBook() *quoteBook {
	return &quoteBook{quotes: make(map[string]market.Quote)}
}

func (b *quoteBook) update(q market.Quote) {
	key := string(q.Exchange) + "|" + q.MarketID + "|" + string(q.Outcome)
	b.mu.Lock()
	b.quotes[key] = q
	b.mu.Unlock()
}

func (b *quoteBook) byExchange() (kalshiQuotes, polyQuotes []market.Quote) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, q := range b.quotes {
		switch q.Exchange {
		case market.ExchangeKalshi:
			kalshiQuotes = append(kalshiQuotes, q)
		case market.ExchangePolymarket:
			polyQuotes = append(polyQuotes, q)
		}
	}
	return kalshiQuotes, polyQuotes
}

func main() {
	_ = godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	settings := config.FromEnv()
	detector := arb.NewDetector(settings)

	brokers := kafka.Brokers()
	kalshiTopic := kafka.TopicFromEnv("KALSHI_KAFKA_TOPIC", kafka.DefaultKalshiTopic)
	polyTopic := kafka.TopicFromEnv("POLYMARKET_KAFKA_TOPIC", kafka.DefaultPolyTopic)
	oppTopic := kafka.TopicFromEnv("OPPORTUNITY_KAFKA_TOPIC", kafka.DefaultOpportunityTopic)
	group := envString("ARB_ENGINE_GROUP", "arb-engine")
	workerCount := envInt("ARB_ENGINE_WORKERS", 1)
	scanInterval := time.Duration(envInt("ARB_SCAN_SECONDS", 15)) * time.Second

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[arb-engine] wait for broker: %v", err)
	}
	cancel()

	for _, topic := range []string{kalshiTopic, polyTopic, oppTopic} {
		ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
		if err := kafka.EnsureTopic(ensureCtx, brokers, topic); err != nil {
			logging.Errorf("[arb-engine] ensure topic warning: %v", err)
		}
		cancelEnsure()
	}

	store, err := sqlstore.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		logging.Fatalf("[arb-engine] open sqlite: %v", err)
	}
	defer store.Close()
	if err := store.CreateTables(ctx); err != nil {
		logging.Fatalf("[arb-engine] create tables: %v", err)
	}

	var oppCache cache.OpportunityCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		oppCache, err = cache.NewRedisOpportunityCache(addr, os.Getenv("REDIS_PASSWORD"), envInt("REDIS_DB", 0), 0, "")
		if err != nil {
			logging.Errorf("[arb-engine] opportunity cache disabled: %v", err)
		} else {
			defer oppCache.Close()
		}
	}

	writer := kafka.NewWriter(brokers, oppTopic)
	defer writer.Close()

	book := newQuoteBook()
	handler := func(_ context.Context, snap *market.QuoteSnapshot) error {
		book.update(snap.Quote)
		return nil
	}

	go workers.Run(ctx, brokers, kalshiTopic, group, workerCount, handler)
	go workers.Run(ctx, brokers, polyTopic, group, workerCount, handler)

	logging.Infof("[arb-engine] consuming %s + %s with group %s (%d workers, scan every %s)",
		kalshiTopic, polyTopic, group, workerCount, scanInterval)

	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scan(ctx, detector, book, store, oppCache, writer)
		}
	}
}

func scan(ctx context.Context, detector *arb.Detector, book *quoteBook, store *sqlstore.Store, oppCache cache.OpportunityCache, writer *kafkago.Writer) {
	kalshiQuotes, polyQuotes := book.byExchange()
	if len(kalshiQuotes) == 0 && len(polyQuotes) == 0 {
		return
	}

	cross := detector.DetectArbs(kalshiQuotes, polyQuotes)
	twoBuy := detector.DetectTwoBuyArbs(kalshiQuotes, polyQuotes)
	if len(cross)+len(twoBuy) == 0 {
		logging.Infof("[arb-engine] no opportunities found (%d kalshi, %d polymarket quotes)",
			len(kalshiQuotes), len(polyQuotes))
		return
	}

	for _, opp := range cross {
		logging.Infof("[arb-opportunity] event=%q long=%s short=%s edge=%.1fbps notional=%.2f profit=$%.2f",
			opp.EventKey, opp.Long.Exchange, opp.Short.Exchange, opp.EdgeBPS, opp.MaxNotional, opp.GrossProfitUSD)
	}
	for _, opp := range twoBuy {
		logging.Infof("[arb-opportunity] event=%q two-buy sum=%.3f edge=%.1fbps contracts=%.2f profit=$%.2f",
			opp.EventKey, opp.SumPrice, opp.EdgeBPS, opp.Contracts, opp.GrossProfitUSD)
	}

	if err := store.InsertCrossExchangeArbs(ctx, cross); err != nil {
		logging.Errorf("[arb-engine] sqlite error: %v", err)
	}
	if err := store.InsertTwoBuyArbs(ctx, twoBuy); err != nil {
		logging.Errorf("[arb-engine] sqlite error: %v", err)
	}
	if err := queue.PublishOpportunities(ctx, writer, cross, twoBuy); err != nil {
		logging.Errorf("[arb-engine] publish error: %v", err)
	}

	recordOpportunities(ctx, oppCache, cross, twoBuy)
}

func recordOpportunities(ctx context.Context, oppCache cache.OpportunityCache, cross []market.CrossExchangeArb, twoBuy []market.TwoBuyArb) {
	if oppCache == nil {
		return
	}
	now := time.Now().UTC()
	for _, opp := range cross {
		record := cache.OpportunityRecord{Strategy: "cross_exchange", EdgeBPS: opp.EdgeBPS, GrossProfitUSD: opp.GrossProfitUSD, UpdatedAt: now}
		if err := oppCache.Set(ctx, opp.EventKey, record); err != nil {
			logging.Errorf("[arb-engine] opportunity cache error: %v", err)
		}
	}
	for _, opp := range twoBuy {
		record := cache.OpportunityRecord{Strategy: "two_buy", EdgeBPS: opp.EdgeBPS, GrossProfitUSD: opp.GrossProfitUSD, UpdatedAt: now}
		if err := oppCache.Set(ctx, opp.EventKey, record); err != nil {
			logging.Errorf("[arb-engine] opportunity cache error: %v", err)
		}
	}
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
