package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/hetulpatel/polykalshi/internal/arb"
	"github.com/hetulpatel/polykalshi/internal/cache"
	"github.com/hetulpatel/polykalshi/internal/config"
	"github.com/hetulpatel/polykalshi/internal/embed"
	"github.com/hetulpatel/polykalshi/internal/executor"
	"github.com/hetulpatel/polykalshi/internal/feed"
	"github.com/hetulpatel/polykalshi/internal/kalshi"
	"github.com/hetulpatel/polykalshi/internal/llm"
	"github.com/hetulpatel/polykalshi/internal/logging"
	"github.com/hetulpatel/polykalshi/internal/market"
	"github.com/hetulpatel/polykalshi/internal/matcher"
	"github.com/hetulpatel/polykalshi/internal/polymarket"
	sqlstore "github.com/hetulpatel/polykalshi/internal/storage/sqlite"
	"github.com/hetulpatel/polykalshi/internal/validator"
)

func main() {
	_ = godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	settings := config.FromEnv()
	detector := arb.NewDetector(settings)

	kalshiQuotes, polyQuotes, err := loadQuotes(ctx)
	if err != nil {
		logging.Fatalf("[scanner] load quotes: %v", err)
	}
	logging.Infof("[scanner] loaded %d kalshi quotes, %d polymarket quotes", len(kalshiQuotes), len(polyQuotes))

	m := buildMatcher(ctx, settings, kalshiQuotes, polyQuotes)

	cross := detector.DetectArbs(kalshiQuotes, polyQuotes)
	cross = append(cross, detector.DetectArbsWithMatcher(kalshiQuotes, polyQuotes, m)...)
	cross = dedupeCross(cross)
	twoBuy := detector.DetectTwoBuyArbs(kalshiQuotes, polyQuotes)

	if envBool("VALIDATE_MATCHES", false) {
		cross = validateCross(ctx, cross)
	}

	if len(cross)+len(twoBuy) == 0 {
		logging.Infof("No opportunities found.")
		return
	}
	logging.Infof("Found %d opportunities", len(cross)+len(twoBuy))

	paper := executor.NewPaperExecutor()
	paper.Execute(cross)
	paper.ExecuteTwoBuy(twoBuy)

	if path := os.Getenv("SQLITE_PATH"); path != "" {
		persist(ctx, path, kalshiQuotes, polyQuotes, cross, twoBuy)
	}
}

// loadQuotes fetches both venues concurrently, or generates a deterministic
// demo book when DEMO is set.
func loadQuotes(ctx context.Context) ([]market.Quote, []market.Quote, error) {
	if envBool("DEMO", false) {
		seed := int64(envInt("DEMO_SEED", 7))
		kalshiFeed := feed.NewDemoFeed(market.ExchangeKalshi, seed)
		polyFeed := feed.NewDemoFeed(market.ExchangePolymarket, seed+1)
		kalshiQuotes, err := kalshiFeed.Fetch(ctx)
		if err != nil {
			return nil, nil, err
		}
		polyQuotes, err := polyFeed.Fetch(ctx)
		if err != nil {
			return nil, nil, err
		}
		return kalshiQuotes, polyQuotes, nil
	}

	kalshiClient := kalshi.NewClient(kalshi.Config{
		MaxPages: envInt("KALSHI_PAGES", 2),
		PageSize: envInt("KALSHI_PAGE_SIZE", 100),
	})
	polyClient := polymarket.NewClient(polymarket.Config{
		MaxPages: envInt("POLYMARKET_PAGES", 2),
		PageSize: envInt("POLYMARKET_PAGE_SIZE", 50),
	})

	type result struct {
		quotes []market.Quote
		err    error
	}
	kalshiCh := make(chan result, 1)
	go func() {
		quotes, err := kalshiClient.Fetch(ctx)
		kalshiCh <- result{quotes, err}
	}()
	polyQuotes, polyErr := polyClient.Fetch(ctx)
	kalshiRes := <-kalshiCh
	if kalshiRes.err != nil {
		return nil, nil, kalshiRes.err
	}
	if polyErr != nil {
		return nil, nil, polyErr
	}
	return kalshiRes.quotes, polyQuotes, nil
}

// buildMatcher wires a lexical matcher by default, upgrading to embedding
// cosine scoring when an OpenAI key is available.
func buildMatcher(ctx context.Context, settings config.Settings, kalshiQuotes, polyQuotes []market.Quote) *matcher.Matcher {
	cfg := matcher.Config{
		Provider:     matcher.NewLexicalProvider(settings.Matching.Threshold),
		CandidateCap: settings.Matching.CandidateCap,
		Logger:       matcher.NewLogger(matcher.ParseLogMode(os.Getenv("MATCH_LOG_MODE"))),
		Progress: func(done, total int) {
			logging.Debugf("[scanner] matched %d/%d", done, total)
		},
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		if vectors := embedTitles(ctx, apiKey, kalshiQuotes, polyQuotes); vectors != nil {
			cfg.Provider = matcher.NewVectorProvider(vectors, settings.Matching.MinCosine)
		}
	}
	return matcher.New(cfg)
}

func embedTitles(ctx context.Context, apiKey string, kalshiQuotes, polyQuotes []market.Quote) map[string][]float32 {
	client, err := embed.New(embed.Config{APIKey: apiKey, Model: os.Getenv("EMBED_MODEL")})
	if err != nil {
		logging.Errorf("[scanner] embed client: %v", err)
		return nil
	}

	titles := make([]string, 0, len(kalshiQuotes)+len(polyQuotes))
	for _, q := range kalshiQuotes {
		titles = append(titles, q.Event)
	}
	for _, q := range polyQuotes {
		titles = append(titles, q.Event)
	}

	embedder := newEmbedder(client)
	vectors, err := embedder.EmbedBatch(ctx, titles, func(done, total int) {
		logging.Debugf("[scanner] embedded %d/%d", done, total)
	})
	if err != nil {
		logging.Errorf("[scanner] embed titles: %v", err)
		return nil
	}
	return vectors
}

type batchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string, progress embed.ProgressFunc) (map[string][]float32, error)
}

func newEmbedder(client *embed.Client) batchEmbedder {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return client
	}
	store, err := cache.NewRedisEmbeddingCache(addr, os.Getenv("REDIS_PASSWORD"), envInt("REDIS_DB", 0), 0, "")
	if err != nil {
		logging.Errorf("[scanner] embedding cache disabled: %v", err)
		return client
	}
	return embed.NewCachedEmbedder(client, store)
}

// validateCross filters cross-exchange opportunities through the LLM pair
// validator, dropping any pair the model does not confirm.
func validateCross(ctx context.Context, cross []market.CrossExchangeArb) []market.CrossExchangeArb {
	if len(cross) == 0 {
		return cross
	}

	llmClient, err := llm.New(llm.Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("LLM_MODEL"),
	})
	if err != nil {
		logging.Errorf("[scanner] validator disabled: %v", err)
		return cross
	}

	var verdicts cache.VerdictCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		verdicts, err = cache.NewRedisVerdictCache(addr, os.Getenv("REDIS_PASSWORD"), envInt("REDIS_DB", 0), 0, "")
		if err != nil {
			logging.Errorf("[scanner] verdict cache disabled: %v", err)
			verdicts = nil
		}
	}

	svc, err := validator.NewService(validator.Config{LLMClient: llmClient, VerdictCache: verdicts})
	if err != nil {
		logging.Errorf("[scanner] validator disabled: %v", err)
		return cross
	}

	pairs := make([]validator.Pair, 0, len(cross))
	for _, opp := range cross {
		pairs = append(pairs, validator.Pair{Source: opp.Long.Event, Target: opp.Short.Event})
	}
	results, err := svc.ValidatePairs(ctx, pairs)
	if err != nil {
		logging.Errorf("[scanner] validate pairs: %v", err)
		return cross
	}

	kept := cross[:0]
	for i, opp := range cross {
		verdict, ok := results[pairs[i].Key()]
		if ok && verdict.Tradable() {
			kept = append(kept, opp)
			continue
		}
		logging.Infof("[scanner] dropped %q after validation: %s", opp.EventKey, verdict.Rationale)
	}
	return kept
}

func dedupeCross(cross []market.CrossExchangeArb) []market.CrossExchangeArb {
	seen := make(map[string]bool, len(cross))
	out := cross[:0]
	for _, opp := range cross {
		key := opp.EventKey + "|" + opp.Long.MarketID + "|" + opp.Short.MarketID
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, opp)
	}
	return out
}

func persist(ctx context.Context, path string, kalshiQuotes, polyQuotes []market.Quote, cross []market.CrossExchangeArb, twoBuy []market.TwoBuyArb) {
	store, err := sqlstore.Open(path)
	if err != nil {
		logging.Errorf("[scanner] open sqlite: %v", err)
		return
	}
	defer store.Close()

	if err := store.CreateTables(ctx); err != nil {
		logging.Errorf("[scanner] create tables: %v", err)
		return
	}
	if err := store.UpsertQuotes(ctx, append(kalshiQuotes, polyQuotes...)); err != nil {
		logging.Errorf("[scanner] upsert quotes: %v", err)
	}
	if err := store.InsertCrossExchangeArbs(ctx, cross); err != nil {
		logging.Errorf("[scanner] insert opportunities: %v", err)
	}
	if err := store.InsertTwoBuyArbs(ctx, twoBuy); err != nil {
		logging.Errorf("[scanner] insert opportunities: %v", err)
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

func envBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return def
}
