package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/hetulpatel/polykalshi/internal/feed"
	"github.com/hetulpatel/polykalshi/internal/kafka"
	"github.com/hetulpatel/polykalshi/internal/kalshi"
	"github.com/hetulpatel/polykalshi/internal/logging"
	"github.com/hetulpatel/polykalshi/internal/market"
	"github.com/hetulpatel/polykalshi/internal/queue"
	sqlstore "github.com/hetulpatel/polykalshi/internal/storage/sqlite"
)

func main() {
	_ = godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := sqlstore.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		logging.Fatalf("[kalshi] open sqlite: %v", err)
	}
	defer store.Close()
	if err := store.CreateTables(ctx); err != nil {
		logging.Fatalf("[kalshi] create tables: %v", err)
	}

	client := kalshi.NewClient(kalshi.Config{
		MaxPages:  envInt("KALSHI_PAGES", 2),
		PageSize:  envInt("KALSHI_PAGE_SIZE", 100),
		WithDepth: envBool("KALSHI_WITH_DEPTH", false),
	})

	brokers := kafka.Brokers()
	topic := kafka.TopicFromEnv("KALSHI_KAFKA_TOPIC", kafka.DefaultKalshiTopic)

	var writer = kafka.NewWriter(brokers, topic)
	defer writer.Close()

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Errorf("[kalshi] broker unavailable, publishing disabled: %v", err)
		writer = nil
	} else if err := kafka.EnsureTopic(ctx, brokers, topic); err != nil {
		logging.Errorf("[kalshi] ensure topic warning: %v", err)
	}
	cancel()

	interval := time.Duration(envInt("KALSHI_POLL_SECONDS", 30)) * time.Second
	feed.RunLoop(ctx, client, interval, func(ctx context.Context, quotes []market.Quote) error {
		logging.Infof("[kalshi] fetched %d quotes", len(quotes))
		if err := store.UpsertQuotes(ctx, quotes); err != nil {
			return err
		}
		return queue.PublishQuotes(ctx, writer, quotes)
	})
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
