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
	"github.com/hetulpatel/polykalshi/internal/logging"
	"github.com/hetulpatel/polykalshi/internal/market"
	"github.com/hetulpatel/polykalshi/internal/polymarket"
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
		logging.Fatalf("[polymarket] open sqlite: %v", err)
	}
	defer store.Close()
	if err := store.CreateTables(ctx); err != nil {
		logging.Fatalf("[polymarket] create tables: %v", err)
	}

	client := polymarket.NewClient(polymarket.Config{
		MaxPages: envInt("POLYMARKET_PAGES", 2),
		PageSize: envInt("POLYMARKET_PAGE_SIZE", 50),
	})

	brokers := kafka.Brokers()
	topic := kafka.TopicFromEnv("POLYMARKET_KAFKA_TOPIC", kafka.DefaultPolyTopic)

	var writer = kafka.NewWriter(brokers, topic)
	defer writer.Close()

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Errorf("[polymarket] broker unavailable, publishing disabled: %v", err)
		writer = nil
	} else if err := kafka.EnsureTopic(ctx, brokers, topic); err != nil {
		logging.Errorf("[polymarket] ensure topic warning: %v", err)
	}
	cancel()

	interval := time.Duration(envInt("POLYMARKET_POLL_SECONDS", 30)) * time.Second
	feed.RunLoop(ctx, client, interval, func(ctx context.Context, quotes []market.Quote) error {
		logging.Infof("[polymarket] fetched %d quotes", len(quotes))
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
