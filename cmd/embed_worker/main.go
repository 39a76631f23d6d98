package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/hetulpatel/polykalshi/internal/cache"
	"github.com/hetulpatel/polykalshi/internal/embed"
	"github.com/hetulpatel/polykalshi/internal/kafka"
	"github.com/hetulpatel/polykalshi/internal/logging"
	"github.com/hetulpatel/polykalshi/internal/workers"
)

func main() {
	_ = godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	embedClient, err := embed.New(embed.Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("EMBED_MODEL"),
	})
	if err != nil {
		logging.Fatalf("[embed-worker] embed client: %v", err)
	}

	store, err := cache.NewRedisEmbeddingCache(
		envString("REDIS_ADDR", "localhost:6379"),
		os.Getenv("REDIS_PASSWORD"),
		envInt("REDIS_DB", 0),
		0, "",
	)
	if err != nil {
		logging.Fatalf("[embed-worker] embedding cache: %v", err)
	}
	defer store.Close()

	brokers := kafka.Brokers()
	topic := kafka.TopicFromEnv("EMBED_KAFKA_TOPIC", kafka.DefaultKalshiTopic)
	group := envString("EMBED_WORKER_GROUP", "embed-workers")
	workerCount := envInt("EMBED_WORKERS", 2)

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[embed-worker] wait for broker: %v", err)
	}
	cancel()

	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafka.EnsureTopic(ensureCtx, brokers, topic); err != nil {
		logging.Errorf("[embed-worker] ensure topic warning: %v", err)
	}
	cancelEnsure()

	processor := workers.NewProcessor(embedClient, store)
	logging.Infof("[embed-worker] consuming %s with group %s (%d workers)", topic, group, workerCount)
	workers.Run(ctx, brokers, topic, group, workerCount, processor.Handle)
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
