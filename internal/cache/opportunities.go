package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpportunityRecord captures the best profitable result seen for an event pair.
type OpportunityRecord struct {
	Strategy       string    `json:"strategy"` // "cross_exchange" or "two_buy"
	EdgeBPS        float64   `json:"edge_bps"`
	GrossProfitUSD float64   `json:"gross_profit_usd"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OpportunityCache stores the best opportunity per event pair so repeat passes
// over an unchanged book do not re-announce the same edge.
type OpportunityCache interface {
	Get(ctx context.Context, eventKey string) (*OpportunityRecord, bool, error)
	Set(ctx context.Context, eventKey string, record OpportunityRecord) error
	Close() error
}

type redisOpportunityCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisOpportunityCache builds a cache keyed by the composite event key.
func NewRedisOpportunityCache(addr, password string, db int, ttl time.Duration, prefix string) (OpportunityCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if prefix == "" {
		prefix = "opp_best"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisOpportunityCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisOpportunityCache) key(eventKey string) string {
	return fmt.Sprintf("%s:%s", c.prefix, eventKey)
}

func (c *redisOpportunityCache) Get(ctx context.Context, eventKey string) (*OpportunityRecord, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(eventKey)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var record OpportunityRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (c *redisOpportunityCache) Set(ctx context.Context, eventKey string, record OpportunityRecord) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(eventKey), payload, c.ttl).Err()
}

func (c *redisOpportunityCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
