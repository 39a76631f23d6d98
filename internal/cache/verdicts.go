package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PairVerdict is the cached outcome of LLM validation for one title pair.
type PairVerdict struct {
	SameEvent           bool   `json:"same_event"`
	DirectionConsistent bool   `json:"direction_consistent"`
	Rationale           string `json:"rationale,omitempty"`
}

// Tradable reports whether the pair passed both checks.
func (v PairVerdict) Tradable() bool {
	return v.SameEvent && v.DirectionConsistent
}

// VerdictCache stores validation verdicts keyed by the exact pair text digest,
// so a title pair is only ever sent to the LLM once.
type VerdictCache interface {
	Get(ctx context.Context, key string) (PairVerdict, bool, error)
	Set(ctx context.Context, key string, verdict PairVerdict) error
	Close() error
}

type redisVerdictCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisVerdictCache(addr, password string, db int, ttl time.Duration, prefix string) (VerdictCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = 240 * time.Hour
	}
	if prefix == "" {
		prefix = "pair_verdict"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisVerdictCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisVerdictCache) key(k string) string {
	return fmt.Sprintf("%s:%s", c.prefix, k)
}

func (c *redisVerdictCache) Get(ctx context.Context, key string) (PairVerdict, bool, error) {
	if c == nil || c.client == nil {
		return PairVerdict{}, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return PairVerdict{}, false, nil
	}
	if err != nil {
		return PairVerdict{}, false, err
	}
	var verdict PairVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return PairVerdict{}, false, err
	}
	return verdict, true, nil
}

func (c *redisVerdictCache) Set(ctx context.Context, key string, verdict PairVerdict) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(verdict)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), payload, c.ttl).Err()
}

func (c *redisVerdictCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
