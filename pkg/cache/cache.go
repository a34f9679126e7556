package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs. Lock lists change on every checkout/checkin, so they stay short.
const (
	TTLLocks   = 30 * time.Second
	TTLHistory = 2 * time.Minute
	TTLDefault = 1 * time.Minute
)

// Cache key prefixes
const (
	PrefixLocks   = "locks:"
	PrefixHistory = "history:"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Service is the Redis-backed cache for version-control read paths.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Live-lock lists per initiative
	GetLocks(ctx context.Context, initiativeID string, dest interface{}) error
	SetLocks(ctx context.Context, initiativeID string, locks interface{}) error
	InvalidateLocks(ctx context.Context, initiativeID string) error

	// Baseline promotion history per artifact. TTL-bounded staleness only;
	// nothing invalidates these keys on promotion.
	GetBaselineHistory(ctx context.Context, artifactType string, artifactID int64, dest interface{}) error
	SetBaselineHistory(ctx context.Context, artifactType string, artifactID int64, history interface{}) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a new cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether a Redis connection exists
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping tests the Redis connection
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return errors.New("redis client not initialized")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheMiss
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) GetLocks(ctx context.Context, initiativeID string, dest interface{}) error {
	return c.Get(ctx, lockKey(initiativeID), dest)
}

func (c *redisCache) SetLocks(ctx context.Context, initiativeID string, locks interface{}) error {
	return c.Set(ctx, lockKey(initiativeID), locks, TTLLocks)
}

func (c *redisCache) InvalidateLocks(ctx context.Context, initiativeID string) error {
	return c.Delete(ctx, lockKey(initiativeID))
}

func (c *redisCache) GetBaselineHistory(ctx context.Context, artifactType string, artifactID int64, dest interface{}) error {
	return c.Get(ctx, historyKey(artifactType, artifactID), dest)
}

func (c *redisCache) SetBaselineHistory(ctx context.Context, artifactType string, artifactID int64, history interface{}) error {
	return c.Set(ctx, historyKey(artifactType, artifactID), history, TTLHistory)
}

func lockKey(initiativeID string) string {
	return fmt.Sprintf("%s%s", PrefixLocks, initiativeID)
}

func historyKey(artifactType string, artifactID int64) string {
	return fmt.Sprintf("%s%s:%d", PrefixHistory, artifactType, artifactID)
}
