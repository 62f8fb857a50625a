package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/clubtools/rotation-planner/internal/planner"
)

// PlanCache handles Redis caching of computed plan results keyed by request
// hash. A nil cache (no Redis configured) is valid and disables caching.
type PlanCache struct {
	client     *redis.Client
	defaultTTL time.Duration
	keyPrefix  string
	logger     *logrus.Logger
}

// NewPlanCache connects to Redis and returns a plan cache. An empty redisURL
// returns (nil, nil): caching disabled.
func NewPlanCache(redisURL string, ttl time.Duration, logger *logrus.Logger) (*PlanCache, error) {
	if redisURL == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &PlanCache{
		client:     client,
		defaultTTL: ttl,
		keyPrefix:  "rotation:plan:",
		logger:     logger,
	}, nil
}

// Get returns the cached plan for the request hash, or nil on miss.
func (c *PlanCache) Get(ctx context.Context, requestHash string) (*planner.PlanResult, error) {
	if c == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, c.keyPrefix+requestHash).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result planner.PlanResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.WithError(err).Warn("Discarding corrupt cached plan")
		return nil, nil
	}
	return &result, nil
}

// Set stores a plan result under the request hash.
func (c *PlanCache) Set(ctx context.Context, requestHash string, result *planner.PlanResult) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.keyPrefix+requestHash, raw, c.defaultTTL).Err()
}

// Close releases the Redis connection.
func (c *PlanCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
