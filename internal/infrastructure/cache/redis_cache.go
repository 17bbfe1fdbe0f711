package cache

import (
	"context"
	"fmt"
	"time"

	reportapp "github.com/aquagest/backend/internal/application/report"
	"github.com/aquagest/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient creates and pings a Redis client from configuration
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisReportCache caches serialized report payloads in Redis. Failures are
// logged and treated as misses; reports are always recomputable from the
// database.
type RedisReportCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisReportCache creates a report cache over an existing Redis client
func NewRedisReportCache(client *redis.Client, logger *zap.Logger) *RedisReportCache {
	return &RedisReportCache{
		client:    client,
		keyPrefix: "aquagest:",
		logger:    logger,
	}
}

// Get fetches a cached payload; a backend failure counts as a miss
func (c *RedisReportCache) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("report cache read failed",
				zap.String("key", key),
				zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

// Set stores a payload with a TTL, best-effort
func (c *RedisReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		c.logger.Warn("report cache write failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

var _ reportapp.Cache = (*RedisReportCache)(nil)
