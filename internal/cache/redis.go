package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tangle-social/backend/internal/logger"
	"go.uber.org/zap"
)

// RedisClient wraps the redis.Client with centralized connection pooling.
// All methods are nil-safe: a nil *RedisClient behaves as a cache that
// never hits, so the services work with caching disabled.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates and initializes a Redis client with connection
// pooling. Requires REDIS_HOST and optionally REDIS_PORT, REDIS_PASSWORD.
func NewRedisClient(host, port, password string) (*RedisClient, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.ErrorErr("Failed to connect to Redis", err)
		return nil, err
	}

	rc := &RedisClient{client: client}

	logger.Info("Redis client connected", zap.String("address", addr))

	return rc, nil
}

// Close closes the Redis connection gracefully
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

// GetJSON retrieves a cached value and unmarshals it into dest. Returns
// false on miss or when caching is disabled.
func (rc *RedisClient) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if rc == nil || rc.client == nil {
		return false
	}
	raw, err := rc.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// Poisoned entry, drop it
		rc.client.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores a value as JSON with a TTL. Best effort.
func (rc *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if rc == nil || rc.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := rc.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.WarnErr("Cache set failed for "+key, err)
	}
}

// Delete removes keys from the cache. Best effort.
func (rc *RedisClient) Delete(ctx context.Context, keys ...string) {
	if rc == nil || rc.client == nil || len(keys) == 0 {
		return
	}
	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		logger.WarnErr("Cache delete failed", err)
	}
}

// Subscribe opens a pub/sub subscription on the given channels. Returns
// nil when caching is disabled; callers must handle that.
func (rc *RedisClient) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Subscribe(ctx, channels...)
}

// Publish sends a payload to a pub/sub channel. Best effort.
func (rc *RedisClient) Publish(ctx context.Context, channel string, payload interface{}) {
	if rc == nil || rc.client == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := rc.client.Publish(ctx, channel, raw).Err(); err != nil {
		logger.WarnErr("Publish failed for "+channel, err)
	}
}
