package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kendall-kelly/otica-api/config"
	"github.com/redis/go-redis/v9"
)

// CacheInterface is the JSON cache-aside store used by the catalog
type CacheInterface interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisCache stores JSON values in Redis
type RedisCache struct {
	client *redis.Client
}

var cacheInstance CacheInterface

// InitCache connects to Redis when REDIS_ADDR is set. Without it the catalog reads the database directly.
func InitCache(ctx context.Context) (CacheInterface, error) {
	cfg := config.GetConfig()
	if cfg == nil || cfg.RedisAddr == "" {
		cacheInstance = nil
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}

	cacheInstance = &RedisCache{client: client}
	return cacheInstance, nil
}

// GetCache returns the initialized cache, or nil when caching is disabled
func GetCache() CacheInterface {
	return cacheInstance
}

// SetCache sets the cache instance (primarily for testing)
func SetCache(cache CacheInterface) {
	cacheInstance = cache
}

// Get unmarshals the cached value into dest. It returns false on a miss or any error.
func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(val, dest) == nil
}

// Set stores value as JSON under key for ttl
func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// Del removes keys
func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}
