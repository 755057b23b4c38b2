package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"go-retreat-store/internal/model"
)

const (
	activeProductsKey = "products:active"
	versionKey        = "products:version"
)

// RedisProductCache keeps the store catalog in Redis under a versioned key.
// Invalidate bumps the version; entries of older versions expire with the TTL.
// Every failure is logged and treated as a miss so the database stays authoritative.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

func NewRedisProductCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisProductCache {
	return &RedisProductCache{
		client: client,
		ttl:    ttl,
		prefix: "retreat:",
		logger: logger,
	}
}

// NewRedisProductCacheFromURL parses a redis:// URL
func NewRedisProductCacheFromURL(url string, ttl time.Duration, logger *slog.Logger) (*RedisProductCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisProductCache(redis.NewClient(opt), ttl, logger), nil
}

func (c *RedisProductCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisProductCache) activeKey(version int64) string {
	return fmt.Sprintf("%s%s:v%d", c.prefix, activeProductsKey, version)
}

func (c *RedisProductCache) Version(ctx context.Context) (int64, bool) {
	version, err := c.client.Get(ctx, c.key(versionKey)).Int64()
	switch {
	case err == nil:
		return version, true
	case errors.Is(err, redis.Nil):
		return 0, true
	default:
		c.logger.Warn("redis error, reading products from database", "error", err)
		return 0, false
	}
}

func (c *RedisProductCache) GetActive(ctx context.Context, version int64) ([]model.Product, bool) {
	data, err := c.client.Get(ctx, c.activeKey(version)).Bytes()
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		c.logger.Debug("product cache miss", "version", version)
		return nil, false
	default:
		c.logger.Warn("redis error, reading products from database", "error", err)
		return nil, false
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		c.logger.Warn("failed to unmarshal cached products", "error", err)
		return nil, false
	}
	return products, true
}

func (c *RedisProductCache) SetActive(ctx context.Context, version int64, products []model.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		c.logger.Warn("failed to marshal products", "error", err)
		return
	}
	if err := c.client.Set(ctx, c.activeKey(version), data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache products", "error", err)
	}
}

func (c *RedisProductCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, c.key(versionKey)).Err(); err != nil {
		c.logger.Warn("failed to invalidate product cache", "error", err)
	}
}

func (c *RedisProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisProductCache) Close() error {
	return c.client.Close()
}
