package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-retreat-store/internal/model"
)

func TestNewRedisProductCacheFromURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := NewRedisProductCacheFromURL("redis://localhost:6379/2", time.Minute, logger)
	require.NoError(t, err)
	assert.Equal(t, "retreat:products:version", c.key(versionKey))
	assert.Equal(t, "retreat:products:active:v3", c.activeKey(3))
	assert.NoError(t, c.Close())

	_, err = NewRedisProductCacheFromURL("not a url", time.Minute, logger)
	assert.Error(t, err)
}

func TestRedisProductCache_UnreachableServerIsAMiss(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisProductCache(client, time.Minute, logger)
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, ok := c.Version(ctx)
	assert.False(t, ok)
	c.SetActive(ctx, 0, []model.Product{{Name: "Coffee", Price: 500}})
	products, ok := c.GetActive(ctx, 0)
	assert.False(t, ok)
	assert.Nil(t, products)
	c.Invalidate(ctx)
	assert.Error(t, c.Ping(ctx))
}
