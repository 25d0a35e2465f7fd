//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"kycreview/internal/platform/config"
	redisclient "kycreview/internal/platform/redis"
)

// RedisContainer wraps a testcontainers Redis instance used as the cache
// invalidation bus.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
	Client    *redis.Client
}

// NewRedisContainer starts a new Redis container.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	rc := &RedisContainer{Container: container, URL: url}
	rc.Client = rc.connect(t)

	// The container is shared through Manager; Ryuk removes it when the test
	// binary exits.
	return rc
}

// NewClient opens an additional connection pool, as a second console
// process would. It is closed when t finishes.
func (r *RedisContainer) NewClient(t *testing.T) *redis.Client {
	t.Helper()
	client := r.connect(t)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func (r *RedisContainer) connect(t *testing.T) *redis.Client {
	t.Helper()
	client, err := redisclient.New(context.Background(), config.RedisConfig{
		URL:          r.URL,
		PoolSize:     4,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	return client.Client
}

// FlushAll removes all keys from the Redis database.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
