package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pitchrank/pitchrank-engine/pkg/config"
	"github.com/pitchrank/pitchrank-engine/pkg/database"
)

// RedisTestImage backs cache integration tests.
const RedisTestImage = "redis:7-alpine"

// CacheRedis holds a throwaway Redis instance shared across the test run.
type CacheRedis struct {
	Container testcontainers.Container
	Client    *redis.Client
}

var (
	sharedCacheRedis     *CacheRedis
	sharedCacheRedisOnce sync.Once
	sharedCacheRedisErr  error
)

// GetCacheRedis returns a shared Redis instance for integration tests.
// The container is created once and reused across all tests in the run.
func GetCacheRedis(t *testing.T) *CacheRedis {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedCacheRedisOnce.Do(func() {
		sharedCacheRedis, sharedCacheRedisErr = setupCacheRedis()
	})

	if sharedCacheRedisErr != nil {
		t.Fatalf("Failed to setup cache redis: %v", sharedCacheRedisErr)
	}

	return sharedCacheRedis
}

func setupCacheRedis() (*CacheRedis, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        RedisTestImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	client, err := database.NewRedisClient(&config.RedisConfig{
		Host: host,
		Port: port.Int(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CacheRedis{
		Container: container,
		Client:    client,
	}, nil
}
