//go:build integration

package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"instatistics/internal/adapters/cache"
	"instatistics/internal/domain"
)

// setupRedisContainer starts a Redis container and returns its URL.
func setupRedisContainer(ctx context.Context, t *testing.T) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("failed to get port: %v", err)
	}

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestIntegration_RedisCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	url := setupRedisContainer(ctx, t)

	c, err := cache.NewRedisCache(ctx, url, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	defer c.Close()

	ds := &domain.Dataset{
		Key:    cache.ProfileKey("natgeo", 50),
		Source: domain.SourceProfile,
		Label:  "natgeo",
		Limit:  50,
		Posts:  []domain.Post{{Timestamp: time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC), Likes: 3}},
	}

	c.Set(ctx, ds.Key, ds)
	got, found := c.Get(ctx, ds.Key)

	if !found {
		t.Fatal("expected dataset to be found")
	}
	if got.Limit != 50 || len(got.Posts) != 1 || got.Posts[0].Likes != 3 {
		t.Errorf("unexpected dataset %+v", got)
	}

	c.Invalidate(ctx, ds.Key)
	if _, found := c.Get(ctx, ds.Key); found {
		t.Error("expected dataset to be invalidated")
	}
}

func TestIntegration_NewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := cache.NewRedisCache(ctx, "redis://127.0.0.1:1/0", time.Minute); err == nil {
		t.Error("expected error for unreachable server")
	}
}
