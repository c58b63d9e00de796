package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"instatistics/internal/domain"
	"instatistics/pkg/log"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "instatistics:dataset:"

// RedisCache stores datasets as JSON in Redis.
// Lookup failures are logged and reported as misses so the pipeline
// falls back to the source.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// storedPost is the JSON form of a post.
type storedPost struct {
	Timestamp time.Time `json:"ts"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	IsVideo   bool      `json:"video"`
	Shortcode string    `json:"code,omitempty"`
}

// storedDataset is the JSON form of a dataset.
type storedDataset struct {
	Key       string            `json:"key"`
	Source    domain.SourceKind `json:"source"`
	Label     string            `json:"label"`
	Limit     int               `json:"limit,omitempty"`
	FetchedAt time.Time         `json:"fetched_at"`
	Posts     []storedPost      `json:"posts"`
}

// NewRedisCache connects to the Redis server at url (redis://...).
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisCacheWithClient(client, ttl), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get retrieves a dataset from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) (*domain.Dataset, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.GlobalWarnCtx(ctx, "redis cache get failed", "key", key, "error", err)
		return nil, false
	}

	var stored storedDataset
	if err := json.Unmarshal(data, &stored); err != nil {
		log.GlobalWarnCtx(ctx, "redis cache entry corrupt", "key", key, "error", err)
		return nil, false
	}

	ds := &domain.Dataset{
		Key:       stored.Key,
		Source:    stored.Source,
		Label:     stored.Label,
		Limit:     stored.Limit,
		FetchedAt: stored.FetchedAt,
		Posts:     make([]domain.Post, len(stored.Posts)),
	}
	for i, p := range stored.Posts {
		ds.Posts[i] = domain.Post{
			Timestamp: p.Timestamp,
			Likes:     p.Likes,
			Comments:  p.Comments,
			IsVideo:   p.IsVideo,
			Shortcode: p.Shortcode,
		}
	}
	return ds, true
}

// Set stores a dataset in Redis with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, ds *domain.Dataset) {
	stored := storedDataset{
		Key:       ds.Key,
		Source:    ds.Source,
		Label:     ds.Label,
		Limit:     ds.Limit,
		FetchedAt: ds.FetchedAt,
		Posts:     make([]storedPost, len(ds.Posts)),
	}
	for i, p := range ds.Posts {
		stored.Posts[i] = storedPost{
			Timestamp: p.Timestamp,
			Likes:     p.Likes,
			Comments:  p.Comments,
			IsVideo:   p.IsVideo,
			Shortcode: p.Shortcode,
		}
	}

	data, err := json.Marshal(stored)
	if err != nil {
		log.GlobalErrorCtx(ctx, "redis cache encode failed", "key", key, "error", err)
		return
	}

	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		log.GlobalWarnCtx(ctx, "redis cache set failed", "key", key, "error", err)
	}
}

// Invalidate removes a dataset from Redis.
func (c *RedisCache) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		log.GlobalWarnCtx(ctx, "redis cache delete failed", "key", key, "error", err)
	}
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
