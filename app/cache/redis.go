package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	_ FeedCacheInterface   = (*Cache)(nil)
	_ InvalidatorInterface = (*Cache)(nil)
)

// FeedEntry is a built RSS document as stored in the cache.
type FeedEntry struct {
	XML       string    `json:"xml"`
	ItemCount int       `json:"item_count"`
	CachedAt  time.Time `json:"cached_at"`
}

// Cache wraps a Redis client. Every key is prefixed with the namespace so
// Purge only touches this site's entries.
type Cache struct {
	client    *redis.Client
	namespace string
}

func NewCache(ctx context.Context, addr, namespace string) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr, "namespace", namespace)

	return &Cache{
		client:    client,
		namespace: namespace,
	}, nil
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.namespace+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.namespace+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.namespace+key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// FeedKey generates a consistent cache key for a site's feed.
func FeedKey(siteURL string) string {
	hash := sha256.Sum256([]byte(siteURL))
	return fmt.Sprintf("feed:%x", hash[:8])
}

func (c *Cache) SetFeed(ctx context.Context, siteURL string, entry FeedEntry, ttl time.Duration) error {
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode feed entry: %w", err)
	}

	return c.Set(ctx, FeedKey(siteURL), data, ttl)
}

// GetFeed reports a miss for absent or undecodable entries. An undecodable
// entry is removed.
func (c *Cache) GetFeed(ctx context.Context, siteURL string) (*FeedEntry, bool, error) {
	key := FeedKey(siteURL)

	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	var entry FeedEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		slog.Warn("Discarding invalid cached feed", "key", key, "error", err)
		if delErr := c.Delete(ctx, key); delErr != nil {
			slog.Warn("Failed to delete invalid cached feed", "key", key, "error", delErr)
		}
		return nil, false, nil
	}

	return &entry, true, nil
}

// Purge removes every key in the namespace and returns how many were removed.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	var removed int64

	iter := c.client.Scan(ctx, 0, c.namespace+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := c.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to purge key %s: %w", iter.Val(), err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to scan cache keys: %w", err)
	}

	return removed, nil
}

// KeyCount counts the keys in the namespace.
func (c *Cache) KeyCount(ctx context.Context) (int64, error) {
	var count int64

	iter := c.client.Scan(ctx, 0, c.namespace+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return count, fmt.Errorf("failed to scan cache keys: %w", err)
	}

	return count, nil
}

func (c *Cache) Health(ctx context.Context) map[string]interface{} {
	health := map[string]interface{}{
		"status": "healthy",
		"type":   "redis",
	}

	if err := c.client.Ping(ctx).Err(); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
		return health
	}

	if count, err := c.KeyCount(ctx); err == nil {
		health["key_count"] = count
	}

	return health
}

func (c *Cache) Close() error {
	return c.client.Close()
}
