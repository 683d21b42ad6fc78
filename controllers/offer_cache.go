package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	offerCachePrefix = "offer:"
	offerCacheTTL    = 10 * time.Minute
)

// OfferCache holds rendered offer lists. Any write to offers invalidates all of it.
type OfferCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Invalidate(ctx context.Context)
}

type RedisOfferCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisOfferCache(client *redis.Client) *RedisOfferCache {
	return &RedisOfferCache{client: client, ttl: offerCacheTTL}
}

func (c *RedisOfferCache) Close() error {
	return c.client.Close()
}

func (c *RedisOfferCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Redis GET failed", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

func (c *RedisOfferCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		slog.Warn("Failed to cache response", "key", key, "error", err)
	}
}

func (c *RedisOfferCache) Invalidate(ctx context.Context) {
	const scanPattern = offerCachePrefix + "*"
	const scanCount = 100

	var keysToDelete []string
	var cursor uint64
	for {
		var currentKeys []string
		var err error
		currentKeys, cursor, err = c.client.Scan(ctx, cursor, scanPattern, scanCount).Result()
		if err != nil {
			slog.Error("Redis SCAN failed", "pattern", scanPattern, "error", err)
			return
		}
		keysToDelete = append(keysToDelete, currentKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keysToDelete) == 0 {
		return
	}

	pipe := c.client.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("Failed to delete offer cache keys", "count", len(keysToDelete), "error", err)
		return
	}
	slog.Debug("Offer cache invalidated", "deleted", len(keysToDelete))
}

// NoopCache is used when no Redis address is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (NoopCache) Set(context.Context, string, []byte)        {}
func (NoopCache) Invalidate(context.Context)                 {}

func generateCacheKey(userID string, queryParams url.Values) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(userID)
	sb.WriteString(":")

	for _, key := range keys {
		values := append([]string(nil), queryParams[key]...)
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return offerCachePrefix + hex.EncodeToString(sum[:])
}

// invalidateAsync drops cached lists without holding up the response.
func invalidateAsync(cache OfferCache) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cache.Invalidate(ctx)
	}()
}
