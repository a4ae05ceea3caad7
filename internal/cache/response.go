// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// response.go caches encoded JSON bodies of public listings in Valkey so
// repeated reads skip the database. Admin writes clear the whole cache.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix is the Valkey key prefix for cached responses.
	keyPrefix = "resp:"

	// DefaultTTL is how long a response stays cached.
	DefaultTTL = 2 * time.Minute
)

// Recorder receives hit/miss events. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordCacheHit()
	RecordCacheMiss()
}

// ResponseCache stores response bodies by key. A nil *ResponseCache is a
// valid, always-missing cache.
type ResponseCache struct {
	client   *redis.Client
	ttl      time.Duration
	recorder Recorder
}

// NewResponseCache creates a response cache backed by the given Valkey
// client. recorder may be nil.
func NewResponseCache(client *redis.Client, ttl time.Duration, recorder Recorder) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResponseCache{client: client, ttl: ttl, recorder: recorder}
}

// Get returns the cached body for key. Errors are logged and treated as a miss.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("response cache get error", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	if c.recorder != nil {
		c.recorder.RecordCacheHit()
	}
	return val, true
}

func (c *ResponseCache) miss() {
	if c.recorder != nil {
		c.recorder.RecordCacheMiss()
	}
}

// Set stores body under key with the configured TTL.
func (c *ResponseCache) Set(ctx context.Context, key string, body []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, body, c.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single cached response.
func (c *ResponseCache) Invalidate(ctx context.Context, key string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		slog.Warn("response cache invalidate error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached response by scanning for the prefix.
func (c *ResponseCache) InvalidateAll(ctx context.Context) {
	if c == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("response cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("response cache cleared", "deleted", deleted)
	}
}

// Keys for the cached public listings.
const (
	KeyPosts      = "posts"
	KeyFeatured   = "posts:featured"
	KeyTrending   = "posts:trending"
	KeyCategories = "categories"
)

// CategoryPostsKey returns the cache key for a category's post listing.
func CategoryPostsKey(slug string) string {
	return "categories:" + slug + ":posts"
}
