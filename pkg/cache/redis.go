package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a small JSON read-through cache. A nil *Cache is valid and never hits, so
// callers do not branch on whether Redis is configured.
type Cache struct {
	rdb    *redis.Client
	prefix string
}

// Open connects to Redis at addr. An empty addr or a failed ping disables caching.
func Open(ctx context.Context, addr, prefix string) *Cache {
	if addr == "" {
		log.Printf("[cache] action=open msg=REDIS_ADDR not set, caching disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[cache] action=open addr=%s err=%v", addr, err)
		_ = rdb.Close()
		return nil
	}
	return &Cache{rdb: rdb, prefix: prefix}
}

// New wraps an existing client.
func New(rdb *redis.Client, prefix string) *Cache {
	if rdb == nil {
		return nil
	}
	return &Cache{rdb: rdb, prefix: prefix}
}

// GetJSON reports whether key was found and decoded into dst.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	if c == nil {
		return false
	}
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[cache] action=get key=%s err=%v", key, err)
		}
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+key, b, ttl).Err(); err != nil {
		log.Printf("[cache] action=set key=%s err=%v", key, err)
	}
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		log.Printf("[cache] action=delete keys=%v err=%v", keys, err)
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
