package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"wildtrail/internal/adapters/observability"
)

// Cache is the JSON read-through cache for catalog tabs.
type Cache struct{ c *redis.Client }

func NewClient(addr, pass string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

func New(c *redis.Client) *Cache { return &Cache{c: c} }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("catalog", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(v, dst); err != nil {
		// unreadable entry, e.g. written by an older schema: treat as a miss
		_ = r.c.Del(ctx, key).Err()
		observability.ObserveCache("catalog", "miss")
		return false, nil
	}
	observability.ObserveCache("catalog", "hit")
	return true, nil
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("catalog", "set")
	return r.c.Set(ctx, key, b, time.Duration(ttlSec)*time.Second).Err()
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("catalog", "del")
	return r.c.Del(ctx, key).Err()
}

// Ping is used by the readiness check.
func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }
