package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// readThrough returns the JSON value cached under key, or calls load and
// caches its result for ttl. Redis failures degrade to calling load.
func readThrough[T any](ctx context.Context, rdb *redis.Client, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	raw, err := rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			return v, nil
		}
		log.Printf("[CACHE] corrupted value at %s, dropping it", key)
		forget(ctx, rdb, key)
	case !errors.Is(err, redis.Nil):
		log.Printf("[CACHE] read %s: %v", key, err)
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	remember(ctx, rdb, key, v, ttl)
	return v, nil
}

func remember(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[CACHE] encode %s: %v", key, err)
		return
	}
	if err := rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("[CACHE] write %s: %v", key, err)
	}
}

func forget(ctx context.Context, rdb *redis.Client, keys ...string) {
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[CACHE] invalidate %v: %v", keys, err)
	}
}
