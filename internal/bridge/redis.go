package bridge

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis is a Backend storing each key as a plain Redis string.  Keys are
// namespaced with a prefix so several deployments can share one server.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis wraps an existing client.  The client stays owned by the caller
// because the HTTP cache and rate limiter share it.
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "listing:state"
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(k string) string { return r.prefix + ":" + k }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	bs, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return bs, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, payload []byte) error {
	return r.rdb.Set(ctx, r.key(key), payload, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.key(key)).Err()
}

func (r *Redis) Close() error { return nil }
