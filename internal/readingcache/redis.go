package readingcache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Redis is a Backend on a Redis server. Key listing uses SCAN so that large
// keyspaces never block the server the way KEYS would.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("readingcache: redis ping failed: %w", err)
	}
	return NewRedisFromClient(rdb, opts.Prefix), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb *redis.Client, prefix string) *Redis {
	return &Redis{client: rdb, prefix: prefix}
}

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *Redis) unkey(k string) string {
	if r.prefix == "" {
		return k
	}
	return strings.TrimPrefix(k, r.prefix+":")
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	deleted := 0
	for start := 0; start < len(keys); start += 500 {
		end := min(start+500, len(keys))
		batch := make([]string, 0, end-start)
		for _, k := range keys[start:end] {
			batch = append(batch, r.key(k))
		}
		n, err := r.client.Del(ctx, batch...).Result()
		deleted += int(n)
		if err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

func (r *Redis) Keys(ctx context.Context, pattern string) ([]string, error) {
	var out []string
	iter := r.client.Scan(ctx, 0, r.key(pattern), 500).Iterator()
	for iter.Next(ctx) {
		out = append(out, r.unkey(iter.Val()))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return uniqueKeys(out), nil
}

// SCAN may return a key more than once while the keyspace is rehashing.
func uniqueKeys(keys []string) []string {
	slices.Sort(keys)
	return slices.Compact(keys)
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Info(ctx context.Context) (BackendInfo, error) {
	info := BackendInfo{Driver: "redis"}

	mem, err := r.client.Info(ctx, "memory").Result()
	if err != nil {
		return info, err
	}
	for _, line := range strings.Split(mem, "\r\n") {
		if v, ok := strings.CutPrefix(line, "used_memory_human:"); ok {
			info.UsedMemory = v
			break
		}
	}

	keys, err := r.Keys(ctx, "reading:*")
	if err != nil {
		return info, err
	}
	info.Keys = int64(len(keys))
	return info, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
