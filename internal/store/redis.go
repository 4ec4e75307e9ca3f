package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisStateKey = "suddendice:learning-state"

// RedisStore keeps the snapshot blob under a single redis key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("store: ping redis %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Load(ctx context.Context) ([]byte, bool, error) {
	blob, err := r.client.Get(ctx, redisStateKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load redis: %w", err)
	}
	return blob, true, nil
}

func (r *RedisStore) Save(ctx context.Context, blob []byte) error {
	if err := r.client.Set(ctx, redisStateKey, blob, 0).Err(); err != nil {
		return fmt.Errorf("store: save redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error { return r.client.Close() }

// RedisAnalytics backs the analytics counters with redis INCR.
type RedisAnalytics struct {
	client *redis.Client
	prefix string
}

// NewRedisAnalytics wraps an existing client. Keys are namespaced under
// prefix.
func NewRedisAnalytics(client *redis.Client, prefix string) *RedisAnalytics {
	if prefix == "" {
		prefix = "suddendice:stats:"
	}
	return &RedisAnalytics{client: client, prefix: prefix}
}

func (r *RedisAnalytics) Get(ctx context.Context, key string) (int64, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (r *RedisAnalytics) Set(ctx context.Context, key string, value int64) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisAnalytics) Incr(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, r.prefix+key).Result()
}

// Client exposes the underlying connection so hosts can share it with a
// RedisAnalytics.
func (r *RedisStore) Client() *redis.Client { return r.client }
