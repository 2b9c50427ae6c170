package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis adapter.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds dialing and each read/write on the connection.
	Timeout time.Duration
}

// RedisStore is a Store backed by a Redis server.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedis creates a Redis-backed store. No connection is made until first use.
func NewRedis(opts RedisOptions) *RedisStore {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return NewRedisFromClient(redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		// Guard decides what a failure means; no hidden retries here.
		MaxRetries: -1,
	}))
}

// NewRedisFromClient wraps an existing client. The store takes ownership of it.
func NewRedisFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) (int64, error) {
	return r.client.Del(ctx, key).Result()
}

// TTL uses PTTL so sub-second remaining life is not rounded away.
func (r *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := r.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	switch d {
	case -2:
		return TTLMissing, nil
	case -1:
		return TTLNoExpiry, nil
	}
	return d, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
