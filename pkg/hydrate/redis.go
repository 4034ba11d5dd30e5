package hydrate

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClient is the subset of Redis operations RedisStore needs.
// NewGoRedisClient adapts a go-redis client.
type RedisClient interface {
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	// Get returns ErrPayloadNotFound for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)

	Del(ctx context.Context, keys ...string) error
	Close() error
}

// RedisStore is a Store shared by every server instance behind a load
// balancer.
type RedisStore struct {
	client RedisClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Default: "hydrate:payload:".
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(r *RedisStore) {
		r.prefix = prefix
	}
}

// NewRedisStore creates a RedisStore over client.
func NewRedisStore(client RedisClient, opts ...RedisStoreOption) *RedisStore {
	r := &RedisStore{client: client, prefix: "hydrate:payload:"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Save implements Store.
func (r *RedisStore) Save(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return r.Delete(ctx, id)
	}
	return r.client.Set(ctx, r.key(id), payload, ttl)
}

// Load implements Store.
func (r *RedisStore) Load(ctx context.Context, id string) ([]byte, error) {
	return r.client.Get(ctx, r.key(id))
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id))
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Prefix returns the key prefix.
func (r *RedisStore) Prefix() string {
	return r.prefix
}

type goRedisClient struct {
	c *redis.Client
}

// NewGoRedisClient adapts c to RedisClient.
func NewGoRedisClient(c *redis.Client) RedisClient {
	return &goRedisClient{c: c}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr, password string, db int) (RedisClient, error) {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &goRedisClient{c: c}, nil
}

func (g *goRedisClient) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	return g.c.Set(ctx, key, value, expiration).Err()
}

func (g *goRedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := g.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPayloadNotFound
	}
	return b, err
}

func (g *goRedisClient) Del(ctx context.Context, keys ...string) error {
	return g.c.Del(ctx, keys...).Err()
}

func (g *goRedisClient) Close() error {
	return g.c.Close()
}
