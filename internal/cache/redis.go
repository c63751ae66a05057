package cache

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ Cache = (*Redis)(nil)

// Redis implements Cache on top of a shared go-redis client.
type Redis struct {
	client *redis.Client
	lg     *zap.Logger
}

// NewRedis connects to redisURL and verifies the connection with a ping.
func NewRedis(ctx context.Context, redisURL string, lg *zap.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}
	return &Redis{client: client, lg: lg}, nil
}

// Client exposes the underlying connection for health checks.
func (r *Redis) Client() *redis.Client { return r.client }

// Close releases the connection pool.
func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.lg.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.lg.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.lg.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *Redis) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) ([]byte, error) {
	if val, ok := r.Get(ctx, key); ok {
		return val, nil
	}
	val, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	r.Set(ctx, key, val, ttl)
	return val, nil
}
