// Package cache provides the key/value cache port used by the order service.
//
// The cache is an optimization, never a source of truth: Set and Delete are
// best-effort and adapter failures are logged and swallowed, so a broken cache
// degrades the service to plain repository reads instead of failing requests.
package cache

import (
	"context"
	"time"
)

// ComputeFunc produces the value for a key on a cache miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Cache is the port implemented by the Redis and in-memory adapters.
//
// GetOrCompute invokes compute only on a miss and stores the result when
// compute succeeds. Concurrent misses for the same key may each recompute
// independently; recomputation is an idempotent read, so no single-flight
// coordination is done.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) ([]byte, error)
}
