package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

var _ Cache = (*Memory)(nil)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory implements Cache with a bounded in-process LRU. It backs tests and
// deployments without a Redis, honoring per-entry TTLs by checking the
// deadline on read.
type Memory struct {
	lru *lru.Cache[string, memoryEntry]
}

// NewMemory creates an in-memory cache holding at most size entries.
func NewMemory(size int) (*Memory, error) {
	c, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &Memory{lru: c}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := m.lru.Get(key)
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		m.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.lru.Add(key, e)
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.lru.Remove(key)
}

func (m *Memory) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) ([]byte, error) {
	if val, ok := m.Get(ctx, key); ok {
		return val, nil
	}
	val, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	m.Set(ctx, key, val, ttl)
	return val, nil
}
