// Package cache is a small byte-oriented cache used for cache-aside reads.
package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache stores opaque values with a TTL. Misses and backend errors look the
// same to callers: the value is simply not there.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

// item 包装缓存数据和过期时间
type item struct {
	data      []byte
	expiresAt time.Time
}

// LRU is an in-process cache with per-entry expiry.
type LRU struct {
	lruCache *lru.Cache[string, item]
	now      func() time.Time
}

// NewLRU creates an LRU holding at most size entries.
func NewLRU(size int) (*LRU, error) {
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, err
	}
	return &LRU{lruCache: l, now: time.Now}, nil
}

func (c *LRU) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	data := make([]byte, len(value))
	copy(data, value)
	c.lruCache.Add(key, item{
		data:      data,
		expiresAt: c.now().Add(ttl),
	})
}

// Get 获取缓存，若不存在或已过期则返回 false
func (c *LRU) Get(_ context.Context, key string) ([]byte, bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil, false
	}

	// 检查过期
	if c.now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		return nil, false
	}

	return val.data, true
}

func (c *LRU) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		c.lruCache.Remove(key)
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Nop) Set(context.Context, string, []byte, time.Duration) {}
func (Nop) Delete(context.Context, ...string)                  {}

var (
	_ Cache = (*LRU)(nil)
	_ Cache = (*Redis)(nil)
	_ Cache = Nop{}
)
