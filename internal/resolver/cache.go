package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/logging"
	"github.com/JonMunkholm/importdata/internal/store"
)

// Cache remembers directory lookups across rows and runs. A cache failure
// is never fatal: Get reports a miss and Put is dropped.
type Cache interface {
	Get(ctx context.Context, kind domain.DirectoryKind, name string) (uuid.UUID, bool)
	Put(ctx context.Context, kind domain.DirectoryKind, name string, id uuid.UUID)
}

type cacheKey struct {
	kind domain.DirectoryKind
	name string
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]uuid.UUID
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[cacheKey]uuid.UUID)}
}

func (c *MemoryCache) Get(_ context.Context, kind domain.DirectoryKind, name string) (uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.entries[cacheKey{kind, store.NormalizeName(name)}]
	return id, ok
}

func (c *MemoryCache) Put(_ context.Context, kind domain.DirectoryKind, name string, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{kind, store.NormalizeName(name)}] = id
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisCache shares directory lookups between importer processes.
// Each directory kind is one hash keyed by the normalized name.
type RedisCache struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCache returns a cache whose hashes expire ttl after the last write.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: client, prefix: "importdata:dir", ttl: ttl}
}

func (c *RedisCache) hashKey(kind domain.DirectoryKind) string {
	return c.prefix + ":" + string(kind)
}

func (c *RedisCache) Get(ctx context.Context, kind domain.DirectoryKind, name string) (uuid.UUID, bool) {
	result, err := c.redis.HGet(ctx, c.hashKey(kind), store.NormalizeName(name)).Result()
	if err != nil {
		if err != redis.Nil {
			logging.FromContext(ctx).WithError(err).Warn("directory cache read failed")
		}
		return uuid.Nil, false
	}
	id, err := uuid.Parse(result)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (c *RedisCache) Put(ctx context.Context, kind domain.DirectoryKind, name string, id uuid.UUID) {
	key := c.hashKey(kind)
	pipe := c.redis.TxPipeline()
	pipe.HSet(ctx, key, store.NormalizeName(name), id.String())
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("directory cache write failed")
	}
}
