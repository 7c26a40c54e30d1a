package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// DefaultMemoryTTL caps how long an entry lives in the memory layer.
const DefaultMemoryTTL = 60 * time.Second

// Manager reads through the memory layer to Redis and writes to both.
type Manager struct {
	memory    *gocache.Cache
	memoryTTL time.Duration
	redis     *redis.Client
}

// NewManager creates a cache manager. A nil Redis client gives a memory-only
// cache. memoryTTL <= 0 uses DefaultMemoryTTL.
func NewManager(redisClient *redis.Client, memoryTTL time.Duration) *Manager {
	if memoryTTL <= 0 {
		memoryTTL = DefaultMemoryTTL
	}
	return &Manager{
		memory:    gocache.New(memoryTTL, 2*memoryTTL),
		memoryTTL: memoryTTL,
		redis:     redisClient,
	}
}

// HasRedis reports whether the shared layer is configured.
func (m *Manager) HasRedis() bool {
	return m.redis != nil
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or entry is expired.
func (m *Manager) Get(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	cacheKey := key.String()

	if v, ok := m.memory.Get(cacheKey); ok {
		entry := v.(*CacheEntry)
		if !entry.IsExpired() {
			CacheHits.WithLabelValues("memory").Inc()
			return entry.clone(), nil
		}
		m.memory.Delete(cacheKey)
	}

	if m.redis == nil {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	data, err := m.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() {
		_ = m.Delete(ctx, key)
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("redis").Inc()
	m.remember(cacheKey, &entry)

	return entry.clone(), nil
}

// Set stores an entry in both layers until its Expires time. Expired entries
// are silently dropped.
func (m *Manager) Set(ctx context.Context, key CacheKey, entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		return nil
	}

	cacheKey := key.String()
	m.remember(cacheKey, entry.clone())

	if m.redis == nil {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	CacheSize.WithLabelValues("redis").Add(float64(len(data)))

	return nil
}

func (m *Manager) remember(cacheKey string, entry *CacheEntry) {
	ttl := min(entry.TTL(), m.memoryTTL)
	if ttl <= 0 {
		return
	}
	m.memory.Set(cacheKey, entry, ttl)
	CacheSize.WithLabelValues("memory").Add(float64(len(entry.Data)))
}

// Delete removes an entry from both layers.
func (m *Manager) Delete(ctx context.Context, key CacheKey) error {
	cacheKey := key.String()
	m.memory.Delete(cacheKey)

	if m.redis == nil {
		return nil
	}
	if err := m.redis.Del(ctx, cacheKey).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// UpdateTTL moves the expiry of an existing entry, e.g. after a 304.
func (m *Manager) UpdateTTL(ctx context.Context, key CacheKey, newExpires time.Time) error {
	entry, err := m.Get(ctx, key)
	if err != nil {
		return err
	}

	entry.Expires = newExpires
	return m.Set(ctx, key, entry)
}

// MemoryItems returns the number of entries currently held in memory.
func (m *Manager) MemoryItems() int {
	return m.memory.ItemCount()
}

// Flush empties the memory layer. Redis entries expire on their own.
func (m *Manager) Flush() {
	m.memory.Flush()
}
