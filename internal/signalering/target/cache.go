package target

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"signalering/internal/signalering/models"
)

// Cache stores resolved addresses. A cached nil address is a remembered miss.
type Cache interface {
	Get(ctx context.Context, key string) (addr *models.Address, found bool, err error)
	Set(ctx context.Context, key string, addr *models.Address, ttl time.Duration) error
}

// RedisCache keeps addresses as JSON under a key prefix.
type RedisCache struct {
	client redis.Cmdable
	prefix string
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client, prefix: "signalering:target:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.Address, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get target: %w", err)
	}
	var addr *models.Address
	if err := json.Unmarshal(raw, &addr); err != nil {
		return nil, false, fmt.Errorf("decode cached target: %w", err)
	}
	return addr, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, addr *models.Address, ttl time.Duration) error {
	raw, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("encode cached target: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set target: %w", err)
	}
	return nil
}

// MemoryCache is used when no Redis is configured. Expired entries are
// dropped when read and swept from Set at most once per sweep interval.
type MemoryCache struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	sweepEach time.Duration
	lastSweep time.Time
}

type memoryEntry struct {
	addr      *models.Address
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now, sweepEach: time.Minute}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*models.Address, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.addr, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, addr *models.Address, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if now.Sub(c.lastSweep) >= c.sweepEach {
		for k, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, k)
			}
		}
		c.lastSweep = now
	}
	c.entries[key] = memoryEntry{addr: addr, expiresAt: now.Add(ttl)}
	return nil
}

// Len reports how many entries are held, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
