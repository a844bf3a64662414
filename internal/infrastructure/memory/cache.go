package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/viccon/sturdyc"
)

const evictionPercentage = 10

// Cache implements ports.Cache on an in-process sturdyc client. It is meant
// for single-instance deployments and tests; entries are not shared between
// processes.
type Cache struct {
	client *sturdyc.Client[[]byte]
}

// NewCache creates a sharded in-memory cache. Every entry lives for ttl.
func NewCache(capacity, shards int, ttl time.Duration) (*Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("memory cache capacity must be positive, got %d", capacity)
	}
	if shards <= 0 {
		return nil, fmt.Errorf("memory cache shards must be positive, got %d", shards)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("memory cache ttl must be positive, got %s", ttl)
	}
	return &Cache{client: sturdyc.New[[]byte](capacity, shards, ttl, evictionPercentage)}, nil
}

// Get implements Cache.Get.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := c.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	return val, true, nil
}

// Set implements Cache.Set. The per-call ttl is ignored; sturdyc applies
// the ttl the client was built with.
func (c *Cache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.client.Set(key, value)
	return nil
}

// Delete implements Cache.Delete.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.client.Delete(key)
	return nil
}

// Flush implements Cache.Flush.
func (c *Cache) Flush(_ context.Context) error {
	for _, key := range c.client.ScanKeys() {
		c.client.Delete(key)
	}
	return nil
}
