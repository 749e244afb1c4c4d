package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache errors
var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

// CacheConfig defines TTL and key prefix for one kind of cached data
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Shuffle configs never change once written; the TTL only bounds memory.
	ShuffleCacheConfig = CacheConfig{
		TTL:    24 * time.Hour,
		Prefix: "shuffle:",
	}

	// Question banks are read on every start, resume and submit.
	QuestionCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "question:",
	}
)

// CacheHelper provides cache-aside operations over one key prefix. A helper with a nil
// client degrades to a pass-through.
type CacheHelper struct {
	client *redis.Client
	config CacheConfig

	// in-flight background writes
	pending sync.WaitGroup
}

func NewCacheHelper(client *redis.Client, config CacheConfig) *CacheHelper {
	return &CacheHelper{
		client: client,
		config: config,
	}
}

// Key generates a cache key with prefix
func (c *CacheHelper) Key(key string) string {
	return c.config.Prefix + key
}

func (c *CacheHelper) Available() bool {
	return c.client != nil
}

// Get retrieves and unmarshals data from cache
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}

	return nil
}

// Set marshals and stores data using the helper TTL
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}) error {
	if c.client == nil {
		return nil // Graceful degradation when cache not available
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	return c.client.Set(ctx, c.Key(key), data, c.config.TTL).Err()
}

// Delete removes one or more keys
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.Key(key)
	}

	return c.client.Del(ctx, cacheKeys...).Err()
}

// Incr bumps a counter key and returns the new value. Counters never expire.
func (c *CacheHelper) Incr(ctx context.Context, key string) (int64, error) {
	if c.client == nil {
		return 0, ErrCacheNotAvailable
	}

	n, err := c.client.Incr(ctx, c.Key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("cache incr error: %w", err)
	}
	return n, nil
}

// CacheOrExecute implements the cache-aside pattern. Cache failures never fail the call;
// the fetched value is written back in the background.
func (c *CacheHelper) CacheOrExecute(ctx context.Context, key string, dest interface{}, fetchFunc func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}

	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		slog.Info("Cache get error, proceeding to fetch", "error", err, "key", c.Key(key))
	}

	value, err := fetchFunc()
	if err != nil {
		return fmt.Errorf("fetch function error: %w", err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}

	if c.client != nil {
		c.pending.Add(1)
		go func(parentCtx context.Context) {
			defer c.pending.Done()
			ctxWithTimeout, cancel := context.WithTimeout(context.WithoutCancel(parentCtx), 5*time.Second)
			defer cancel()
			if err := c.client.Set(ctxWithTimeout, c.Key(key), data, c.config.TTL).Err(); err != nil {
				slog.Error("Cache set error", "error", err, "key", c.Key(key))
			}
		}(ctx)
	}

	return json.Unmarshal(data, dest)
}

// Wait blocks until background writes started by CacheOrExecute have finished.
func (c *CacheHelper) Wait() {
	c.pending.Wait()
}

// CacheManager holds the helpers used by the service
type CacheManager struct {
	client *redis.Client

	Shuffle  *CacheHelper
	Question *CacheHelper
}

// NewCacheManager creates cache manager with all cache helpers. A zero shuffleTTL keeps
// the default.
func NewCacheManager(client *redis.Client, shuffleTTL time.Duration) *CacheManager {
	shuffleConfig := ShuffleCacheConfig
	if shuffleTTL > 0 {
		shuffleConfig.TTL = shuffleTTL
	}

	return &CacheManager{
		client:   client,
		Shuffle:  NewCacheHelper(client, shuffleConfig),
		Question: NewCacheHelper(client, QuestionCacheConfig),
	}
}

// HealthCheck verifies cache connectivity
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}

	if err := cm.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}

	return nil
}

// Drain waits for background cache writes, bounded by ctx.
func (cm *CacheManager) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		cm.Shuffle.Wait()
		cm.Question.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
