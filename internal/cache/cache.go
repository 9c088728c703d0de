// Package cache provides Redis-based caching of classification results
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finsift/finsift/internal/models"
	"github.com/finsift/finsift/internal/normalize"
)

// Cache stores classification responses keyed by normalized description and
// amount. A disabled cache is a valid value: every lookup misses and every
// store is a no-op, so callers never branch on configuration.
type Cache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	enabled   bool
}

// Config holds cache configuration
type Config struct {
	URL       string
	KeyPrefix string
	TTL       time.Duration
	Enabled   bool
}

// Disabled returns a cache that never hits. Used when Redis is not
// configured and in tests.
func Disabled() *Cache {
	return &Cache{enabled: false}
}

// New creates a new Cache instance and verifies the connection.
func New(cfg *Config) (*Cache, error) {
	if !cfg.Enabled {
		return Disabled(), nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "tx_classified"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Cache{
		client:    client,
		keyPrefix: prefix,
		ttl:       ttl,
		enabled:   true,
	}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsEnabled returns whether caching is enabled
func (c *Cache) IsEnabled() bool {
	return c.enabled
}

// Ping verifies the Redis connection for readiness checks.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Key builds the cache key for a description/amount pair. The amount is part
// of the identity even though matching ignores it, so future amount-aware
// rules can change results without serving stale entries.
func (c *Cache) Key(text normalize.Text, amount *float64) string {
	amt := "none"
	if amount != nil {
		amt = strconv.FormatFloat(*amount, 'f', -1, 64)
	}
	return c.keyPrefix + ":" + text.String() + ":" + amt
}

// Cacheable reports whether a result for this input should be stored.
// Refund-shaped inputs (negative amounts) are skipped: they are rare and
// their classifications are the ones most likely to change as rules evolve.
func (c *Cache) Cacheable(text normalize.Text, amount *float64) bool {
	if !c.enabled || text.IsEmpty() {
		return false
	}
	return amount == nil || *amount >= 0
}

// Get retrieves a cached classification response. The boolean reports a
// hit; a miss is not an error.
func (c *Cache) Get(ctx context.Context, key string) (models.TransactionResponse, bool, error) {
	var res models.TransactionResponse
	if !c.enabled {
		return res, false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return res, false, nil
	}
	if err != nil {
		return res, false, err
	}

	if err := json.Unmarshal(data, &res); err != nil {
		return res, false, err
	}
	return res, true, nil
}

// Set stores a classification response under the given key.
func (c *Cache) Set(ctx context.Context, key string, res models.TransactionResponse) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(res)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Flush removes every cached response under this cache's prefix.
// Called after a catalog reload so stale results never outlive the rules
// that produced them.
func (c *Cache) Flush(ctx context.Context) error {
	if !c.enabled {
		return nil
	}

	iter := c.client.Scan(ctx, 0, c.keyPrefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}
