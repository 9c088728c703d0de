package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finsift/finsift/internal/models"
)

const (
	idCounterKey = "tx:id_counter"
	txKeyPrefix  = "tx:"
)

// RedisStore persists transactions as JSON blobs under tx:<id>, with ids
// allocated from a Redis counter.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NextID allocates the next transaction id via INCR.
func (s *RedisStore) NextID(ctx context.Context) (int64, error) {
	return s.client.Incr(ctx, idCounterKey).Result()
}

// Save stores the transaction under tx:<id>.
func (s *RedisStore) Save(ctx context.Context, tx models.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, fmt.Sprintf("%s%d", txKeyPrefix, tx.ID), data, 0).Err()
}

// List scans tx:* keys and returns the newest transactions first. SCAN order
// is unspecified, so results are sorted by id before trimming.
func (s *RedisStore) List(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var keys []string
	iter := s.client.Scan(ctx, 0, txKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if iter.Val() == idCounterKey {
			continue
		}
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []models.Transaction{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	txs := make([]models.Transaction, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // key expired between SCAN and MGET
		}
		var tx models.Transaction
		if err := json.Unmarshal([]byte(raw), &tx); err != nil {
			continue
		}
		txs = append(txs, tx)
	}

	sort.Slice(txs, func(i, j int) bool { return txs[i].ID > txs[j].ID })
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

// Stats counts stored transactions per category.
func (s *RedisStore) Stats(ctx context.Context) (models.TransactionStats, error) {
	txs, err := s.List(ctx, int(^uint(0)>>1))
	if err != nil {
		return models.TransactionStats{}, err
	}

	stats := models.TransactionStats{Stats: make(map[models.Category]int)}
	for _, tx := range txs {
		stats.Stats[tx.Category]++
		stats.TotalTransactions++
	}
	return stats, nil
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
