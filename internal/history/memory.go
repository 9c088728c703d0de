package history

import (
	"context"
	"sort"
	"sync"

	"github.com/finsift/finsift/internal/models"
)

// MemoryStore is an in-process Store used when Redis is not configured and
// in tests. History does not survive a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	txs    map[int64]models.Transaction
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{txs: make(map[int64]models.Transaction)}
}

// NextID allocates the next transaction id.
func (s *MemoryStore) NextID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID, nil
}

// Save stores the transaction, replacing any previous record with the same id.
func (s *MemoryStore) Save(ctx context.Context, tx models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[tx.ID] = tx
	return nil
}

// List returns up to limit transactions, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	txs := make([]models.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		txs = append(txs, tx)
	}
	s.mu.RUnlock()

	sort.Slice(txs, func(i, j int) bool { return txs[i].ID > txs[j].ID })
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

// Stats counts stored transactions per category.
func (s *MemoryStore) Stats(ctx context.Context) (models.TransactionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.TransactionStats{Stats: make(map[models.Category]int)}
	for _, tx := range s.txs {
		stats.Stats[tx.Category]++
		stats.TotalTransactions++
	}
	return stats, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
