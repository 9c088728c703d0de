// Package history persists classified transactions and serves the
// transaction listing and per-category statistics.
package history

import (
	"context"

	"github.com/finsift/finsift/internal/models"
)

// Store records classified transactions. Implementations must be safe for
// concurrent use.
type Store interface {
	// NextID allocates the next transaction identifier.
	NextID(ctx context.Context) (int64, error)

	// Save persists a classified transaction.
	Save(ctx context.Context, tx models.Transaction) error

	// List returns up to limit transactions, newest first. A non-positive
	// limit applies the implementation default.
	List(ctx context.Context, limit int) ([]models.Transaction, error)

	// Stats returns the number of stored transactions per category.
	Stats(ctx context.Context) (models.TransactionStats, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}

// DefaultListLimit caps transaction listings when the caller does not ask
// for a specific page size.
const DefaultListLimit = 100
