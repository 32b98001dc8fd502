package repository

import (
	"context"
	"time"

	"agromarket/internal/domain/cart"
	"agromarket/internal/domain/catalog"
	"agromarket/internal/domain/outbox"
)

// OutboxRepository is the persistence contract for the offline order
// outbox. The sync engine only ever reads unsynced records and flips the
// synced flag; it never deletes. PurgeSynced exists for the caller-side
// cleanup of records that were already delivered.
type OutboxRepository interface {
	Insert(ctx context.Context, order *outbox.QueuedOrder) (int64, error)
	FindByID(ctx context.Context, localID int64) (*outbox.QueuedOrder, error)

	// ListUnsynced returns a point-in-time snapshot of all unsynced
	// records in insertion order.
	ListUnsynced(ctx context.Context) ([]outbox.QueuedOrder, error)

	// MarkSynced flips the synced flag for one record. The transition
	// is one-way.
	MarkSynced(ctx context.Context, localID int64) error

	CountUnsynced(ctx context.Context) (int64, error)
	PurgeSynced(ctx context.Context, before time.Time) (int64, error)
}

// ProductRepository caches catalogue snapshots for offline browsing.
type ProductRepository interface {
	// ReplaceAll atomically swaps the whole cached catalogue.
	ReplaceAll(ctx context.Context, products []catalog.Product) error

	// List returns cached products, optionally filtered by region.
	// An empty region returns everything.
	List(ctx context.Context, region string) ([]catalog.Product, error)
}

// CartRepository persists the shopping cart between app sessions.
type CartRepository interface {
	Add(ctx context.Context, line *cart.Line) (int64, error)
	List(ctx context.Context) ([]cart.Line, error)
	Clear(ctx context.Context) error
}
