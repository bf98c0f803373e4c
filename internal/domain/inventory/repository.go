package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/mystock/backend/internal/domain/shared"
)

// InventoryRecordRepository defines the interface for ledger persistence.
//
// ApplyDelta is the only mutation path the reservation engine uses. An
// implementation must make each call atomic per product: load the row under
// an exclusive lock (creating it first if missing), add the delta, persist.
// When the lock cannot be obtained within the configured timeout it returns
// shared.ErrConcurrencyTimeout so the caller can retry.
type InventoryRecordRepository interface {
	// FindByProduct finds the record for a product, shared.ErrNotFound if absent
	FindByProduct(ctx context.Context, productID uuid.UUID) (*InventoryRecord, error)

	// GetOrCreate returns the record for a product, creating an empty one
	// when none exists. The created flag reports whether a row was inserted.
	GetOrCreate(ctx context.Context, productID uuid.UUID) (record *InventoryRecord, created bool, err error)

	// ApplyDelta atomically adds a delta to a product's record and returns
	// the updated row
	ApplyDelta(ctx context.Context, productID uuid.UUID, d Delta) (*InventoryRecord, error)

	// FindAll finds inventory records matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryRecord, error)

	// Save creates or updates a record outside the delta path
	Save(ctx context.Context, record *InventoryRecord) error

	// Delete removes a product's record
	Delete(ctx context.Context, productID uuid.UUID) error

	// Count counts records matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
