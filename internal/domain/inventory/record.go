package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/mystock/backend/internal/domain/shared"
)

// InventoryRecord is the single source of truth for a product's stock.
// One row per product, created lazily on first reference.
//
// OnHand and Reserved are signed on purpose: the business tolerates
// overselling and over-releasing, so neither value has a floor. The store
// applies deltas without validating them; callers decide legality.
type InventoryRecord struct {
	shared.BaseAggregateRoot
	ProductID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	OnHand         int64     `gorm:"not null;default:0"`
	Reserved       int64     `gorm:"not null;default:0"`
	Location       string    `gorm:"type:varchar(255);default:'unspecified'"`
	LastMovementAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// NewInventoryRecord creates an empty record for a product
func NewInventoryRecord(productID uuid.UUID) (*InventoryRecord, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	return &InventoryRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		OnHand:            0,
		Reserved:          0,
		Location:          "unspecified",
		LastMovementAt:    time.Now(),
	}, nil
}

// Available returns the sellable quantity (on hand minus reserved).
// It may be negative; nothing enforces the intended available >= 0 invariant.
func (r *InventoryRecord) Available() int64 {
	return r.OnHand - r.Reserved
}

// IsNegative reports whether either ledger column has gone below zero
func (r *InventoryRecord) IsNegative() bool {
	return r.OnHand < 0 || r.Reserved < 0
}

// Apply adds a delta to the record and stamps the movement time.
// No validation: reservation arithmetic is decided by the engine, and the
// record faithfully stores whatever it is told, negative values included.
func (r *InventoryRecord) Apply(d Delta) {
	before := Delta{OnHand: r.OnHand, Reserved: r.Reserved}

	r.OnHand += d.OnHand
	r.Reserved += d.Reserved

	now := time.Now()
	r.LastMovementAt = now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewStockAdjustedEvent(r, before, d))
}

// SetLocation updates the warehouse location label
func (r *InventoryRecord) SetLocation(location string) {
	if location == "" {
		location = "unspecified"
	}
	r.Location = location
	r.UpdatedAt = time.Now()
}
