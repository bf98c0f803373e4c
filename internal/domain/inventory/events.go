package inventory

import (
	"github.com/google/uuid"

	"github.com/mystock/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeInventoryRecord = "InventoryRecord"

// Event type constants
const (
	EventTypeStockAdjusted       = "StockAdjusted"
	EventTypeStockBelowThreshold = "StockBelowThreshold"
)

// StockAdjustedEvent is published every time a ledger delta lands on a
// record. It carries the before image and the delta so subscribers can
// reconstruct the movement without reloading the row.
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID      uuid.UUID `json:"product_id"`
	OnHandBefore   int64     `json:"on_hand_before"`
	ReservedBefore int64     `json:"reserved_before"`
	OnHandDelta    int64     `json:"on_hand_delta"`
	ReservedDelta  int64     `json:"reserved_delta"`
	OnHandAfter    int64     `json:"on_hand_after"`
	ReservedAfter  int64     `json:"reserved_after"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(record *InventoryRecord, before Delta, d Delta) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeInventoryRecord, record.ID),
		ProductID:       record.ProductID,
		OnHandBefore:    before.OnHand,
		ReservedBefore:  before.Reserved,
		OnHandDelta:     d.OnHand,
		ReservedDelta:   d.Reserved,
		OnHandAfter:     record.OnHand,
		ReservedAfter:   record.Reserved,
	}
}

// StockBelowThresholdEvent is published when a movement leaves a product's
// available quantity at or below its configured minimum
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	ProductCode string    `json:"product_code"`
	Available   int64     `json:"available"`
	MinStock    int64     `json:"min_stock"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(record *InventoryRecord, productCode string, minStock int64) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeInventoryRecord, record.ID),
		ProductID:       record.ProductID,
		ProductCode:     productCode,
		Available:       record.Available(),
		MinStock:        minStock,
	}
}
