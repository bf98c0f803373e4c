package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/mystock/backend/internal/domain/catalog"
	"github.com/mystock/backend/internal/domain/inventory"
)

// AvailabilityResponse is the availability view of a single product
type AvailabilityResponse struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductCode  string    `json:"product_code"`
	ProductName  string    `json:"product_name"`
	OnHand       int64     `json:"on_hand"`
	Reserved     int64     `json:"reserved"`
	Available    int64     `json:"available"`
	MinStock     int64     `json:"min_stock"`
	BelowMinimum bool      `json:"below_minimum"`
	Location     string    `json:"location"`
}

// ToAvailabilityResponse builds the availability view from a record and its product
func ToAvailabilityResponse(record *inventory.InventoryRecord, product *catalog.Product) *AvailabilityResponse {
	available := record.Available()
	return &AvailabilityResponse{
		ProductID:    record.ProductID,
		ProductCode:  product.Code,
		ProductName:  product.Name,
		OnHand:       record.OnHand,
		Reserved:     record.Reserved,
		Available:    available,
		MinStock:     product.MinStock,
		BelowMinimum: product.MinStock > 0 && available <= product.MinStock,
		Location:     record.Location,
	}
}

// RecordListFilter narrows the record listing
type RecordListFilter struct {
	ProductID *uuid.UUID `form:"product_id"`
	Negative  *bool      `form:"negative"`
	Location  string     `form:"location"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir"`
}

// RecordResponse is the raw ledger row view
type RecordResponse struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	OnHand         int64     `json:"on_hand"`
	Reserved       int64     `json:"reserved"`
	Available      int64     `json:"available"`
	Location       string    `json:"location"`
	LastMovementAt time.Time `json:"last_movement_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToRecordResponse converts a domain record to its response form
func ToRecordResponse(record *inventory.InventoryRecord) *RecordResponse {
	return &RecordResponse{
		ID:             record.ID,
		ProductID:      record.ProductID,
		OnHand:         record.OnHand,
		Reserved:       record.Reserved,
		Available:      record.Available(),
		Location:       record.Location,
		LastMovementAt: record.LastMovementAt,
		UpdatedAt:      record.UpdatedAt,
	}
}
