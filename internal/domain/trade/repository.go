package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/mystock/backend/internal/domain/shared"
)

// SalesOrderRepository defines the interface for sales order persistence
type SalesOrderRepository interface {
	// FindByID finds a sales order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// FindByNumber finds a sales order by its order number
	FindByNumber(ctx context.Context, orderNumber string) (*SalesOrder, error)

	// FindLine finds a single persisted line, used for before-image snapshots
	FindLine(ctx context.Context, lineID uuid.UUID) (*SalesOrderLine, error)

	// FindAll finds sales orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]SalesOrder, error)

	// Save creates or updates a sales order together with its lines
	Save(ctx context.Context, order *SalesOrder) error

	// DeleteLine deletes a single line
	DeleteLine(ctx context.Context, lineID uuid.UUID) error

	// Delete deletes a sales order and cascades to its lines
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts sales orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByNumber finds a purchase order by its order number
	FindByNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error)

	// FindLine finds a single persisted line, used for before-image snapshots
	FindLine(ctx context.Context, lineID uuid.UUID) (*PurchaseOrderLine, error)

	// FindAll finds purchase orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)

	// Save creates or updates a purchase order together with its lines
	Save(ctx context.Context, order *PurchaseOrder) error

	// DeleteLine deletes a single line
	DeleteLine(ctx context.Context, lineID uuid.UUID) error

	// Delete deletes a purchase order and cascades to its lines
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts purchase orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
