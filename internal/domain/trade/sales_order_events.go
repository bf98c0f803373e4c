package trade

import (
	"github.com/google/uuid"

	"github.com/mystock/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeSalesOrder = "SalesOrder"

// Event type constants
const (
	EventTypeSalesOrderCreated       = "SalesOrderCreated"
	EventTypeSalesOrderStatusChanged = "SalesOrderStatusChanged"
)

// SalesOrderCreatedEvent is published when a new sales order is created
type SalesOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

// NewSalesOrderCreatedEvent creates a new SalesOrderCreatedEvent
func NewSalesOrderCreatedEvent(order *SalesOrder) *SalesOrderCreatedEvent {
	return &SalesOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCreated, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
	}
}

// SalesOrderStatusChangedEvent is published after a sales order commits a
// status change. The ledger itself is driven synchronously; this event is
// for after-commit observers.
type SalesOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID        `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	OldStatus   SalesOrderStatus `json:"old_status"`
	NewStatus   SalesOrderStatus `json:"new_status"`
	LineCount   int              `json:"line_count"`
}

// NewSalesOrderStatusChangedEvent creates a new SalesOrderStatusChangedEvent
func NewSalesOrderStatusChangedEvent(order *SalesOrder, oldStatus, newStatus SalesOrderStatus) *SalesOrderStatusChangedEvent {
	return &SalesOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderStatusChanged, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
		LineCount:       len(order.Lines),
	}
}
