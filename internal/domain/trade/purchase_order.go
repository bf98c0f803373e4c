package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mystock/backend/internal/domain/shared"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending           PurchaseOrderStatus = "pending"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "partially_received"
	PurchaseOrderStatusFullyReceived     PurchaseOrderStatus = "fully_received"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "cancelled"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusPartiallyReceived,
		PurchaseOrderStatusFullyReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// Received reports whether goods have entered inventory in this status
func (s PurchaseOrderStatus) Received() bool {
	return s == PurchaseOrderStatusPartiallyReceived || s == PurchaseOrderStatusFullyReceived
}

// RequiresLines reports whether an order needs at least one line to enter
// this status.
func (s PurchaseOrderStatus) RequiresLines() bool {
	return s.Received()
}

// PurchaseOrderLine represents a line item in a purchase order.
// QuantityReceived is intended to stay within [0, QuantityOrdered] but the
// upper bound is not enforced; the ledger works from deltas either way.
type PurchaseOrderLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityOrdered  int64           `gorm:"not null"`
	QuantityReceived int64           `gorm:"not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// NewPurchaseOrderLine creates a new purchase order line
func NewPurchaseOrderLine(orderID, productID uuid.UUID, quantityOrdered int64, unitPrice, taxRate decimal.Decimal) (*PurchaseOrderLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantityOrdered <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Ordered quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	now := time.Now()
	line := &PurchaseOrderLine{
		ID:              uuid.New(),
		OrderID:         orderID,
		ProductID:       productID,
		QuantityOrdered: quantityOrdered,
		UnitPrice:       unitPrice,
		TaxRate:         taxRate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	line.recalculate()

	return line, nil
}

// PreTaxAmount returns ordered quantity * unit price
func (l *PurchaseOrderLine) PreTaxAmount() decimal.Decimal {
	return decimal.NewFromInt(l.QuantityOrdered).Mul(l.UnitPrice)
}

// recalculate recomputes the derived tax amount and line subtotal
func (l *PurchaseOrderLine) recalculate() {
	preTax := l.PreTaxAmount()
	l.TaxAmount = preTax.Mul(l.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	l.Subtotal = preTax.Add(l.TaxAmount)
}

// PurchaseOrder represents a supplier order aggregate root
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber  string              `gorm:"type:varchar(40);not null;uniqueIndex"`
	SupplierID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	OrderDate    time.Time           `gorm:"not null"`
	ExpectedDate time.Time           `gorm:"not null"`
	Status       PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Subtotal     decimal.Decimal     `gorm:"type:decimal(10,2);not null;default:0"`
	Tax          decimal.Decimal     `gorm:"type:decimal(10,2);not null;default:0"`
	Total        decimal.Decimal     `gorm:"type:decimal(10,2);not null;default:0"`
	// AvgTaxRate is overwritten with tax/subtotal*100 on every totals
	// recalculation even though lines carry their own rates.
	AvgTaxRate decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:0"`
	Notes      string              `gorm:"type:text"`
	Lines      []PurchaseOrderLine `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new purchase order in the pending status
func NewPurchaseOrder(supplierID uuid.UUID, orderDate, expectedDate time.Time) (*PurchaseOrder, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}

	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       generatePurchaseOrderNumber(),
		SupplierID:        supplierID,
		OrderDate:         orderDate,
		ExpectedDate:      expectedDate,
		Status:            PurchaseOrderStatusPending,
		Subtotal:          decimal.Zero,
		Tax:               decimal.Zero,
		Total:             decimal.Zero,
		AvgTaxRate:        decimal.Zero,
		Lines:             make([]PurchaseOrderLine, 0),
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))

	return order, nil
}

// AddLine adds a new line to the order
func (o *PurchaseOrder) AddLine(productID uuid.UUID, quantityOrdered int64, unitPrice, taxRate decimal.Decimal) (*PurchaseOrderLine, error) {
	line, err := NewPurchaseOrderLine(o.ID, productID, quantityOrdered, unitPrice, taxRate)
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.RecalculateTotals()
	o.UpdatedAt = time.Now()

	return line, nil
}

// RemoveLine removes a line from the order.
// The last remaining line cannot be removed; a non-empty order keeps at
// least one line until the whole order is deleted or cancelled.
func (o *PurchaseOrder) RemoveLine(lineID uuid.UUID) error {
	if len(o.Lines) <= 1 {
		return shared.NewDomainError("LAST_LINE", "Cannot remove the last line of a purchase order")
	}

	for idx, line := range o.Lines {
		if line.ID == lineID {
			o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
			o.RecalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// UpdateLineReceived records a direct edit of a line's received quantity
func (o *PurchaseOrder) UpdateLineReceived(lineID uuid.UUID, quantityReceived int64) error {
	if quantityReceived < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity cannot be negative")
	}

	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			o.Lines[idx].QuantityReceived = quantityReceived
			o.Lines[idx].UpdatedAt = time.Now()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// SyncLineReceived sets a line's received quantity to match a ledger-driven
// state transition (e.g. fully received syncs received to ordered).
func (o *PurchaseOrder) SyncLineReceived(lineID uuid.UUID, quantityReceived int64) {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			o.Lines[idx].QuantityReceived = quantityReceived
			o.Lines[idx].UpdatedAt = time.Now()
			return
		}
	}
}

// ChangeStatus moves the order to a new status.
// A status that requires products is refused while the order has no lines.
// Returns the previous status so the caller can drive the ledger.
func (o *PurchaseOrder) ChangeStatus(newStatus PurchaseOrderStatus) (PurchaseOrderStatus, error) {
	previous := o.Status
	if !newStatus.IsValid() {
		return previous, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown purchase order status %q", newStatus))
	}
	if newStatus == previous {
		return previous, nil
	}
	if newStatus.RequiresLines() && len(o.Lines) == 0 {
		return previous, shared.ErrInvalidTransition
	}

	o.Status = newStatus
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, previous, newStatus))

	return previous, nil
}

// CanDelete reports whether the whole order may be deleted.
// Only pending or cancelled orders can be removed.
func (o *PurchaseOrder) CanDelete() bool {
	return o.Status == PurchaseOrderStatusPending || o.Status == PurchaseOrderStatusCancelled
}

// RecalculateTotals recomputes the derived aggregate amounts from the lines,
// including the average tax rate quirk.
func (o *PurchaseOrder) RecalculateTotals() {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for idx := range o.Lines {
		subtotal = subtotal.Add(o.Lines[idx].PreTaxAmount())
		tax = tax.Add(o.Lines[idx].TaxAmount)
	}

	o.Subtotal = subtotal
	o.Tax = tax
	o.Total = subtotal.Add(tax)

	if subtotal.IsPositive() {
		o.AvgTaxRate = tax.Div(subtotal).Mul(decimal.NewFromInt(100)).Round(2)
	} else {
		o.AvgTaxRate = decimal.Zero
	}
}

// Line returns a line by its ID
func (o *PurchaseOrder) Line(lineID uuid.UUID) *PurchaseOrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			return &o.Lines[idx]
		}
	}
	return nil
}

// LineCount returns the number of lines in the order
func (o *PurchaseOrder) LineCount() int {
	return len(o.Lines)
}

// generatePurchaseOrderNumber builds a unique human-facing order code
func generatePurchaseOrderNumber() string {
	return "PED-" + strings.ToUpper(uuid.New().String()[:8])
}
