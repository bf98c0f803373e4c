package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mystock/backend/internal/domain/shared"
)

// SalesOrderStatus represents the status of a sales order
type SalesOrderStatus string

const (
	SalesOrderStatusPending    SalesOrderStatus = "pending"
	SalesOrderStatusProcessing SalesOrderStatus = "processing"
	// SalesOrderStatusShipped carries full ledger rules but no service flow
	// reaches it; it is kept for a future shipping step.
	SalesOrderStatusShipped   SalesOrderStatus = "shipped"
	SalesOrderStatusDelivered SalesOrderStatus = "delivered"
	SalesOrderStatusCancelled SalesOrderStatus = "cancelled"
)

// IsValid checks if the status is a valid SalesOrderStatus
func (s SalesOrderStatus) IsValid() bool {
	switch s {
	case SalesOrderStatusPending, SalesOrderStatusProcessing, SalesOrderStatusShipped,
		SalesOrderStatusDelivered, SalesOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SalesOrderStatus
func (s SalesOrderStatus) String() string {
	return string(s)
}

// Reserves reports whether lines of an order in this status hold a stock
// reservation without having consumed physical stock.
func (s SalesOrderStatus) Reserves() bool {
	return s == SalesOrderStatusPending || s == SalesOrderStatusProcessing
}

// Consumes reports whether lines of an order in this status have physically
// left inventory.
func (s SalesOrderStatus) Consumes() bool {
	return s == SalesOrderStatusShipped || s == SalesOrderStatusDelivered
}

// RequiresLines reports whether an order needs at least one line to enter
// this status.
func (s SalesOrderStatus) RequiresLines() bool {
	return s.Consumes()
}

// DefaultTaxRatePercent is the IGIC rate applied when a line does not
// specify one.
var DefaultTaxRatePercent = decimal.NewFromFloat(7.00)

// SalesOrderLine represents a line item in a sales order.
// Lines have no state of their own; the ledger effect of a line write is
// decided by the parent order's status at the time of the write.
type SalesOrderLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity     int64           `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	LineDiscount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	TaxRate      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (SalesOrderLine) TableName() string {
	return "sales_order_lines"
}

// NewSalesOrderLine creates a new sales order line
func NewSalesOrderLine(orderID, productID uuid.UUID, quantity int64, unitPrice, lineDiscount, taxRate decimal.Decimal) (*SalesOrderLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if lineDiscount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Line discount cannot be negative")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	now := time.Now()
	line := &SalesOrderLine{
		ID:           uuid.New(),
		OrderID:      orderID,
		ProductID:    productID,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		LineDiscount: lineDiscount,
		TaxRate:      taxRate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	line.recalculate()

	return line, nil
}

// PreTaxAmount returns quantity * unit price - line discount
func (l *SalesOrderLine) PreTaxAmount() decimal.Decimal {
	return decimal.NewFromInt(l.Quantity).Mul(l.UnitPrice).Sub(l.LineDiscount)
}

// recalculate recomputes the derived tax amount and line subtotal
func (l *SalesOrderLine) recalculate() {
	preTax := l.PreTaxAmount()
	l.TaxAmount = preTax.Mul(l.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	l.Subtotal = preTax.Add(l.TaxAmount)
}

// SalesOrder represents a customer order aggregate root.
// Aggregate totals are derived from the lines; the inventory ledger is the
// single source of truth for stock, the order never caches quantities on hand.
type SalesOrder struct {
	shared.BaseAggregateRoot
	OrderNumber   string           `gorm:"type:varchar(40);not null;uniqueIndex"`
	CustomerID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	OrderDate     time.Time        `gorm:"not null"`
	DeliveryDate  time.Time        `gorm:"not null"`
	Status        SalesOrderStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Subtotal      decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	Discount      decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	Tax           decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	Total         decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	PaymentMethod string           `gorm:"type:varchar(100);not null"`
	Notes         string           `gorm:"type:text"`
	Lines         []SalesOrderLine `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// NewSalesOrder creates a new sales order in the pending status
func NewSalesOrder(customerID uuid.UUID, orderDate, deliveryDate time.Time, paymentMethod string) (*SalesOrder, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if paymentMethod == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method cannot be empty")
	}

	order := &SalesOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       generateSalesOrderNumber(),
		CustomerID:        customerID,
		OrderDate:         orderDate,
		DeliveryDate:      deliveryDate,
		Status:            SalesOrderStatusPending,
		Subtotal:          decimal.Zero,
		Discount:          decimal.Zero,
		Tax:               decimal.Zero,
		Total:             decimal.Zero,
		PaymentMethod:     paymentMethod,
		Lines:             make([]SalesOrderLine, 0),
	}

	order.AddDomainEvent(NewSalesOrderCreatedEvent(order))

	return order, nil
}

// AddLine adds a new line to the order. Lines may be added in any status;
// whether the write has a ledger effect is decided by the reservation engine.
func (o *SalesOrder) AddLine(productID uuid.UUID, quantity int64, unitPrice, lineDiscount, taxRate decimal.Decimal) (*SalesOrderLine, error) {
	line, err := NewSalesOrderLine(o.ID, productID, quantity, unitPrice, lineDiscount, taxRate)
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.RecalculateTotals()
	o.UpdatedAt = time.Now()

	return line, nil
}

// UpdateLine updates an existing line's product, quantity and pricing
func (o *SalesOrder) UpdateLine(lineID, productID uuid.UUID, quantity int64, unitPrice, lineDiscount, taxRate decimal.Decimal) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			line := &o.Lines[idx]
			line.ProductID = productID
			line.Quantity = quantity
			line.UnitPrice = unitPrice
			line.LineDiscount = lineDiscount
			line.TaxRate = taxRate
			line.recalculate()
			line.UpdatedAt = time.Now()

			o.RecalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// RemoveLine removes a line from the order
func (o *SalesOrder) RemoveLine(lineID uuid.UUID) error {
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

// ChangeStatus moves the order to a new status.
// A status that requires products is refused while the order has no lines;
// the order keeps its previous status. Returns the previous status so the
// caller can drive the ledger for the transition.
func (o *SalesOrder) ChangeStatus(newStatus SalesOrderStatus) (SalesOrderStatus, error) {
	previous := o.Status
	if !newStatus.IsValid() {
		return previous, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown sales order status %q", newStatus))
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

	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(o, previous, newStatus))

	return previous, nil
}

// CanDelete reports whether the whole order may be deleted.
// Only cancelled orders can be removed; everything else keeps its history.
func (o *SalesOrder) CanDelete() bool {
	return o.Status == SalesOrderStatusCancelled
}

// RecalculateTotals recomputes the derived aggregate amounts from the lines.
// The general discount applies to the pre-tax subtotal only.
func (o *SalesOrder) RecalculateTotals() {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for idx := range o.Lines {
		subtotal = subtotal.Add(o.Lines[idx].PreTaxAmount())
		tax = tax.Add(o.Lines[idx].TaxAmount)
	}

	o.Subtotal = subtotal
	o.Tax = tax
	o.Total = subtotal.Sub(o.Discount).Add(tax)
}

// ApplyDiscount sets the order-level discount and recomputes totals
func (o *SalesOrder) ApplyDiscount(discount decimal.Decimal) error {
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}

	o.Discount = discount
	o.RecalculateTotals()
	o.UpdatedAt = time.Now()

	return nil
}

// Line returns a line by its ID
func (o *SalesOrder) Line(lineID uuid.UUID) *SalesOrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			return &o.Lines[idx]
		}
	}
	return nil
}

// LineCount returns the number of lines in the order
func (o *SalesOrder) LineCount() int {
	return len(o.Lines)
}

// generateSalesOrderNumber builds a unique human-facing order code
func generateSalesOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.New().String()[:8])
}
