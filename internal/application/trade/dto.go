package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mystock/backend/internal/domain/trade"
)

// ==================== Sales Order DTOs ====================

// CreateSalesOrderRequest represents a request to create a sales order
type CreateSalesOrderRequest struct {
	CustomerID    uuid.UUID             `json:"customer_id" binding:"required"`
	OrderDate     time.Time             `json:"order_date" binding:"required"`
	DeliveryDate  time.Time             `json:"delivery_date" binding:"required"`
	PaymentMethod string                `json:"payment_method" binding:"required,min=1,max=100"`
	Discount      *decimal.Decimal      `json:"discount"`
	Notes         string                `json:"notes"`
	Lines         []SalesOrderLineInput `json:"lines"`
}

// SalesOrderLineInput represents a line in create or add-line requests.
// A missing tax rate falls back to the default IGIC rate.
type SalesOrderLineInput struct {
	ProductID    uuid.UUID        `json:"product_id" binding:"required"`
	Quantity     int64            `json:"quantity" binding:"required,gt=0"`
	UnitPrice    decimal.Decimal  `json:"unit_price" binding:"required"`
	LineDiscount decimal.Decimal  `json:"line_discount"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
}

// EffectiveTaxRate resolves the line's tax rate, applying the default when
// the caller did not send one.
func (i SalesOrderLineInput) EffectiveTaxRate() decimal.Decimal {
	if i.TaxRate == nil {
		return trade.DefaultTaxRatePercent
	}
	return *i.TaxRate
}

// UpdateSalesOrderRequest represents a request to update order header fields
type UpdateSalesOrderRequest struct {
	OrderDate     *time.Time       `json:"order_date"`
	DeliveryDate  *time.Time       `json:"delivery_date"`
	PaymentMethod *string          `json:"payment_method"`
	Discount      *decimal.Decimal `json:"discount"`
	Notes         *string          `json:"notes"`
}

// UpdateSalesOrderLineRequest represents a full rewrite of an order line
type UpdateSalesOrderLineRequest struct {
	ProductID    uuid.UUID        `json:"product_id" binding:"required"`
	Quantity     int64            `json:"quantity" binding:"required,gt=0"`
	UnitPrice    decimal.Decimal  `json:"unit_price" binding:"required"`
	LineDiscount decimal.Decimal  `json:"line_discount"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
}

// EffectiveTaxRate resolves the line's tax rate, applying the default when
// the caller did not send one.
func (r UpdateSalesOrderLineRequest) EffectiveTaxRate() decimal.Decimal {
	if r.TaxRate == nil {
		return trade.DefaultTaxRatePercent
	}
	return *r.TaxRate
}

// ChangeSalesOrderStatusRequest represents a status transition request
type ChangeSalesOrderStatusRequest struct {
	Status trade.SalesOrderStatus `json:"status" binding:"required"`
}

// SalesOrderListFilter represents filter options for the sales order list
type SalesOrderListFilter struct {
	Search     string                  `form:"search"`
	CustomerID *uuid.UUID              `form:"customer_id"`
	Status     *trade.SalesOrderStatus `form:"status"`
	DateFrom   *time.Time              `form:"date_from"`
	DateTo     *time.Time              `form:"date_to"`
	Page       int                     `form:"page"`
	PageSize   int                     `form:"page_size"`
	OrderBy    string                  `form:"order_by"`
	OrderDir   string                  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SalesOrderResponse represents a sales order in API responses
type SalesOrderResponse struct {
	ID            uuid.UUID                `json:"id"`
	OrderNumber   string                   `json:"order_number"`
	CustomerID    uuid.UUID                `json:"customer_id"`
	OrderDate     time.Time                `json:"order_date"`
	DeliveryDate  time.Time                `json:"delivery_date"`
	Status        string                   `json:"status"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	Discount      decimal.Decimal          `json:"discount"`
	Tax           decimal.Decimal          `json:"tax"`
	Total         decimal.Decimal          `json:"total"`
	PaymentMethod string                   `json:"payment_method"`
	Notes         string                   `json:"notes,omitempty"`
	Lines         []SalesOrderLineResponse `json:"lines"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
	Version       int                      `json:"version"`
}

// SalesOrderLineResponse represents a sales order line in API responses
type SalesOrderLineResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineDiscount decimal.Decimal `json:"line_discount"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// ToSalesOrderResponse converts a domain SalesOrder to a response DTO
func ToSalesOrderResponse(order *trade.SalesOrder) SalesOrderResponse {
	lines := make([]SalesOrderLineResponse, len(order.Lines))
	for i := range order.Lines {
		lines[i] = ToSalesOrderLineResponse(&order.Lines[i])
	}

	return SalesOrderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		OrderDate:     order.OrderDate,
		DeliveryDate:  order.DeliveryDate,
		Status:        order.Status.String(),
		Subtotal:      order.Subtotal,
		Discount:      order.Discount,
		Tax:           order.Tax,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		Notes:         order.Notes,
		Lines:         lines,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
		Version:       order.GetVersion(),
	}
}

// ToSalesOrderLineResponse converts a domain line to a response DTO
func ToSalesOrderLineResponse(line *trade.SalesOrderLine) SalesOrderLineResponse {
	return SalesOrderLineResponse{
		ID:           line.ID,
		ProductID:    line.ProductID,
		Quantity:     line.Quantity,
		UnitPrice:    line.UnitPrice,
		LineDiscount: line.LineDiscount,
		TaxRate:      line.TaxRate,
		TaxAmount:    line.TaxAmount,
		Subtotal:     line.Subtotal,
	}
}

// ToSalesOrderResponses converts a slice of domain orders
func ToSalesOrderResponses(orders []trade.SalesOrder) []SalesOrderResponse {
	responses := make([]SalesOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToSalesOrderResponse(&orders[i])
	}
	return responses
}

// ==================== Purchase Order DTOs ====================

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID   uuid.UUID                `json:"supplier_id" binding:"required"`
	OrderDate    time.Time                `json:"order_date" binding:"required"`
	ExpectedDate time.Time                `json:"expected_date" binding:"required"`
	Notes        string                   `json:"notes"`
	Lines        []PurchaseOrderLineInput `json:"lines"`
}

// PurchaseOrderLineInput represents a line in create or add-line requests
type PurchaseOrderLineInput struct {
	ProductID       uuid.UUID        `json:"product_id" binding:"required"`
	QuantityOrdered int64            `json:"quantity_ordered" binding:"required,gt=0"`
	UnitPrice       decimal.Decimal  `json:"unit_price" binding:"required"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
}

// EffectiveTaxRate resolves the line's tax rate, applying the default when
// the caller did not send one.
func (i PurchaseOrderLineInput) EffectiveTaxRate() decimal.Decimal {
	if i.TaxRate == nil {
		return trade.DefaultTaxRatePercent
	}
	return *i.TaxRate
}

// UpdatePurchaseOrderRequest represents a request to update order header fields
type UpdatePurchaseOrderRequest struct {
	OrderDate    *time.Time `json:"order_date"`
	ExpectedDate *time.Time `json:"expected_date"`
	Notes        *string    `json:"notes"`
}

// UpdateReceivedQuantityRequest represents a direct edit of a line's
// received quantity.
type UpdateReceivedQuantityRequest struct {
	QuantityReceived int64 `json:"quantity_received" binding:"min=0"`
}

// ChangePurchaseOrderStatusRequest represents a status transition request
type ChangePurchaseOrderStatusRequest struct {
	Status trade.PurchaseOrderStatus `json:"status" binding:"required"`
}

// PurchaseOrderListFilter represents filter options for the purchase order list
type PurchaseOrderListFilter struct {
	Search     string                     `form:"search"`
	SupplierID *uuid.UUID                 `form:"supplier_id"`
	Status     *trade.PurchaseOrderStatus `form:"status"`
	DateFrom   *time.Time                 `form:"date_from"`
	DateTo     *time.Time                 `form:"date_to"`
	Page       int                        `form:"page"`
	PageSize   int                        `form:"page_size"`
	OrderBy    string                     `form:"order_by"`
	OrderDir   string                     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID           uuid.UUID                   `json:"id"`
	OrderNumber  string                      `json:"order_number"`
	SupplierID   uuid.UUID                   `json:"supplier_id"`
	OrderDate    time.Time                   `json:"order_date"`
	ExpectedDate time.Time                   `json:"expected_date"`
	Status       string                      `json:"status"`
	Subtotal     decimal.Decimal             `json:"subtotal"`
	Tax          decimal.Decimal             `json:"tax"`
	Total        decimal.Decimal             `json:"total"`
	AvgTaxRate   decimal.Decimal             `json:"avg_tax_rate"`
	Notes        string                      `json:"notes,omitempty"`
	Lines        []PurchaseOrderLineResponse `json:"lines"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	Version      int                         `json:"version"`
}

// PurchaseOrderLineResponse represents a purchase order line in API responses
type PurchaseOrderLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	QuantityOrdered  int64           `json:"quantity_ordered"`
	QuantityReceived int64           `json:"quantity_received"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	Subtotal         decimal.Decimal `json:"subtotal"`
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to a response DTO
func ToPurchaseOrderResponse(order *trade.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseOrderLineResponse, len(order.Lines))
	for i := range order.Lines {
		lines[i] = ToPurchaseOrderLineResponse(&order.Lines[i])
	}

	return PurchaseOrderResponse{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		SupplierID:   order.SupplierID,
		OrderDate:    order.OrderDate,
		ExpectedDate: order.ExpectedDate,
		Status:       order.Status.String(),
		Subtotal:     order.Subtotal,
		Tax:          order.Tax,
		Total:        order.Total,
		AvgTaxRate:   order.AvgTaxRate,
		Notes:        order.Notes,
		Lines:        lines,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
		Version:      order.GetVersion(),
	}
}

// ToPurchaseOrderLineResponse converts a domain line to a response DTO
func ToPurchaseOrderLineResponse(line *trade.PurchaseOrderLine) PurchaseOrderLineResponse {
	return PurchaseOrderLineResponse{
		ID:               line.ID,
		ProductID:        line.ProductID,
		QuantityOrdered:  line.QuantityOrdered,
		QuantityReceived: line.QuantityReceived,
		UnitPrice:        line.UnitPrice,
		TaxRate:          line.TaxRate,
		TaxAmount:        line.TaxAmount,
		Subtotal:         line.Subtotal,
	}
}

// ToPurchaseOrderResponses converts a slice of domain orders
func ToPurchaseOrderResponses(orders []trade.PurchaseOrder) []PurchaseOrderResponse {
	responses := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return responses
}
