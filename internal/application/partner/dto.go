package partner

import (
	"time"

	"github.com/google/uuid"

	"github.com/mystock/backend/internal/domain/partner"
)

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	TradeName       string `json:"trade_name" binding:"required,min=1,max=250"`
	TaxID           string `json:"tax_id" binding:"required,min=1,max=20"`
	Email           string `json:"email" binding:"omitempty,email"`
	Phone           string `json:"phone" binding:"required,min=1,max=17"`
	BillingAddress  string `json:"billing_address" binding:"required,max=255"`
	BillingCity     string `json:"billing_city" binding:"required,max=100"`
	DeliveryAddress string `json:"delivery_address" binding:"max=255"`
	DeliveryCity    string `json:"delivery_city" binding:"max=100"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	TradeName       *string `json:"trade_name"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Phone           *string `json:"phone"`
	BillingAddress  *string `json:"billing_address"`
	BillingCity     *string `json:"billing_city"`
	DeliveryAddress *string `json:"delivery_address"`
	DeliveryCity    *string `json:"delivery_city"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID              uuid.UUID `json:"id"`
	TradeName       string    `json:"trade_name"`
	TaxID           string    `json:"tax_id"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone"`
	BillingAddress  string    `json:"billing_address"`
	BillingCity     string    `json:"billing_city"`
	DeliveryAddress string    `json:"delivery_address,omitempty"`
	DeliveryCity    string    `json:"delivery_city,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToCustomerResponse converts a domain Customer to a response DTO
func ToCustomerResponse(customer *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:              customer.ID,
		TradeName:       customer.TradeName,
		TaxID:           customer.TaxID,
		Email:           customer.Email,
		Phone:           customer.Phone,
		BillingAddress:  customer.BillingAddress,
		BillingCity:     customer.BillingCity,
		DeliveryAddress: customer.DeliveryAddress,
		DeliveryCity:    customer.DeliveryCity,
		Active:          customer.Active,
		CreatedAt:       customer.CreatedAt,
		UpdatedAt:       customer.UpdatedAt,
	}
}

// ToCustomerResponses converts a slice of domain customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}

// CreateSupplierRequest represents a request to create a supplier
type CreateSupplierRequest struct {
	TradeName   string `json:"trade_name" binding:"required,min=1,max=250"`
	TaxID       string `json:"tax_id" binding:"required,min=1,max=20"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone" binding:"required,min=1,max=17"`
	Address     string `json:"address" binding:"required,max=255"`
	City        string `json:"city" binding:"required,max=100"`
	ContactName string `json:"contact_name" binding:"max=150"`
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest struct {
	TradeName   *string `json:"trade_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	ContactName *string `json:"contact_name"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID          uuid.UUID `json:"id"`
	TradeName   string    `json:"trade_name"`
	TaxID       string    `json:"tax_id"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	ContactName string    `json:"contact_name,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToSupplierResponse converts a domain Supplier to a response DTO
func ToSupplierResponse(supplier *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:          supplier.ID,
		TradeName:   supplier.TradeName,
		TaxID:       supplier.TaxID,
		Email:       supplier.Email,
		Phone:       supplier.Phone,
		Address:     supplier.Address,
		City:        supplier.City,
		ContactName: supplier.ContactName,
		Active:      supplier.Active,
		CreatedAt:   supplier.CreatedAt,
		UpdatedAt:   supplier.UpdatedAt,
	}
}

// ToSupplierResponses converts a slice of domain suppliers
func ToSupplierResponses(suppliers []partner.Supplier) []SupplierResponse {
	responses := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		responses[i] = ToSupplierResponse(&suppliers[i])
	}
	return responses
}

// PartnerListFilter represents filter options shared by customer and
// supplier lists.
type PartnerListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
