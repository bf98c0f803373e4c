package partner

import (
	"strings"
	"time"

	"github.com/mystock/backend/internal/domain/shared"
)

// Customer represents a client the business sells to.
// Sales orders reference it; the inventory ledger never touches it.
type Customer struct {
	shared.BaseAggregateRoot
	TradeName       string `gorm:"type:varchar(250);not null"`
	TaxID           string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Email           string `gorm:"type:varchar(254);uniqueIndex"`
	Phone           string `gorm:"type:varchar(17);not null"`
	BillingAddress  string `gorm:"type:varchar(255);not null"`
	BillingCity     string `gorm:"type:varchar(100);not null"`
	DeliveryAddress string `gorm:"type:varchar(255)"`
	DeliveryCity    string `gorm:"type:varchar(100)"`
	Active          bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(tradeName, taxID, phone, billingAddress, billingCity string) (*Customer, error) {
	if strings.TrimSpace(tradeName) == "" {
		return nil, shared.NewDomainError("INVALID_TRADE_NAME", "Trade name cannot be empty")
	}
	if strings.TrimSpace(taxID) == "" {
		return nil, shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot be empty")
	}
	if strings.TrimSpace(phone) == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone cannot be empty")
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TradeName:         strings.TrimSpace(tradeName),
		TaxID:             strings.ToUpper(strings.TrimSpace(taxID)),
		Phone:             phone,
		BillingAddress:    billingAddress,
		BillingCity:       billingCity,
		Active:            true,
	}, nil
}

// UpdateContact updates contact information
func (c *Customer) UpdateContact(email, phone string) {
	c.Email = email
	c.Phone = phone
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetDeliveryAddress sets the optional delivery address
func (c *Customer) SetDeliveryAddress(address, city string) {
	c.DeliveryAddress = address
	c.DeliveryCity = city
	c.UpdatedAt = time.Now()
}

// Deactivate marks the customer as inactive without deleting history
func (c *Customer) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
