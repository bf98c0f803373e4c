package partner

import (
	"strings"
	"time"

	"github.com/mystock/backend/internal/domain/shared"
)

// Supplier represents a vendor the business purchases from.
type Supplier struct {
	shared.BaseAggregateRoot
	TradeName   string `gorm:"type:varchar(250);not null"`
	TaxID       string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Email       string `gorm:"type:varchar(254)"`
	Phone       string `gorm:"type:varchar(17);not null"`
	Address     string `gorm:"type:varchar(255);not null"`
	City        string `gorm:"type:varchar(100);not null"`
	ContactName string `gorm:"type:varchar(150)"`
	Active      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier
func NewSupplier(tradeName, taxID, phone, address, city string) (*Supplier, error) {
	if strings.TrimSpace(tradeName) == "" {
		return nil, shared.NewDomainError("INVALID_TRADE_NAME", "Trade name cannot be empty")
	}
	if strings.TrimSpace(taxID) == "" {
		return nil, shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot be empty")
	}
	if strings.TrimSpace(phone) == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone cannot be empty")
	}

	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TradeName:         strings.TrimSpace(tradeName),
		TaxID:             strings.ToUpper(strings.TrimSpace(taxID)),
		Phone:             phone,
		Address:           address,
		City:              city,
		Active:            true,
	}, nil
}

// UpdateContact updates contact information
func (s *Supplier) UpdateContact(email, phone, contactName string) {
	s.Email = email
	s.Phone = phone
	s.ContactName = contactName
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Deactivate marks the supplier as inactive without deleting history
func (s *Supplier) Deactivate() {
	s.Active = false
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
