package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mystock/backend/internal/domain/shared"
)

// ProductCategory groups products for reporting and filtering.
type ProductCategory struct {
	shared.BaseEntity
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProductCategory) TableName() string {
	return "product_categories"
}

// NewProductCategory creates a new category with a normalized name
func NewProductCategory(name, description string) (*ProductCategory, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name cannot be empty")
	}

	return &ProductCategory{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Description: description,
	}, nil
}

// Rename updates the category name, keeping it normalized
func (c *ProductCategory) Rename(name string) error {
	name = normalizeName(name)
	if name == "" {
		return shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name cannot be empty")
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	return nil
}

// Product represents a product in the catalog.
// The inventory ledger treats it as an opaque foreign key; the only
// inventory-relevant attribute is the minimum-stock threshold.
type Product struct {
	shared.BaseAggregateRoot
	Code          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	MinStock      int64           `gorm:"not null;default:0"`
	Unit          string          `gorm:"type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(code, name, unit string, categoryID uuid.UUID) (*Product, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	name = normalizeName(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if strings.TrimSpace(unit) == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit of measure cannot be empty")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category ID cannot be empty")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(strings.TrimSpace(code)),
		Name:              name,
		CategoryID:        categoryID,
		PurchasePrice:     decimal.Zero,
		SalePrice:         decimal.Zero,
		Unit:              unit,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	name = normalizeName(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetPrices updates purchase and sale prices
func (p *Product) SetPrices(purchasePrice, salePrice decimal.Decimal) error {
	if purchasePrice.IsNegative() || salePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}

	p.PurchasePrice = purchasePrice
	p.SalePrice = salePrice
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetMinStock sets the minimum stock threshold used for low-stock alerts
func (p *Product) SetMinStock(minStock int64) error {
	if minStock < 0 {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}

	p.MinStock = minStock
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// normalizeName collapses internal whitespace so near-duplicate names collide
func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
