package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/mystock/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its unique code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// ProductCategoryRepository defines the interface for category persistence
type ProductCategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductCategory, error)

	// FindByName finds a category by its normalized name
	FindByName(ctx context.Context, name string) (*ProductCategory, error)

	// FindAll finds all categories
	FindAll(ctx context.Context, filter shared.Filter) ([]ProductCategory, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *ProductCategory) error

	// Delete deletes a category
	Delete(ctx context.Context, id uuid.UUID) error
}
