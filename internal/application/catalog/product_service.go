package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mystock/backend/internal/domain/catalog"
	"github.com/mystock/backend/internal/domain/inventory"
	"github.com/mystock/backend/internal/domain/shared"
)

// ProductService handles product catalog operations
type ProductService struct {
	products   catalog.ProductRepository
	categories catalog.ProductCategoryRepository
	records    inventory.InventoryRecordRepository
	logger     *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	products catalog.ProductRepository,
	categories catalog.ProductCategoryRepository,
	records inventory.InventoryRecordRepository,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		products:   products,
		categories: categories,
		records:    records,
		logger:     logger.Named("products"),
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if _, err := s.categories.FindByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	if existing, err := s.products.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	product, err := catalog.NewProduct(req.Code, req.Name, req.Unit, req.CategoryID)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description

	if err := product.SetPrices(req.PurchasePrice, req.SalePrice); err != nil {
		return nil, err
	}
	if err := product.SetMinStock(req.MinStock); err != nil {
		return nil, err
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("code", product.Code),
		zap.String("product_id", product.ID.String()),
	)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetByCode retrieves a product by its unique code
func (s *ProductService) GetByCode(ctx context.Context, code string) (*ProductResponse, error) {
	product, err := s.products.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.CategoryID != nil {
		domainFilter.Filters["category_id"] = *filter.CategoryID
	}
	if filter.Unit != "" {
		domainFilter.Filters["unit"] = filter.Unit
	}

	products, err := s.products.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.products.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductResponses(products), total, nil
}

// Update updates a product. The code is immutable once created.
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	name := product.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := product.Description
	if req.Description != nil {
		description = *req.Description
	}
	if err := product.Update(name, description); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *req.CategoryID
	}

	if req.PurchasePrice != nil || req.SalePrice != nil {
		purchase := product.PurchasePrice
		sale := product.SalePrice
		if req.PurchasePrice != nil {
			purchase = *req.PurchasePrice
		}
		if req.SalePrice != nil {
			sale = *req.SalePrice
		}
		if err := product.SetPrices(purchase, sale); err != nil {
			return nil, err
		}
	}

	if req.MinStock != nil {
		if err := product.SetMinStock(*req.MinStock); err != nil {
			return nil, err
		}
	}

	if req.Unit != nil && *req.Unit != "" {
		product.Unit = *req.Unit
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete deletes a product. A product whose ledger record still carries
// stock or reservations cannot be removed.
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return err
	}

	record, err := s.records.FindByProduct(ctx, productID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if record != nil && (record.OnHand != 0 || record.Reserved != 0) {
		return shared.NewDomainError("PRODUCT_IN_USE", "Product still has stock or reservations")
	}

	if record != nil {
		if err := s.records.Delete(ctx, productID); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
	}

	return s.products.Delete(ctx, productID)
}
