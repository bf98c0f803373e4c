package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mystock/backend/internal/domain/catalog"
	"github.com/mystock/backend/internal/domain/shared"
)

// CategoryService handles product category operations
type CategoryService struct {
	categories catalog.ProductCategoryRepository
	products   catalog.ProductRepository
	logger     *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories catalog.ProductCategoryRepository, products catalog.ProductRepository, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categories: categories,
		products:   products,
		logger:     logger.Named("categories"),
	}
}

// Create creates a new category. Names are unique after normalization.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewProductCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}

	if existing, err := s.categories.FindByName(ctx, category.Name); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, categoryID uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// List retrieves all categories
func (s *CategoryService) List(ctx context.Context, search string, page, pageSize int) ([]CategoryResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	categories, err := s.categories.FindAll(ctx, shared.Filter{
		Page:     page,
		PageSize: pageSize,
		Search:   search,
		OrderBy:  "name",
		OrderDir: "asc",
	})
	if err != nil {
		return nil, err
	}

	return ToCategoryResponses(categories), nil
}

// Update updates a category
func (s *CategoryService) Update(ctx context.Context, categoryID uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := category.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		category.Description = *req.Description
	}

	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// Delete deletes a category. Categories that still have products are kept.
func (s *CategoryService) Delete(ctx context.Context, categoryID uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		return err
	}

	count, err := s.products.Count(ctx, shared.Filter{
		Filters: map[string]interface{}{"category_id": categoryID},
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CATEGORY_IN_USE", "Category still has products")
	}

	return s.categories.Delete(ctx, categoryID)
}
