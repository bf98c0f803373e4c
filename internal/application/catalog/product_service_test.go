package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mystock/backend/internal/domain/catalog"
	"github.com/mystock/backend/internal/domain/inventory"
	"github.com/mystock/backend/internal/domain/shared"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockCategoryRepository is a mock implementation of ProductCategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductCategory), args.Error(1)
}

func (m *MockCategoryRepository) FindByName(ctx context.Context, name string) (*catalog.ProductCategory, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductCategory), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ProductCategory, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ProductCategory), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.ProductCategory) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInventoryRecordRepository is a mock implementation of InventoryRecordRepository
type MockInventoryRecordRepository struct {
	mock.Mock
}

func (m *MockInventoryRecordRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRecordRepository) GetOrCreate(ctx context.Context, productID uuid.UUID) (*inventory.InventoryRecord, bool, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Bool(1), args.Error(2)
}

func (m *MockInventoryRecordRepository) ApplyDelta(ctx context.Context, productID uuid.UUID, d inventory.Delta) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, productID, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRecordRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRecordRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockInventoryRecordRepository) Delete(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockInventoryRecordRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func newTestProductService() (*ProductService, *MockProductRepository, *MockCategoryRepository, *MockInventoryRecordRepository) {
	products := new(MockProductRepository)
	categories := new(MockCategoryRepository)
	records := new(MockInventoryRecordRepository)
	return NewProductService(products, categories, records, nil), products, categories, records
}

func createTestCategory(t *testing.T) *catalog.ProductCategory {
	t.Helper()
	category, err := catalog.NewProductCategory("Beverages", "")
	require.NoError(t, err)
	return category
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product with prices and minimum stock", func(t *testing.T) {
		service, products, categories, _ := newTestProductService()
		category := createTestCategory(t)

		categories.On("FindByID", ctx, category.ID).Return(category, nil)
		products.On("FindByCode", ctx, "WID-001").Return(nil, shared.ErrNotFound)
		products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := service.Create(ctx, CreateProductRequest{
			Code:          "wid-001",
			Name:          "Widget",
			CategoryID:    category.ID,
			PurchasePrice: decimal.NewFromInt(5),
			SalePrice:     decimal.NewFromInt(9),
			MinStock:      10,
			Unit:          "unit",
		})
		require.NoError(t, err)

		assert.Equal(t, "WID-001", resp.Code)
		assert.Equal(t, int64(10), resp.MinStock)
		products.AssertExpectations(t)
	})

	t.Run("duplicate code is refused", func(t *testing.T) {
		service, products, categories, _ := newTestProductService()
		category := createTestCategory(t)
		existing, err := catalog.NewProduct("WID-001", "Widget", "unit", category.ID)
		require.NoError(t, err)

		categories.On("FindByID", ctx, category.ID).Return(category, nil)
		products.On("FindByCode", ctx, "WID-001").Return(existing, nil)

		_, err = service.Create(ctx, CreateProductRequest{
			Code:       "WID-001",
			Name:       "Widget",
			CategoryID: category.ID,
			Unit:       "unit",
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown category is refused", func(t *testing.T) {
		service, products, categories, _ := newTestProductService()
		categoryID := uuid.New()

		categories.On("FindByID", ctx, categoryID).Return(nil, shared.ErrNotFound)

		_, err := service.Create(ctx, CreateProductRequest{
			Code:       "WID-001",
			Name:       "Widget",
			CategoryID: categoryID,
			Unit:       "unit",
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("product with stock cannot be deleted", func(t *testing.T) {
		service, products, _, records := newTestProductService()
		category := createTestCategory(t)
		product, err := catalog.NewProduct("WID-001", "Widget", "unit", category.ID)
		require.NoError(t, err)
		record, err := inventory.NewInventoryRecord(product.ID)
		require.NoError(t, err)
		record.Apply(inventory.Delta{OnHand: 3})

		products.On("FindByID", ctx, product.ID).Return(product, nil)
		records.On("FindByProduct", ctx, product.ID).Return(record, nil)

		err = service.Delete(ctx, product.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_IN_USE", domainErr.Code)
		products.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("product with a settled ledger record can be deleted", func(t *testing.T) {
		service, products, _, records := newTestProductService()
		category := createTestCategory(t)
		product, err := catalog.NewProduct("WID-001", "Widget", "unit", category.ID)
		require.NoError(t, err)
		record, err := inventory.NewInventoryRecord(product.ID)
		require.NoError(t, err)

		products.On("FindByID", ctx, product.ID).Return(product, nil)
		records.On("FindByProduct", ctx, product.ID).Return(record, nil)
		records.On("Delete", ctx, product.ID).Return(nil)
		products.On("Delete", ctx, product.ID).Return(nil)

		assert.NoError(t, service.Delete(ctx, product.ID))
		products.AssertExpectations(t)
	})

	t.Run("product that never moved can be deleted", func(t *testing.T) {
		service, products, _, records := newTestProductService()
		category := createTestCategory(t)
		product, err := catalog.NewProduct("WID-001", "Widget", "unit", category.ID)
		require.NoError(t, err)

		products.On("FindByID", ctx, product.ID).Return(product, nil)
		records.On("FindByProduct", ctx, product.ID).Return(nil, shared.ErrNotFound)
		products.On("Delete", ctx, product.ID).Return(nil)

		assert.NoError(t, service.Delete(ctx, product.ID))
	})
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("category with products cannot be deleted", func(t *testing.T) {
		products := new(MockProductRepository)
		categories := new(MockCategoryRepository)
		service := NewCategoryService(categories, products, nil)
		category := createTestCategory(t)

		categories.On("FindByID", ctx, category.ID).Return(category, nil)
		products.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(2), nil)

		err := service.Delete(ctx, category.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CATEGORY_IN_USE", domainErr.Code)
	})

	t.Run("empty category can be deleted", func(t *testing.T) {
		products := new(MockProductRepository)
		categories := new(MockCategoryRepository)
		service := NewCategoryService(categories, products, nil)
		category := createTestCategory(t)

		categories.On("FindByID", ctx, category.ID).Return(category, nil)
		products.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(0), nil)
		categories.On("Delete", ctx, category.ID).Return(nil)

		assert.NoError(t, service.Delete(ctx, category.ID))
		categories.AssertExpectations(t)
	})
}
