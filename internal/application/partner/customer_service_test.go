package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mystock/backend/internal/domain/partner"
	"github.com/mystock/backend/internal/domain/shared"
)

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByTaxID(ctx context.Context, taxID string) (*partner.Customer, error) {
	args := m.Called(ctx, taxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func createTestCustomer(t *testing.T) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer("Cafe Central", "b12345678", "+34600000000", "Calle Mayor 1", "Las Palmas")
	require.NoError(t, err)
	return customer
}

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates customer with normalized tax id", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo, nil)

		repo.On("FindByTaxID", ctx, "B12345678").Return(nil, shared.ErrNotFound)
		repo.On("Save", ctx, mock.AnythingOfType("*partner.Customer")).Return(nil)

		resp, err := service.Create(ctx, CreateCustomerRequest{
			TradeName:      "Cafe Central",
			TaxID:          "b12345678",
			Phone:          "+34600000000",
			BillingAddress: "Calle Mayor 1",
			BillingCity:    "Las Palmas",
		})
		require.NoError(t, err)

		assert.Equal(t, "B12345678", resp.TaxID)
		assert.True(t, resp.Active)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate tax id is refused", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo, nil)
		existing := createTestCustomer(t)

		repo.On("FindByTaxID", ctx, "B12345678").Return(existing, nil)

		_, err := service.Create(ctx, CreateCustomerRequest{
			TradeName:      "Another Cafe",
			TaxID:          "B12345678",
			Phone:          "+34600000001",
			BillingAddress: "Calle Menor 2",
			BillingCity:    "Telde",
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivation keeps the record", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo, nil)
		customer := createTestCustomer(t)

		repo.On("FindByID", ctx, customer.ID).Return(customer, nil)
		repo.On("Save", ctx, customer).Return(nil)

		resp, err := service.Deactivate(ctx, customer.ID)
		require.NoError(t, err)

		assert.False(t, resp.Active)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo, nil)
		customer := createTestCustomer(t)

		repo.On("FindByID", ctx, customer.ID).Return(customer, nil)
		repo.On("Save", ctx, customer).Return(nil)

		email := "orders@cafecentral.example"
		resp, err := service.Update(ctx, customer.ID, UpdateCustomerRequest{Email: &email})
		require.NoError(t, err)

		assert.Equal(t, email, resp.Email)
		assert.Equal(t, "+34600000000", resp.Phone)
		assert.Equal(t, "Cafe Central", resp.TradeName)
	})

	t.Run("empty phone is refused", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo, nil)
		customer := createTestCustomer(t)

		repo.On("FindByID", ctx, customer.ID).Return(customer, nil)

		empty := ""
		_, err := service.Update(ctx, customer.ID, UpdateCustomerRequest{Phone: &empty})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
