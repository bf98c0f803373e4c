package trade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mystock/backend/internal/domain/shared"
	"github.com/mystock/backend/internal/domain/trade"
)

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindLine(ctx context.Context, lineID uuid.UUID) (*trade.PurchaseOrderLine, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrderLine), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	args := m.Called(ctx, lineID)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func createTestPurchaseOrder(t *testing.T) *trade.PurchaseOrder {
	t.Helper()
	order, err := trade.NewPurchaseOrder(testSupplierID, time.Now(), time.Now().AddDate(0, 0, 14))
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func createTestPurchaseOrderWithLine(t *testing.T, ordered int64) *trade.PurchaseOrder {
	t.Helper()
	order := createTestPurchaseOrder(t)
	_, err := order.AddLine(testProductID, ordered, decimal.NewFromInt(8), trade.DefaultTaxRatePercent)
	require.NoError(t, err)
	return order
}

func TestPurchaseOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending order without touching stock", func(t *testing.T) {
		repo := new(MockPurchaseOrderRepository)
		engine := &recordingEngine{}
		service := NewPurchaseOrderService(repo, engine, nil)

		repo.On("Save", ctx, mock.AnythingOfType("*trade.PurchaseOrder")).Return(nil)

		resp, err := service.Create(ctx, CreatePurchaseOrderRequest{
			SupplierID:   testSupplierID,
			OrderDate:    time.Now(),
			ExpectedDate: time.Now().AddDate(0, 0, 14),
			Lines: []PurchaseOrderLineInput{
				{ProductID: testProductID, QuantityOrdered: 100, UnitPrice: decimal.NewFromInt(8)},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "pending", resp.Status)
		assert.Len(t, resp.Lines, 1)
		assert.Zero(t, resp.Lines[0].QuantityReceived)
		assert.Empty(t, engine.receiptEdits)
		assert.Empty(t, engine.purchaseChanges)
	})

	t.Run("missing supplier aborts before saving", func(t *testing.T) {
		repo := new(MockPurchaseOrderRepository)
		service := NewPurchaseOrderService(repo, &recordingEngine{}, nil)

		_, err := service.Create(ctx, CreatePurchaseOrderRequest{
			OrderDate:    time.Now(),
			ExpectedDate: time.Now(),
		})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_UpdateLineReceived(t *testing.T) {
	ctx := context.Background()

	t.Run("edit is reported to the ledger with before and after", func(t *testing.T) {
		repo := new(MockPurchaseOrderRepository)
		engine := &recordingEngine{}
		service := NewPurchaseOrderService(repo, engine, nil)
		order := createTestPurchaseOrderWithLine(t, 100)
		_, err := order.ChangeStatus(trade.PurchaseOrderStatusPartiallyReceived)
		require.NoError(t, err)
		line := order.Lines[0]

		repo.On("FindByID", ctx, order.ID).Return(order, nil)
		repo.On("FindLine", ctx, line.ID).Return(&line, nil)
		repo.On("Save", ctx, order).Return(nil)

		resp, err := service.UpdateLineReceived(ctx, order.ID, line.ID, UpdateReceivedQuantityRequest{
			QuantityReceived: 40,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(40), resp.Lines[0].QuantityReceived)
		require.Len(t, engine.receiptEdits, 1)
		edit := engine.receiptEdits[0]
		assert.Equal(t, trade.PurchaseOrderStatusPartiallyReceived, edit.status)
		assert.Equal(t, int64(0), edit.before.QuantityReceived)
		assert.Equal(t, int64(40), edit.after.QuantityReceived)
	})

	t.Run("negative quantity is refused", func(t *testing.T) {
		repo := new(MockPurchaseOrderRepository)
		engine := &recordingEngine{}
		service := NewPurchaseOrderService(repo, engine, nil)
		order := createTestPurchaseOrderWithLine(t, 100)
		line := order.Lines[0]

		repo.On("FindByID", ctx, order.ID).Return(order, nil)
		repo.On("FindLine", ctx, line.ID).Return(&line, nil)

		_, err := service.UpdateLineReceived(ctx, order.ID, line.ID, UpdateReceivedQuantityRequest{
			QuantityReceived: -1,
		})
		assert.Error(t, err)
		assert.Empty(t, engine.receiptEdits)
	})
}

func TestPurchaseOrderService_ChangeStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("ledger runs before the save that persists synced lines", func(t *testing.T) {
		repo := new(MockPurchaseOrderRepository)
		engine := &recordingEngine{}
		service := NewPurchaseOrderService(repo, engine, nil)
		order := createTestPurchaseOrderWithLine(t, 100)

		repo.On("FindByID", ctx, order.ID).Return(order, nil)
		repo.On("Save", ctx, order).Return(nil)

		resp, err := service.ChangeStatus(ctx, order.ID, ChangePurchaseOrderStatusRequest{
			Status: trade.PurchaseOrderStatusFullyReceived,
		})
		require.NoError(t, err)

		assert.Equal(t, "fully_received", resp.Status)
		require.Len(t, engine.purchaseChanges, 1)
		assert.Equal(t, trade.PurchaseOrderStatusPending, engine.purchaseChanges[0])
		repo.AssertExpectations(t)
	})

	t.Run("receipt status needs at least one line", func(t *testing.T) {
		repo := new(MockPurchaseOrderRepository)
		engine := &recordingEngine{}
		service := NewPurchaseOrderService(repo, engine, nil)
		order := createTestPurchaseOrder(t)

		repo.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err := service.ChangeStatus(ctx, order.ID, ChangePurchaseOrderStatusRequest{
			Status: trade.PurchaseOrderStatusPartiallyReceived,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Empty(t, engine.purchaseChanges)
	})
}

func TestPurchaseOrderService_RemoveLine(t *testing.T) {
	ctx := context.Background()

	t.Run("removing a received line backs the stock out", func(t *testing.T) {
		repo := new(MockPurchaseOrderRepository)
		engine := &recordingEngine{}
		service := NewPurchaseOrderService(repo, engine, nil)
		order := createTestPurchaseOrderWithLine(t, 100)
		secondProductID := uuid.New()
		_, err := order.AddLine(secondProductID, 50, decimal.NewFromInt(3), decimal.Zero)
		require.NoError(t, err)
		_, err = order.ChangeStatus(trade.PurchaseOrderStatusPartiallyReceived)
		require.NoError(t, err)
		require.NoError(t, order.UpdateLineReceived(order.Lines[0].ID, 30))
		line := order.Lines[0]

		repo.On("FindByID", ctx, order.ID).Return(order, nil)
		repo.On("FindLine", ctx, line.ID).Return(&line, nil)
		repo.On("DeleteLine", ctx, line.ID).Return(nil)
		repo.On("Save", ctx, order).Return(nil)

		resp, err := service.RemoveLine(ctx, order.ID, line.ID)
		require.NoError(t, err)

		assert.Len(t, resp.Lines, 1)
		require.Len(t, engine.receiptEdits, 1)
		assert.Equal(t, int64(30), engine.receiptEdits[0].before.QuantityReceived)
		assert.Zero(t, engine.receiptEdits[0].after.QuantityReceived)
	})

	t.Run("last line cannot be removed", func(t *testing.T) {
		repo := new(MockPurchaseOrderRepository)
		service := NewPurchaseOrderService(repo, &recordingEngine{}, nil)
		order := createTestPurchaseOrderWithLine(t, 100)
		line := order.Lines[0]

		repo.On("FindByID", ctx, order.ID).Return(order, nil)
		repo.On("FindLine", ctx, line.ID).Return(&line, nil)

		_, err := service.RemoveLine(ctx, order.ID, line.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "LAST_LINE", domainErr.Code)
		repo.AssertNotCalled(t, "DeleteLine", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("pending order can be deleted", func(t *testing.T) {
		repo := new(MockPurchaseOrderRepository)
		service := NewPurchaseOrderService(repo, &recordingEngine{}, nil)
		order := createTestPurchaseOrder(t)

		repo.On("FindByID", ctx, order.ID).Return(order, nil)
		repo.On("Delete", ctx, order.ID).Return(nil)

		assert.NoError(t, service.Delete(ctx, order.ID))
	})

	t.Run("partially received order cannot be deleted", func(t *testing.T) {
		repo := new(MockPurchaseOrderRepository)
		service := NewPurchaseOrderService(repo, &recordingEngine{}, nil)
		order := createTestPurchaseOrderWithLine(t, 10)
		_, err := order.ChangeStatus(trade.PurchaseOrderStatusPartiallyReceived)
		require.NoError(t, err)

		repo.On("FindByID", ctx, order.ID).Return(order, nil)

		err = service.Delete(ctx, order.ID)
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
