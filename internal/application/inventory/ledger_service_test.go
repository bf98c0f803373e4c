package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mystock/backend/internal/domain/catalog"
	"github.com/mystock/backend/internal/domain/inventory"
	"github.com/mystock/backend/internal/domain/shared"
	"github.com/mystock/backend/internal/domain/trade"
)

// MockEventPublisher collects published events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// fakeRecordRepository is a thread-safe in-memory InventoryRecordRepository.
// timeoutsFor injects a number of lock timeouts before a product's delta
// succeeds, to exercise the retry path.
type fakeRecordRepository struct {
	mu          sync.Mutex
	records     map[uuid.UUID]*inventory.InventoryRecord
	timeoutsFor map[uuid.UUID]int
	applyCalls  int
}

func newFakeRecordRepository() *fakeRecordRepository {
	return &fakeRecordRepository{
		records:     make(map[uuid.UUID]*inventory.InventoryRecord),
		timeoutsFor: make(map[uuid.UUID]int),
	}
}

func (f *fakeRecordRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[productID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (f *fakeRecordRepository) GetOrCreate(ctx context.Context, productID uuid.UUID) (*inventory.InventoryRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record, ok := f.records[productID]; ok {
		clone := *record
		return &clone, false, nil
	}
	record, err := inventory.NewInventoryRecord(productID)
	if err != nil {
		return nil, false, err
	}
	f.records[productID] = record
	clone := *record
	return &clone, true, nil
}

func (f *fakeRecordRepository) ApplyDelta(ctx context.Context, productID uuid.UUID, d inventory.Delta) (*inventory.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyCalls++

	if remaining := f.timeoutsFor[productID]; remaining > 0 {
		f.timeoutsFor[productID] = remaining - 1
		return nil, shared.ErrConcurrencyTimeout
	}

	record, ok := f.records[productID]
	if !ok {
		var err error
		record, err = inventory.NewInventoryRecord(productID)
		if err != nil {
			return nil, err
		}
		f.records[productID] = record
	}
	record.Apply(d)

	clone := *record
	record.ClearDomainEvents()
	return &clone, nil
}

func (f *fakeRecordRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]inventory.InventoryRecord, 0, len(f.records))
	for _, record := range f.records {
		out = append(out, *record)
	}
	return out, nil
}

func (f *fakeRecordRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.ProductID] = record
	return nil
}

func (f *fakeRecordRepository) Delete(ctx context.Context, productID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[productID]; !ok {
		return shared.ErrNotFound
	}
	delete(f.records, productID)
	return nil
}

func (f *fakeRecordRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), nil
}

func (f *fakeRecordRepository) position(productID uuid.UUID) (onHand, reserved int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[productID]
	if !ok {
		return 0, 0
	}
	return record.OnHand, record.Reserved
}

// fakeProductRepository is a minimal in-memory ProductRepository
type fakeProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
}

func newFakeProductRepository() *fakeProductRepository {
	return &fakeProductRepository{products: make(map[uuid.UUID]*catalog.Product)}
}

func (f *fakeProductRepository) add(t *testing.T, minStock int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("P-"+uuid.New().String()[:6], "Widget", "unit", uuid.New())
	require.NoError(t, err)
	require.NoError(t, product.SetMinStock(minStock))
	f.mu.Lock()
	f.products[product.ID] = product
	f.mu.Unlock()
	return product
}

func (f *fakeProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

func (f *fakeProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, product := range f.products {
		if product.Code == code {
			return product, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (f *fakeProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(f.products)), nil
}

func newTestLedgerService(t *testing.T) (*LedgerService, *fakeRecordRepository, *fakeProductRepository, *MockEventPublisher) {
	t.Helper()
	records := newFakeRecordRepository()
	products := newFakeProductRepository()
	publisher := NewMockEventPublisher()

	service := NewLedgerService(records, products, zap.NewNop(), 3, time.Millisecond)
	service.SetEventPublisher(publisher)
	return service, records, products, publisher
}

func TestLedgerServiceOnSalesLineWritten(t *testing.T) {
	ctx := context.Background()

	t.Run("line created while reserving reserves stock", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		product := products.add(t, 0)

		err := service.OnSalesLineWritten(ctx, trade.SalesOrderStatusPending,
			inventory.LineSnapshot{},
			inventory.LineSnapshot{ProductID: product.ID, Quantity: 5},
		)
		require.NoError(t, err)

		onHand, reserved := records.position(product.ID)
		assert.Equal(t, int64(0), onHand)
		assert.Equal(t, int64(5), reserved)
	})

	t.Run("line deleted while consuming has no effect", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		product := products.add(t, 0)

		err := service.OnSalesLineWritten(ctx, trade.SalesOrderStatusDelivered,
			inventory.LineSnapshot{ProductID: product.ID, Quantity: 5},
			inventory.LineSnapshot{},
		)
		require.NoError(t, err)

		_, reserved := records.position(product.ID)
		assert.Zero(t, reserved)
	})

	t.Run("product swap touches both records", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		oldProduct := products.add(t, 0)
		newProduct := products.add(t, 0)

		require.NoError(t, service.OnSalesLineWritten(ctx, trade.SalesOrderStatusPending,
			inventory.LineSnapshot{},
			inventory.LineSnapshot{ProductID: oldProduct.ID, Quantity: 3},
		))
		require.NoError(t, service.OnSalesLineWritten(ctx, trade.SalesOrderStatusProcessing,
			inventory.LineSnapshot{ProductID: oldProduct.ID, Quantity: 3},
			inventory.LineSnapshot{ProductID: newProduct.ID, Quantity: 8},
		))

		_, oldReserved := records.position(oldProduct.ID)
		_, newReserved := records.position(newProduct.ID)
		assert.Equal(t, int64(0), oldReserved)
		assert.Equal(t, int64(8), newReserved)
	})
}

func TestLedgerServiceOnSalesOrderStateChanged(t *testing.T) {
	ctx := context.Background()

	buildOrder := func(t *testing.T, products *fakeProductRepository, quantities ...int64) *trade.SalesOrder {
		t.Helper()
		order, err := trade.NewSalesOrder(uuid.New(), time.Now(), time.Now(), "cash")
		require.NoError(t, err)
		for _, qty := range quantities {
			product := products.add(t, 0)
			_, err = order.AddLine(product.ID, qty, decimal.NewFromInt(10), decimal.Zero, decimal.Zero)
			require.NoError(t, err)
		}
		order.ClearDomainEvents()
		return order
	}

	t.Run("delivery converts reservations into consumption", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		order := buildOrder(t, products, 5, 3)

		// seed the reservations the pending order holds
		for idx := range order.Lines {
			require.NoError(t, service.OnSalesLineWritten(ctx, trade.SalesOrderStatusPending,
				inventory.LineSnapshot{},
				inventory.LineSnapshot{ProductID: order.Lines[idx].ProductID, Quantity: order.Lines[idx].Quantity},
			))
		}

		previous, err := order.ChangeStatus(trade.SalesOrderStatusDelivered)
		require.NoError(t, err)
		require.NoError(t, service.OnSalesOrderStateChanged(ctx, order, previous))

		for idx := range order.Lines {
			onHand, reserved := records.position(order.Lines[idx].ProductID)
			assert.Equal(t, -order.Lines[idx].Quantity, onHand)
			assert.Zero(t, reserved)
		}
	})

	t.Run("cancel and reactivate round trips to the same position", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		order := buildOrder(t, products, 4)
		productID := order.Lines[0].ProductID

		require.NoError(t, service.OnSalesLineWritten(ctx, trade.SalesOrderStatusPending,
			inventory.LineSnapshot{},
			inventory.LineSnapshot{ProductID: productID, Quantity: 4},
		))

		previous, err := order.ChangeStatus(trade.SalesOrderStatusCancelled)
		require.NoError(t, err)
		require.NoError(t, service.OnSalesOrderStateChanged(ctx, order, previous))

		previous, err = order.ChangeStatus(trade.SalesOrderStatusPending)
		require.NoError(t, err)
		require.NoError(t, service.OnSalesOrderStateChanged(ctx, order, previous))

		onHand, reserved := records.position(productID)
		assert.Zero(t, onHand)
		assert.Equal(t, int64(4), reserved)
	})

	t.Run("same status transition is a no-op", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		order := buildOrder(t, products, 4)

		require.NoError(t, service.OnSalesOrderStateChanged(ctx, order, order.Status))
		assert.Zero(t, records.applyCalls)
	})
}

func TestLedgerServiceOnPurchaseOrderStateChanged(t *testing.T) {
	ctx := context.Background()

	buildOrder := func(t *testing.T, products *fakeProductRepository, ordered, received int64) *trade.PurchaseOrder {
		t.Helper()
		order, err := trade.NewPurchaseOrder(uuid.New(), time.Now(), time.Now())
		require.NoError(t, err)
		product := products.add(t, 0)
		line, err := order.AddLine(product.ID, ordered, decimal.NewFromInt(2), decimal.Zero)
		require.NoError(t, err)
		if received > 0 {
			require.NoError(t, order.UpdateLineReceived(line.ID, received))
		}
		order.ClearDomainEvents()
		return order
	}

	t.Run("fully received adds stock and syncs received quantities", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		order := buildOrder(t, products, 100, 0)

		previous, err := order.ChangeStatus(trade.PurchaseOrderStatusFullyReceived)
		require.NoError(t, err)
		require.NoError(t, service.OnPurchaseOrderStateChanged(ctx, order, previous))

		onHand, _ := records.position(order.Lines[0].ProductID)
		assert.Equal(t, int64(100), onHand)
		assert.Equal(t, int64(100), order.Lines[0].QuantityReceived)
	})

	t.Run("partial to full adds only the remainder", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		order := buildOrder(t, products, 100, 0)
		productID := order.Lines[0].ProductID

		previous, err := order.ChangeStatus(trade.PurchaseOrderStatusPartiallyReceived)
		require.NoError(t, err)
		require.NoError(t, order.UpdateLineReceived(order.Lines[0].ID, 40))
		require.NoError(t, service.OnPurchaseOrderStateChanged(ctx, order, previous))

		onHand, _ := records.position(productID)
		assert.Equal(t, int64(40), onHand)

		previous, err = order.ChangeStatus(trade.PurchaseOrderStatusFullyReceived)
		require.NoError(t, err)
		require.NoError(t, service.OnPurchaseOrderStateChanged(ctx, order, previous))

		onHand, _ = records.position(productID)
		assert.Equal(t, int64(100), onHand)
		assert.Equal(t, int64(100), order.Lines[0].QuantityReceived)
	})

	t.Run("cancelling a full receipt removes the stock", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		order := buildOrder(t, products, 50, 0)
		productID := order.Lines[0].ProductID

		previous, err := order.ChangeStatus(trade.PurchaseOrderStatusFullyReceived)
		require.NoError(t, err)
		require.NoError(t, service.OnPurchaseOrderStateChanged(ctx, order, previous))

		previous, err = order.ChangeStatus(trade.PurchaseOrderStatusCancelled)
		require.NoError(t, err)
		require.NoError(t, service.OnPurchaseOrderStateChanged(ctx, order, previous))

		onHand, _ := records.position(productID)
		assert.Zero(t, onHand)
	})
}

func TestLedgerServiceOnReceiptEdited(t *testing.T) {
	ctx := context.Background()

	t.Run("edit while partially received moves the difference", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		product := products.add(t, 0)

		err := service.OnReceiptEdited(ctx, trade.PurchaseOrderStatusPartiallyReceived,
			inventory.ReceiptSnapshot{ProductID: product.ID, QuantityOrdered: 100, QuantityReceived: 40},
			inventory.ReceiptSnapshot{ProductID: product.ID, QuantityOrdered: 100, QuantityReceived: 70},
		)
		require.NoError(t, err)

		onHand, _ := records.position(product.ID)
		assert.Equal(t, int64(30), onHand)
	})

	t.Run("edit in any other status is ignored", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		product := products.add(t, 0)

		err := service.OnReceiptEdited(ctx, trade.PurchaseOrderStatusPending,
			inventory.ReceiptSnapshot{ProductID: product.ID, QuantityOrdered: 100, QuantityReceived: 0},
			inventory.ReceiptSnapshot{ProductID: product.ID, QuantityOrdered: 100, QuantityReceived: 50},
		)
		require.NoError(t, err)
		assert.Zero(t, records.applyCalls)
	})
}

func TestLedgerServiceRetries(t *testing.T) {
	ctx := context.Background()

	t.Run("retries after lock timeouts and succeeds", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		product := products.add(t, 0)
		records.timeoutsFor[product.ID] = 2

		err := service.OnSalesLineWritten(ctx, trade.SalesOrderStatusPending,
			inventory.LineSnapshot{},
			inventory.LineSnapshot{ProductID: product.ID, Quantity: 5},
		)
		require.NoError(t, err)

		_, reserved := records.position(product.ID)
		assert.Equal(t, int64(5), reserved)
		assert.Equal(t, 3, records.applyCalls)
	})

	t.Run("gives up after exhausting retries", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		product := products.add(t, 0)
		records.timeoutsFor[product.ID] = 10

		err := service.OnSalesLineWritten(ctx, trade.SalesOrderStatusPending,
			inventory.LineSnapshot{},
			inventory.LineSnapshot{ProductID: product.ID, Quantity: 5},
		)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyTimeout))
	})
}

func TestLedgerServiceEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes stock adjustments", func(t *testing.T) {
		service, _, products, publisher := newTestLedgerService(t)
		product := products.add(t, 0)

		require.NoError(t, service.OnSalesLineWritten(ctx, trade.SalesOrderStatusPending,
			inventory.LineSnapshot{},
			inventory.LineSnapshot{ProductID: product.ID, Quantity: 5},
		))

		adjusted := publisher.GetEventsByType(inventory.EventTypeStockAdjusted)
		require.Len(t, adjusted, 1)
		event := adjusted[0].(*inventory.StockAdjustedEvent)
		assert.Equal(t, product.ID, event.ProductID)
		assert.Equal(t, int64(5), event.ReservedDelta)
	})

	t.Run("publishes below threshold alert when availability crosses minimum", func(t *testing.T) {
		service, _, products, publisher := newTestLedgerService(t)
		product := products.add(t, 10)

		require.NoError(t, service.OnSalesLineWritten(ctx, trade.SalesOrderStatusPending,
			inventory.LineSnapshot{},
			inventory.LineSnapshot{ProductID: product.ID, Quantity: 5},
		))

		alerts := publisher.GetEventsByType(inventory.EventTypeStockBelowThreshold)
		require.Len(t, alerts, 1)
		alert := alerts[0].(*inventory.StockBelowThresholdEvent)
		assert.Equal(t, product.Code, alert.ProductCode)
		assert.Equal(t, int64(-5), alert.Available)
	})

	t.Run("no alert when product has no minimum", func(t *testing.T) {
		service, _, products, publisher := newTestLedgerService(t)
		product := products.add(t, 0)

		require.NoError(t, service.OnSalesLineWritten(ctx, trade.SalesOrderStatusPending,
			inventory.LineSnapshot{},
			inventory.LineSnapshot{ProductID: product.ID, Quantity: 5},
		))

		assert.Empty(t, publisher.GetEventsByType(inventory.EventTypeStockBelowThreshold))
	})
}

func TestLedgerServiceAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("reports the ledger position", func(t *testing.T) {
		service, _, products, _ := newTestLedgerService(t)
		product := products.add(t, 3)

		require.NoError(t, service.OnReceiptEdited(ctx, trade.PurchaseOrderStatusPartiallyReceived,
			inventory.ReceiptSnapshot{ProductID: product.ID},
			inventory.ReceiptSnapshot{ProductID: product.ID, QuantityReceived: 10},
		))
		require.NoError(t, service.OnSalesLineWritten(ctx, trade.SalesOrderStatusPending,
			inventory.LineSnapshot{},
			inventory.LineSnapshot{ProductID: product.ID, Quantity: 4},
		))

		availability, err := service.Availability(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), availability.OnHand)
		assert.Equal(t, int64(4), availability.Reserved)
		assert.Equal(t, int64(6), availability.Available)
		assert.False(t, availability.BelowMinimum)
	})

	t.Run("product that never moved reports zeroes and gets a row", func(t *testing.T) {
		service, records, products, _ := newTestLedgerService(t)
		product := products.add(t, 0)

		availability, err := service.Availability(ctx, product.ID)
		require.NoError(t, err)
		assert.Zero(t, availability.OnHand)
		assert.Zero(t, availability.Reserved)
		assert.Zero(t, availability.Available)

		// the lookup creates the empty record
		records.mu.Lock()
		_, exists := records.records[product.ID]
		records.mu.Unlock()
		assert.True(t, exists)
	})

	t.Run("unknown product is an error", func(t *testing.T) {
		service, _, _, _ := newTestLedgerService(t)

		_, err := service.Availability(ctx, uuid.New())
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestMergeDeltas(t *testing.T) {
	productA := uuid.New()
	productB := uuid.New()

	t.Run("sums deltas per product", func(t *testing.T) {
		merged := mergeDeltas([]inventory.ProductDelta{
			{ProductID: productA, Delta: inventory.Delta{Reserved: 3}},
			{ProductID: productB, Delta: inventory.Delta{OnHand: 2}},
			{ProductID: productA, Delta: inventory.Delta{Reserved: -1}},
		})
		require.Len(t, merged, 2)
		assert.Equal(t, inventory.Delta{Reserved: 2}, merged[0].Delta)
		assert.Equal(t, inventory.Delta{OnHand: 2}, merged[1].Delta)
	})

	t.Run("drops products whose net delta is zero", func(t *testing.T) {
		merged := mergeDeltas([]inventory.ProductDelta{
			{ProductID: productA, Delta: inventory.Delta{Reserved: 3}},
			{ProductID: productA, Delta: inventory.Delta{Reserved: -3}},
		})
		assert.Empty(t, merged)
	})

	t.Run("empty input yields nil", func(t *testing.T) {
		assert.Nil(t, mergeDeltas(nil))
	})
}
