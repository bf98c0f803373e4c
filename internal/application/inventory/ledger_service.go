package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mystock/backend/internal/domain/catalog"
	"github.com/mystock/backend/internal/domain/inventory"
	"github.com/mystock/backend/internal/domain/shared"
	"github.com/mystock/backend/internal/domain/trade"
)

// LedgerService drives the inventory ledger from order-side writes.
//
// The trade services call it synchronously after persisting a line write or
// a status transition, so by the time their own call returns the ledger
// already reflects the change. Deltas for distinct products are applied
// concurrently; each application retries a bounded number of times when the
// product row lock cannot be acquired in time.
type LedgerService struct {
	records      inventory.InventoryRecordRepository
	products     catalog.ProductRepository
	publisher    shared.EventPublisher
	logger       *zap.Logger
	maxRetries   int
	retryBackoff time.Duration
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	records inventory.InventoryRecordRepository,
	products catalog.ProductRepository,
	logger *zap.Logger,
	maxRetries int,
	retryBackoff time.Duration,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		records:      records,
		products:     products,
		logger:       logger.Named("ledger"),
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
	}
}

// SetEventPublisher sets the event publisher for stock events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// OnSalesLineWritten applies the reservation effect of a single sales line
// write (create, edit or delete). The order status is the status the order
// held while the line was written.
func (s *LedgerService) OnSalesLineWritten(ctx context.Context, status trade.SalesOrderStatus, before, after inventory.LineSnapshot) error {
	return s.applyAll(ctx, inventory.SalesLineDeltas(status, before, after))
}

// OnSalesOrderStateChanged applies the ledger effect of a sales order status
// transition, one delta per line.
func (s *LedgerService) OnSalesOrderStateChanged(ctx context.Context, order *trade.SalesOrder, previous trade.SalesOrderStatus) error {
	if previous == order.Status {
		return nil
	}

	deltas := make([]inventory.ProductDelta, 0, len(order.Lines))
	for idx := range order.Lines {
		line := &order.Lines[idx]
		d := inventory.SalesTransitionDelta(previous, order.Status, line.Quantity)
		if d.IsZero() {
			continue
		}
		deltas = append(deltas, inventory.ProductDelta{ProductID: line.ProductID, Delta: d})
	}

	s.logger.Info("sales order transition",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", previous.String()),
		zap.String("to", order.Status.String()),
		zap.Int("lines", len(order.Lines)),
	)

	return s.applyAll(ctx, deltas)
}

// OnPurchaseOrderStateChanged applies the ledger effect of a purchase order
// status transition. When the transition forces received quantities into
// sync (fully received), the order's lines are updated in place; the caller
// persists the order afterwards.
func (s *LedgerService) OnPurchaseOrderStateChanged(ctx context.Context, order *trade.PurchaseOrder, previous trade.PurchaseOrderStatus) error {
	if previous == order.Status {
		return nil
	}

	deltas := make([]inventory.ProductDelta, 0, len(order.Lines))
	for idx := range order.Lines {
		line := &order.Lines[idx]
		d, synced, sync := inventory.PurchaseTransitionDelta(previous, order.Status, line.QuantityOrdered, line.QuantityReceived)
		if sync {
			order.SyncLineReceived(line.ID, synced)
		}
		if d.IsZero() {
			continue
		}
		deltas = append(deltas, inventory.ProductDelta{ProductID: line.ProductID, Delta: d})
	}

	s.logger.Info("purchase order transition",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", previous.String()),
		zap.String("to", order.Status.String()),
		zap.Int("lines", len(order.Lines)),
	)

	return s.applyAll(ctx, deltas)
}

// OnReceiptEdited applies the ledger effect of a direct edit of a line's
// received quantity. Only edits made while the order is partially received
// move stock; in every other status the received column is bookkeeping only.
func (s *LedgerService) OnReceiptEdited(ctx context.Context, status trade.PurchaseOrderStatus, before, after inventory.ReceiptSnapshot) error {
	if status != trade.PurchaseOrderStatusPartiallyReceived {
		return nil
	}
	d := inventory.ReceiptEditDelta(before, after)
	if d.IsZero() {
		return nil
	}
	return s.applyAll(ctx, []inventory.ProductDelta{{ProductID: after.ProductID, Delta: d}})
}

// Availability returns the current ledger position for a product. A product
// that never moved reports zeroes rather than an error.
func (s *LedgerService) Availability(ctx context.Context, productID uuid.UUID) (*AvailabilityResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	record, created, err := s.records.GetOrCreate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("inventory record created",
			zap.String("product_id", productID.String()),
			zap.String("product_code", product.Code),
		)
	}

	return ToAvailabilityResponse(record, product), nil
}

// Records lists inventory records matching the filter
func (s *LedgerService) Records(ctx context.Context, filter RecordListFilter) ([]RecordResponse, int64, error) {
	shf := buildRecordFilter(filter)

	records, err := s.records.FindAll(ctx, shf)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.records.Count(ctx, shf)
	if err != nil {
		return nil, 0, err
	}

	out := make([]RecordResponse, 0, len(records))
	for idx := range records {
		out = append(out, *ToRecordResponse(&records[idx]))
	}
	return out, total, nil
}

func buildRecordFilter(filter RecordListFilter) shared.Filter {
	shf := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if shf.Page < 1 {
		shf.Page = 1
	}
	if shf.PageSize < 1 {
		shf.PageSize = 20
	}
	if filter.ProductID != nil {
		shf.Filters["product_id"] = *filter.ProductID
	}
	if filter.Negative != nil {
		shf.Filters["negative"] = *filter.Negative
	}
	if filter.Location != "" {
		shf.Filters["location"] = filter.Location
	}
	return shf
}

// applyAll merges the deltas per product and applies them independently.
// Deltas for the same product commute, so the merge is a plain sum; deltas
// for distinct products run concurrently and never contend.
func (s *LedgerService) applyAll(ctx context.Context, deltas []inventory.ProductDelta) error {
	merged := mergeDeltas(deltas)
	if len(merged) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, pd := range merged {
		pd := pd
		g.Go(func() error {
			return s.applyWithRetry(gctx, pd)
		})
	}
	return g.Wait()
}

// applyWithRetry applies one product delta, retrying on lock timeouts
func (s *LedgerService) applyWithRetry(ctx context.Context, pd inventory.ProductDelta) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retryBackoff * time.Duration(attempt)):
			}
		}

		record, err := s.records.ApplyDelta(ctx, pd.ProductID, pd.Delta)
		if err == nil {
			s.logger.Debug("ledger delta applied",
				zap.String("product_id", pd.ProductID.String()),
				zap.Int64("on_hand_delta", pd.OnHand),
				zap.Int64("reserved_delta", pd.Reserved),
				zap.Int64("on_hand", record.OnHand),
				zap.Int64("reserved", record.Reserved),
			)
			s.publishStockEvents(ctx, record)
			return nil
		}

		lastErr = err
		if !errors.Is(err, shared.ErrConcurrencyTimeout) {
			return err
		}
		s.logger.Warn("ledger delta lock timeout, retrying",
			zap.String("product_id", pd.ProductID.String()),
			zap.Int("attempt", attempt+1),
		)
	}
	return lastErr
}

// publishStockEvents publishes the record's pending events and the
// below-threshold alert when availability crossed the product minimum
func (s *LedgerService) publishStockEvents(ctx context.Context, record *inventory.InventoryRecord) {
	if s.publisher == nil {
		record.ClearDomainEvents()
		return
	}

	events := record.GetDomainEvents()
	record.ClearDomainEvents()

	product, err := s.products.FindByID(ctx, record.ProductID)
	if err == nil && product.MinStock > 0 && record.Available() <= product.MinStock {
		events = append(events, inventory.NewStockBelowThresholdEvent(record, product.Code, product.MinStock))
	}

	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish stock events",
			zap.String("product_id", record.ProductID.String()),
			zap.Error(err),
		)
	}
}

// mergeDeltas sums deltas per product, dropping products whose net delta
// is zero
func mergeDeltas(deltas []inventory.ProductDelta) []inventory.ProductDelta {
	if len(deltas) == 0 {
		return nil
	}

	totals := make(map[uuid.UUID]inventory.Delta, len(deltas))
	order := make([]uuid.UUID, 0, len(deltas))
	for _, pd := range deltas {
		if _, seen := totals[pd.ProductID]; !seen {
			order = append(order, pd.ProductID)
		}
		totals[pd.ProductID] = totals[pd.ProductID].Add(pd.Delta)
	}

	merged := make([]inventory.ProductDelta, 0, len(order))
	for _, id := range order {
		if totals[id].IsZero() {
			continue
		}
		merged = append(merged, inventory.ProductDelta{ProductID: id, Delta: totals[id]})
	}
	return merged
}
