package trade

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mystock/backend/internal/domain/inventory"
	"github.com/mystock/backend/internal/domain/shared"
	"github.com/mystock/backend/internal/domain/trade"
)

// PurchaseOrderService handles purchase order business operations.
// Receipt-side stock movements are driven through the ledger the same way
// sales reservations are.
type PurchaseOrderService struct {
	orders         trade.PurchaseOrderRepository
	ledger         ReservationEngine
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(orders trade.PurchaseOrderRepository, ledger ReservationEngine, logger *zap.Logger) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		orders: orders,
		ledger: ledger,
		logger: logger.Named("purchase_orders"),
	}
}

// SetEventPublisher sets the event publisher for order lifecycle events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new purchase order together with its initial lines.
// New orders start pending, so nothing enters inventory yet.
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := trade.NewPurchaseOrder(req.SupplierID, req.OrderDate, req.ExpectedDate)
	if err != nil {
		return nil, err
	}

	for _, input := range req.Lines {
		if _, err := order.AddLine(input.ProductID, input.QuantityOrdered, input.UnitPrice, input.EffectiveTaxRate()); err != nil {
			return nil, err
		}
	}
	order.Notes = req.Notes

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	s.logger.Info("purchase order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("supplier_id", order.SupplierID.String()),
		zap.Int("lines", order.LineCount()),
	)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByNumber retrieves a purchase order by its order number
func (s *PurchaseOrderService) GetByNumber(ctx context.Context, orderNumber string) (*PurchaseOrderResponse, error) {
	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, filter PurchaseOrderListFilter) ([]PurchaseOrderResponse, int64, error) {
	domainFilter := buildPurchaseOrderFilter(filter)

	orders, err := s.orders.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orders.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPurchaseOrderResponses(orders), total, nil
}

// Update updates order header fields
func (s *PurchaseOrderService) Update(ctx context.Context, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if req.OrderDate != nil {
		order.OrderDate = *req.OrderDate
	}
	if req.ExpectedDate != nil {
		order.ExpectedDate = *req.ExpectedDate
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// AddLine adds a line to an existing order. A new line starts with nothing
// received, so adding one never moves stock.
func (s *PurchaseOrderService) AddLine(ctx context.Context, orderID uuid.UUID, input PurchaseOrderLineInput) (*PurchaseOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if _, err := order.AddLine(input.ProductID, input.QuantityOrdered, input.UnitPrice, input.EffectiveTaxRate()); err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// RemoveLine removes a line from an order. While the order is partially
// received, removing a line that had goods received backs that stock out
// again.
func (s *PurchaseOrderService) RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	persisted, err := s.orders.FindLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	before := inventory.ReceiptSnapshot{
		ProductID:        persisted.ProductID,
		QuantityOrdered:  persisted.QuantityOrdered,
		QuantityReceived: persisted.QuantityReceived,
	}

	if err := order.RemoveLine(lineID); err != nil {
		return nil, err
	}

	if err := s.orders.DeleteLine(ctx, lineID); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	after := before
	after.QuantityReceived = 0
	if err := s.ledger.OnReceiptEdited(ctx, order.Status, before, after); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// UpdateLineReceived records a direct edit of a line's received quantity.
// While the order is partially received the difference moves on-hand stock;
// in any other status the edit is bookkeeping only.
func (s *PurchaseOrderService) UpdateLineReceived(ctx context.Context, orderID, lineID uuid.UUID, req UpdateReceivedQuantityRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	persisted, err := s.orders.FindLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	before := inventory.ReceiptSnapshot{
		ProductID:        persisted.ProductID,
		QuantityOrdered:  persisted.QuantityOrdered,
		QuantityReceived: persisted.QuantityReceived,
	}

	if err := order.UpdateLineReceived(lineID, req.QuantityReceived); err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	after := before
	after.QuantityReceived = req.QuantityReceived
	if err := s.ledger.OnReceiptEdited(ctx, order.Status, before, after); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// ChangeStatus transitions the order and applies the ledger effect of the
// transition. Entering fully received also forces every line's received
// quantity to match what was ordered, which is persisted with the order.
func (s *PurchaseOrderService) ChangeStatus(ctx context.Context, orderID uuid.UUID, req ChangePurchaseOrderStatusRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous, err := order.ChangeStatus(req.Status)
	if err != nil {
		return nil, err
	}

	// ledger first: entering fully_received syncs line received quantities
	// on the aggregate, which the save below persists
	if err := s.ledger.OnPurchaseOrderStateChanged(ctx, order, previous); err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Delete deletes a purchase order. Only pending or cancelled orders can be
// deleted; neither holds received stock.
func (s *PurchaseOrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Only pending or cancelled purchase orders can be deleted")
	}

	return s.orders.Delete(ctx, orderID)
}

// publishEvents drains and publishes the order's pending domain events
func (s *PurchaseOrderService) publishEvents(ctx context.Context, order *trade.PurchaseOrder) {
	if s.eventPublisher == nil {
		return
	}
	events := order.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish purchase order events",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
	order.ClearDomainEvents()
}

// buildPurchaseOrderFilter converts the list filter to a domain filter
func buildPurchaseOrderFilter(filter PurchaseOrderListFilter) shared.Filter {
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

	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = filter.Status.String()
	}
	if filter.DateFrom != nil {
		domainFilter.Filters["order_date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		domainFilter.Filters["order_date_to"] = *filter.DateTo
	}

	return domainFilter
}
