package trade

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mystock/backend/internal/domain/inventory"
	"github.com/mystock/backend/internal/domain/shared"
	"github.com/mystock/backend/internal/domain/trade"
)

// ReservationEngine receives order-side writes and keeps the inventory
// ledger in sync. Implemented by the inventory ledger service.
type ReservationEngine interface {
	OnSalesLineWritten(ctx context.Context, status trade.SalesOrderStatus, before, after inventory.LineSnapshot) error
	OnSalesOrderStateChanged(ctx context.Context, order *trade.SalesOrder, previous trade.SalesOrderStatus) error
	OnPurchaseOrderStateChanged(ctx context.Context, order *trade.PurchaseOrder, previous trade.PurchaseOrderStatus) error
	OnReceiptEdited(ctx context.Context, status trade.PurchaseOrderStatus, before, after inventory.ReceiptSnapshot) error
}

// SalesOrderService handles sales order business operations.
// Every write that can affect reservations is followed by a synchronous
// ledger call, so stock is consistent by the time the operation returns.
type SalesOrderService struct {
	orders         trade.SalesOrderRepository
	ledger         ReservationEngine
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(orders trade.SalesOrderRepository, ledger ReservationEngine, logger *zap.Logger) *SalesOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesOrderService{
		orders: orders,
		ledger: ledger,
		logger: logger.Named("sales_orders"),
	}
}

// SetEventPublisher sets the event publisher for order lifecycle events
func (s *SalesOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new sales order together with its initial lines.
// New orders start pending, so every initial line reserves stock.
func (s *SalesOrderService) Create(ctx context.Context, req CreateSalesOrderRequest) (*SalesOrderResponse, error) {
	order, err := trade.NewSalesOrder(req.CustomerID, req.OrderDate, req.DeliveryDate, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	for _, input := range req.Lines {
		if _, err := order.AddLine(input.ProductID, input.Quantity, input.UnitPrice, input.LineDiscount, input.EffectiveTaxRate()); err != nil {
			return nil, err
		}
	}

	if req.Discount != nil {
		if err := order.ApplyDiscount(*req.Discount); err != nil {
			return nil, err
		}
	}
	order.Notes = req.Notes

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	for idx := range order.Lines {
		line := &order.Lines[idx]
		err := s.ledger.OnSalesLineWritten(ctx, order.Status,
			inventory.LineSnapshot{},
			inventory.LineSnapshot{ProductID: line.ProductID, Quantity: line.Quantity},
		)
		if err != nil {
			return nil, err
		}
	}

	s.publishEvents(ctx, order)

	s.logger.Info("sales order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("customer_id", order.CustomerID.String()),
		zap.Int("lines", order.LineCount()),
	)

	response := ToSalesOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a sales order by ID
func (s *SalesOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*SalesOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// GetByNumber retrieves a sales order by its order number
func (s *SalesOrderService) GetByNumber(ctx context.Context, orderNumber string) (*SalesOrderResponse, error) {
	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// List retrieves sales orders with filtering and pagination
func (s *SalesOrderService) List(ctx context.Context, filter SalesOrderListFilter) ([]SalesOrderResponse, int64, error) {
	domainFilter := buildSalesOrderFilter(filter)

	orders, err := s.orders.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orders.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToSalesOrderResponses(orders), total, nil
}

// Update updates order header fields. Header edits never touch lines, so
// the ledger is not involved.
func (s *SalesOrderService) Update(ctx context.Context, orderID uuid.UUID, req UpdateSalesOrderRequest) (*SalesOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if req.OrderDate != nil {
		order.OrderDate = *req.OrderDate
	}
	if req.DeliveryDate != nil {
		order.DeliveryDate = *req.DeliveryDate
	}
	if req.PaymentMethod != nil {
		if *req.PaymentMethod == "" {
			return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method cannot be empty")
		}
		order.PaymentMethod = *req.PaymentMethod
	}
	if req.Discount != nil {
		if err := order.ApplyDiscount(*req.Discount); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToSalesOrderResponse(order)
	return &response, nil
}

// AddLine adds a line to an existing order
func (s *SalesOrderService) AddLine(ctx context.Context, orderID uuid.UUID, input SalesOrderLineInput) (*SalesOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	line, err := order.AddLine(input.ProductID, input.Quantity, input.UnitPrice, input.LineDiscount, input.EffectiveTaxRate())
	if err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	err = s.ledger.OnSalesLineWritten(ctx, order.Status,
		inventory.LineSnapshot{},
		inventory.LineSnapshot{ProductID: line.ProductID, Quantity: line.Quantity},
	)
	if err != nil {
		return nil, err
	}

	response := ToSalesOrderResponse(order)
	return &response, nil
}

// UpdateLine rewrites a line's product, quantity and pricing. The ledger
// sees the persisted line as the before image, so a product swap releases
// the old product and reserves the new one.
func (s *SalesOrderService) UpdateLine(ctx context.Context, orderID, lineID uuid.UUID, req UpdateSalesOrderLineRequest) (*SalesOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	persisted, err := s.orders.FindLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	before := inventory.LineSnapshot{ProductID: persisted.ProductID, Quantity: persisted.Quantity}

	if err := order.UpdateLine(lineID, req.ProductID, req.Quantity, req.UnitPrice, req.LineDiscount, req.EffectiveTaxRate()); err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	err = s.ledger.OnSalesLineWritten(ctx, order.Status, before,
		inventory.LineSnapshot{ProductID: req.ProductID, Quantity: req.Quantity},
	)
	if err != nil {
		return nil, err
	}

	response := ToSalesOrderResponse(order)
	return &response, nil
}

// RemoveLine removes a line from an order, releasing its reservation when
// the order is in a reserving status.
func (s *SalesOrderService) RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (*SalesOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	persisted, err := s.orders.FindLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	before := inventory.LineSnapshot{ProductID: persisted.ProductID, Quantity: persisted.Quantity}

	if err := order.RemoveLine(lineID); err != nil {
		return nil, err
	}

	if err := s.orders.DeleteLine(ctx, lineID); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	// The line is already gone; a failed release must not resurrect it.
	if err := s.ledger.OnSalesLineWritten(ctx, order.Status, before, inventory.LineSnapshot{}); err != nil {
		s.logger.Warn("stock release after line removal failed",
			zap.String("order_number", order.OrderNumber),
			zap.String("product_id", before.ProductID.String()),
			zap.Int64("quantity", before.Quantity),
			zap.Error(err),
		)
	}

	response := ToSalesOrderResponse(order)
	return &response, nil
}

// ChangeStatus transitions the order and applies the ledger effect of the
// transition for every line.
func (s *SalesOrderService) ChangeStatus(ctx context.Context, orderID uuid.UUID, req ChangeSalesOrderStatusRequest) (*SalesOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous, err := order.ChangeStatus(req.Status)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.OnSalesOrderStateChanged(ctx, order, previous); err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToSalesOrderResponse(order)
	return &response, nil
}

// Delete deletes a sales order. Only cancelled orders can be deleted, and
// a cancelled order holds no stock, so the ledger is not involved.
func (s *SalesOrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Only cancelled sales orders can be deleted")
	}

	return s.orders.Delete(ctx, orderID)
}

// publishEvents drains and publishes the order's pending domain events
func (s *SalesOrderService) publishEvents(ctx context.Context, order *trade.SalesOrder) {
	if s.eventPublisher == nil {
		return
	}
	events := order.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish sales order events",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
	order.ClearDomainEvents()
}

// buildSalesOrderFilter converts the list filter to a domain filter
func buildSalesOrderFilter(filter SalesOrderListFilter) shared.Filter {
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

	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
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
