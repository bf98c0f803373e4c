package inventory

import (
	"context"

	"go.uber.org/zap"

	"github.com/mystock/backend/internal/domain/inventory"
	"github.com/mystock/backend/internal/domain/shared"
)

// StockBelowThresholdHandler logs replenishment warnings when a movement
// leaves a product at or below its configured minimum
type StockBelowThresholdHandler struct {
	logger *zap.Logger
}

// NewStockBelowThresholdHandler creates a new StockBelowThresholdHandler
func NewStockBelowThresholdHandler(logger *zap.Logger) *StockBelowThresholdHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockBelowThresholdHandler{logger: logger.Named("stock_alerts")}
}

// Handle processes a stock below threshold event
func (h *StockBelowThresholdHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	alert, ok := event.(*inventory.StockBelowThresholdEvent)
	if !ok {
		return nil
	}

	h.logger.Warn("product stock at or below minimum",
		zap.String("product_id", alert.ProductID.String()),
		zap.String("product_code", alert.ProductCode),
		zap.Int64("available", alert.Available),
		zap.Int64("min_stock", alert.MinStock),
	)
	return nil
}

// EventTypes returns the event types this handler is interested in
func (h *StockBelowThresholdHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowThreshold}
}

// Ensure StockBelowThresholdHandler implements EventHandler
var _ shared.EventHandler = (*StockBelowThresholdHandler)(nil)
