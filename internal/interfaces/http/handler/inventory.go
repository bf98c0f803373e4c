package handler

import (
	"github.com/gin-gonic/gin"

	inventoryapp "github.com/mystock/backend/internal/application/inventory"
)

// InventoryHandler exposes read access to the inventory ledger.
// Stock is never written through this API; all movements are driven by
// order writes.
type InventoryHandler struct {
	BaseHandler
	ledger *inventoryapp.LedgerService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledger *inventoryapp.LedgerService) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// GetAvailability returns the availability of a single product
func (h *InventoryHandler) GetAvailability(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	availability, err := h.ledger.Availability(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, availability)
}

// ListRecords returns inventory records with filtering and pagination
func (h *InventoryHandler) ListRecords(c *gin.Context) {
	var filter inventoryapp.RecordListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	records, total, err := h.ledger.Records(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, records, total, filter.Page, filter.PageSize)
}
