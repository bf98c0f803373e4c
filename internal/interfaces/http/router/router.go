package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mystock/backend/internal/infrastructure/config"
	"github.com/mystock/backend/internal/infrastructure/logger"
	"github.com/mystock/backend/internal/interfaces/http/handler"
	"github.com/mystock/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	System        *handler.SystemHandler
	Inventory     *handler.InventoryHandler
	SalesOrder    *handler.SalesOrderHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	Product       *handler.ProductHandler
	Category      *handler.CategoryHandler
	Customer      *handler.CustomerHandler
	Supplier      *handler.SupplierHandler
}

// New builds the gin engine with middleware and all API routes mounted
// under /api/v1.
func New(cfg *config.Config, log *zap.Logger, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(logger.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
	}))

	api := engine.Group("/api/v1")

	api.GET("/health", h.System.Health)
	api.GET("/info", h.System.Info)

	inventory := api.Group("/inventory")
	{
		inventory.GET("/records", h.Inventory.ListRecords)
		inventory.GET("/availability/:productId", h.Inventory.GetAvailability)
	}

	sales := api.Group("/sales-orders")
	{
		sales.POST("", h.SalesOrder.Create)
		sales.GET("", h.SalesOrder.List)
		sales.GET("/:id", h.SalesOrder.GetByID)
		sales.GET("/number/:orderNumber", h.SalesOrder.GetByNumber)
		sales.PUT("/:id", h.SalesOrder.Update)
		sales.PATCH("/:id/status", h.SalesOrder.ChangeStatus)
		sales.POST("/:id/lines", h.SalesOrder.AddLine)
		sales.PUT("/:id/lines/:lineId", h.SalesOrder.UpdateLine)
		sales.DELETE("/:id/lines/:lineId", h.SalesOrder.RemoveLine)
		sales.DELETE("/:id", h.SalesOrder.Delete)
	}

	purchases := api.Group("/purchase-orders")
	{
		purchases.POST("", h.PurchaseOrder.Create)
		purchases.GET("", h.PurchaseOrder.List)
		purchases.GET("/:id", h.PurchaseOrder.GetByID)
		purchases.GET("/number/:orderNumber", h.PurchaseOrder.GetByNumber)
		purchases.PUT("/:id", h.PurchaseOrder.Update)
		purchases.PATCH("/:id/status", h.PurchaseOrder.ChangeStatus)
		purchases.POST("/:id/lines", h.PurchaseOrder.AddLine)
		purchases.PATCH("/:id/lines/:lineId/received", h.PurchaseOrder.UpdateLineReceived)
		purchases.DELETE("/:id/lines/:lineId", h.PurchaseOrder.RemoveLine)
		purchases.DELETE("/:id", h.PurchaseOrder.Delete)
	}

	products := api.Group("/products")
	{
		products.POST("", h.Product.Create)
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.GetByID)
		products.GET("/code/:code", h.Product.GetByCode)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}

	categories := api.Group("/categories")
	{
		categories.POST("", h.Category.Create)
		categories.GET("", h.Category.List)
		categories.GET("/:id", h.Category.GetByID)
		categories.PUT("/:id", h.Category.Update)
		categories.DELETE("/:id", h.Category.Delete)
	}

	customers := api.Group("/customers")
	{
		customers.POST("", h.Customer.Create)
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.GetByID)
		customers.PUT("/:id", h.Customer.Update)
		customers.PATCH("/:id/deactivate", h.Customer.Deactivate)
		customers.DELETE("/:id", h.Customer.Delete)
	}

	suppliers := api.Group("/suppliers")
	{
		suppliers.POST("", h.Supplier.Create)
		suppliers.GET("", h.Supplier.List)
		suppliers.GET("/:id", h.Supplier.GetByID)
		suppliers.PUT("/:id", h.Supplier.Update)
		suppliers.PATCH("/:id/deactivate", h.Supplier.Deactivate)
		suppliers.DELETE("/:id", h.Supplier.Delete)
	}

	return engine
}
