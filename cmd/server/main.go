package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	catalogapp "github.com/mystock/backend/internal/application/catalog"
	inventoryapp "github.com/mystock/backend/internal/application/inventory"
	partnerapp "github.com/mystock/backend/internal/application/partner"
	tradeapp "github.com/mystock/backend/internal/application/trade"
	"github.com/mystock/backend/internal/infrastructure/config"
	"github.com/mystock/backend/internal/infrastructure/event"
	"github.com/mystock/backend/internal/infrastructure/logger"
	"github.com/mystock/backend/internal/infrastructure/persistence"
	"github.com/mystock/backend/internal/interfaces/http/handler"
	"github.com/mystock/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting MyStock Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	recordRepo := persistence.NewGormInventoryRecordRepository(db.DB, cfg.Ledger.LockTimeout)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormProductCategoryRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	salesOrderRepo := persistence.NewGormSalesOrderRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	belowThresholdHandler := inventoryapp.NewStockBelowThresholdHandler(log)
	eventBus.Subscribe(belowThresholdHandler)
	log.Info("Event handlers registered",
		zap.Strings("stock_below_threshold_events", belowThresholdHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	ledgerService := inventoryapp.NewLedgerService(
		recordRepo,
		productRepo,
		log,
		cfg.Ledger.MaxRetries,
		cfg.Ledger.RetryBackoff,
	)
	ledgerService.SetEventPublisher(eventBus)

	salesOrderService := tradeapp.NewSalesOrderService(salesOrderRepo, ledgerService, log)
	salesOrderService.SetEventPublisher(eventBus)
	purchaseOrderService := tradeapp.NewPurchaseOrderService(purchaseOrderRepo, ledgerService, log)
	purchaseOrderService.SetEventPublisher(eventBus)

	productService := catalogapp.NewProductService(productRepo, categoryRepo, recordRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, log)
	customerService := partnerapp.NewCustomerService(customerRepo, log)
	supplierService := partnerapp.NewSupplierService(supplierRepo, log)

	// Initialize HTTP handlers and router
	engine := router.New(cfg, log, router.Handlers{
		System:        handler.NewSystemHandler(cfg, db),
		Inventory:     handler.NewInventoryHandler(ledgerService),
		SalesOrder:    handler.NewSalesOrderHandler(salesOrderService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(purchaseOrderService),
		Product:       handler.NewProductHandler(productService),
		Category:      handler.NewCategoryHandler(categoryService),
		Customer:      handler.NewCustomerHandler(customerService),
		Supplier:      handler.NewSupplierHandler(supplierService),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	log.Info("Server stopped")
}
