package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mystock/backend/internal/domain/inventory"
	"github.com/mystock/backend/internal/domain/shared"
	"github.com/mystock/backend/internal/domain/trade"
)

// Round-trip tests against an in-memory sqlite database. They cover only
// the single-aggregate paths (Save, FindByID, FindByNumber, FindLine,
// DeleteLine, Delete); the list queries use ILIKE and stay postgres-only.

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// a pooled second connection would get its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&trade.SalesOrder{},
		&trade.SalesOrderLine{},
		&trade.PurchaseOrder{},
		&trade.PurchaseOrderLine{},
		&inventory.InventoryRecord{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestGormSalesOrderRepository_RoundTrip(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	order, err := trade.NewSalesOrder(uuid.New(), time.Now(), time.Now().AddDate(0, 0, 7), "transfer")
	require.NoError(t, err)
	line, err := order.AddLine(uuid.New(), 5, decimal.NewFromInt(10), decimal.Zero, decimal.NewFromFloat(7.00))
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, order))

	t.Run("find by id preloads lines", func(t *testing.T) {
		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)

		assert.Equal(t, order.OrderNumber, found.OrderNumber)
		assert.Equal(t, order.CustomerID, found.CustomerID)
		require.Len(t, found.Lines, 1)
		assert.Equal(t, line.ID, found.Lines[0].ID)
		assert.Equal(t, int64(5), found.Lines[0].Quantity)
		assert.True(t, found.Total.Equal(order.Total))
	})

	t.Run("find by number", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, order.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)

		_, err = repo.FindByNumber(ctx, "ORD-MISSING1")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("find line", func(t *testing.T) {
		found, err := repo.FindLine(ctx, line.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.OrderID)
		assert.Equal(t, line.ProductID, found.ProductID)

		_, err = repo.FindLine(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("save persists line updates", func(t *testing.T) {
		require.NoError(t, order.UpdateLine(line.ID, line.ProductID, 8, decimal.NewFromInt(10), decimal.Zero, decimal.NewFromFloat(7.00)))
		require.NoError(t, repo.Save(ctx, order))

		found, err := repo.FindLine(ctx, line.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(8), found.Quantity)
	})

	t.Run("delete line", func(t *testing.T) {
		extra, err := order.AddLine(uuid.New(), 2, decimal.NewFromInt(4), decimal.Zero, decimal.NewFromFloat(7.00))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, order))

		require.NoError(t, repo.DeleteLine(ctx, extra.ID))
		_, err = repo.FindLine(ctx, extra.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		assert.ErrorIs(t, repo.DeleteLine(ctx, extra.ID), shared.ErrNotFound)
	})

	t.Run("delete removes order and lines", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, order.ID))

		_, err := repo.FindByID(ctx, order.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindLine(ctx, line.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		assert.ErrorIs(t, repo.Delete(ctx, order.ID), shared.ErrNotFound)
	})
}

func TestGormPurchaseOrderRepository_RoundTrip(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	order, err := trade.NewPurchaseOrder(uuid.New(), time.Now(), time.Now().AddDate(0, 0, 14))
	require.NoError(t, err)
	line, err := order.AddLine(uuid.New(), 100, decimal.NewFromInt(3), decimal.NewFromFloat(7.00))
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, order))

	t.Run("find by id preloads lines", func(t *testing.T) {
		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)

		assert.Equal(t, order.OrderNumber, found.OrderNumber)
		require.Len(t, found.Lines, 1)
		assert.Equal(t, int64(100), found.Lines[0].QuantityOrdered)
		assert.Equal(t, int64(0), found.Lines[0].QuantityReceived)
	})

	t.Run("save persists received quantities", func(t *testing.T) {
		_, err := order.ChangeStatus(trade.PurchaseOrderStatusPartiallyReceived)
		require.NoError(t, err)
		require.NoError(t, order.UpdateLineReceived(line.ID, 40))
		require.NoError(t, repo.Save(ctx, order))

		found, err := repo.FindLine(ctx, line.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(40), found.QuantityReceived)
	})

	t.Run("find by number", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, order.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)
	})

	t.Run("delete removes order and lines", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, order.ID))

		_, err := repo.FindByID(ctx, order.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindLine(ctx, line.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
