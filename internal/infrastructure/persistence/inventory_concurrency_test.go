package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mystock/backend/internal/domain/inventory"
	"github.com/mystock/backend/internal/domain/shared"
)

func seedRecord(t *testing.T, repo *GormInventoryRecordRepository, onHand, reserved int64, location string) *inventory.InventoryRecord {
	t.Helper()

	record, err := inventory.NewInventoryRecord(uuid.New())
	require.NoError(t, err)
	record.OnHand = onHand
	record.Reserved = reserved
	record.Location = location
	require.NoError(t, repo.Save(context.Background(), record))
	return record
}

func TestGormInventoryRecordRepository_CountMatchesFindAll(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormInventoryRecordRepository(db, time.Second)
	ctx := context.Background()

	healthy := seedRecord(t, repo, 10, 2, "main")
	seedRecord(t, repo, 5, 0, "main")
	oversold := seedRecord(t, repo, -4, 0, "annex")

	t.Run("negative filter", func(t *testing.T) {
		filter := shared.Filter{Page: 1, PageSize: 20, Filters: map[string]interface{}{"negative": true}}

		records, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		total, err := repo.Count(ctx, filter)
		require.NoError(t, err)

		require.Len(t, records, 1)
		assert.Equal(t, oversold.ProductID, records[0].ProductID)
		assert.Equal(t, int64(len(records)), total)
	})

	t.Run("product filter", func(t *testing.T) {
		filter := shared.Filter{Page: 1, PageSize: 20, Filters: map[string]interface{}{"product_id": healthy.ProductID}}

		records, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		total, err := repo.Count(ctx, filter)
		require.NoError(t, err)

		require.Len(t, records, 1)
		assert.Equal(t, int64(1), total)
	})

	t.Run("location filter", func(t *testing.T) {
		filter := shared.Filter{Page: 1, PageSize: 20, Filters: map[string]interface{}{"location": "main"}}

		total, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("no filter counts everything", func(t *testing.T) {
		total, err := repo.Count(ctx, shared.Filter{Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})
}

func TestGormInventoryRecordRepository_ConcurrentApplyDelta(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormInventoryRecordRepository(db, time.Second)
	ctx := context.Background()

	t.Run("same product converges to the summed deltas", func(t *testing.T) {
		productID := uuid.New()

		const workers = 20
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < workers; i++ {
			g.Go(func() error {
				_, err := repo.ApplyDelta(gctx, productID, inventory.Delta{OnHand: 5, Reserved: -3})
				return err
			})
		}
		require.NoError(t, g.Wait())

		record, err := repo.FindByProduct(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, int64(workers*5), record.OnHand)
		assert.Equal(t, int64(workers*-3), record.Reserved)
	})

	t.Run("distinct products converge independently", func(t *testing.T) {
		first := uuid.New()
		second := uuid.New()

		const perProduct = 10
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < perProduct; i++ {
			g.Go(func() error {
				_, err := repo.ApplyDelta(gctx, first, inventory.Delta{OnHand: 7})
				return err
			})
			g.Go(func() error {
				_, err := repo.ApplyDelta(gctx, second, inventory.Delta{Reserved: 2})
				return err
			})
		}
		require.NoError(t, g.Wait())

		firstRecord, err := repo.FindByProduct(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, int64(perProduct*7), firstRecord.OnHand)
		assert.Equal(t, int64(0), firstRecord.Reserved)

		secondRecord, err := repo.FindByProduct(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, int64(0), secondRecord.OnHand)
		assert.Equal(t, int64(perProduct*2), secondRecord.Reserved)
	})

	t.Run("interleaved opposing deltas cancel out", func(t *testing.T) {
		productID := uuid.New()

		_, err := repo.ApplyDelta(ctx, productID, inventory.Delta{OnHand: 100})
		require.NoError(t, err)

		const pairs = 15
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < pairs; i++ {
			g.Go(func() error {
				_, err := repo.ApplyDelta(gctx, productID, inventory.Delta{OnHand: -4, Reserved: 4})
				return err
			})
			g.Go(func() error {
				_, err := repo.ApplyDelta(gctx, productID, inventory.Delta{OnHand: 4, Reserved: -4})
				return err
			})
		}
		require.NoError(t, g.Wait())

		record, err := repo.FindByProduct(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), record.OnHand)
		assert.Equal(t, int64(0), record.Reserved)
	})
}
