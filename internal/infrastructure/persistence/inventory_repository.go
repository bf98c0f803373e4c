package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mystock/backend/internal/domain/inventory"
	"github.com/mystock/backend/internal/domain/shared"
)

// GormInventoryRecordRepository implements InventoryRecordRepository using GORM.
//
// ApplyDelta serializes concurrent mutations per product with a row-level
// SELECT ... FOR UPDATE inside a transaction. On PostgreSQL a local
// lock_timeout bounds the wait; exceeding it surfaces as
// shared.ErrConcurrencyTimeout so callers can retry. Rows for distinct
// products never share a lock.
type GormInventoryRecordRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormInventoryRecordRepository creates a new GormInventoryRecordRepository
func NewGormInventoryRecordRepository(db *gorm.DB, lockTimeout time.Duration) *GormInventoryRecordRepository {
	return &GormInventoryRecordRepository{db: db, lockTimeout: lockTimeout}
}

// FindByProduct finds the inventory record for a product
func (r *GormInventoryRecordRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.InventoryRecord, error) {
	var record inventory.InventoryRecord
	if err := r.db.WithContext(ctx).First(&record, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// GetOrCreate returns the record for a product, creating an empty one when
// none exists yet. Uses ON CONFLICT DO NOTHING so two racing creators both
// end up observing the same row.
func (r *GormInventoryRecordRepository) GetOrCreate(ctx context.Context, productID uuid.UUID) (*inventory.InventoryRecord, bool, error) {
	record, err := r.FindByProduct(ctx, productID)
	if err == nil {
		return record, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	fresh, err := inventory.NewInventoryRecord(productID)
	if err != nil {
		return nil, false, err
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoNothing: true,
		}).
		Create(fresh)
	if result.Error != nil {
		return nil, false, result.Error
	}

	if result.RowsAffected == 0 {
		// lost the race, fetch the winner's row
		record, err = r.FindByProduct(ctx, productID)
		return record, false, err
	}

	return fresh, true, nil
}

// ApplyDelta atomically adds a delta to a product's record.
// The record is created on the fly when the product has never moved before.
func (r *GormInventoryRecordRepository) ApplyDelta(ctx context.Context, productID uuid.UUID, d inventory.Delta) (*inventory.InventoryRecord, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	var record inventory.InventoryRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.setLockTimeout(tx); err != nil {
			return err
		}

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, "product_id = ?", productID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fresh, ferr := inventory.NewInventoryRecord(productID)
			if ferr != nil {
				return ferr
			}
			if ferr := tx.
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "product_id"}},
					DoNothing: true,
				}).
				Create(fresh).Error; ferr != nil {
				return ferr
			}
			// re-read under the lock, the insert may have lost a race
			err = tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&record, "product_id = ?", productID).Error
		}
		if err != nil {
			return r.mapLockError(err)
		}

		record.Apply(d)

		return tx.Model(&inventory.InventoryRecord{}).
			Where("id = ?", record.ID).
			Updates(map[string]interface{}{
				"on_hand":          record.OnHand,
				"reserved":         record.Reserved,
				"last_movement_at": record.LastMovementAt,
				"updated_at":       record.UpdatedAt,
				"version":          record.Version,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// FindAll finds inventory records matching the filter
func (r *GormInventoryRecordRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryRecord, error) {
	var records []inventory.InventoryRecord
	query := applyFilter(r.db.WithContext(ctx).Model(&inventory.InventoryRecord{}), filter)
	query = r.applyDomainFilters(query, filter)

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a record outside the delta path
func (r *GormInventoryRecordRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Delete removes a product's record
func (r *GormInventoryRecordRepository) Delete(ctx context.Context, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.InventoryRecord{}, "product_id = ?", productID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts records matching the filter
func (r *GormInventoryRecordRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyDomainFilters(r.db.WithContext(ctx).Model(&inventory.InventoryRecord{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInventoryRecordRepository) applyDomainFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "negative":
			if value == true {
				query = query.Where("on_hand < 0 OR reserved < 0")
			}
		case "location":
			query = query.Where("location = ?", value)
		}
	}
	return query
}

// setLockTimeout bounds row lock waits for the current transaction.
// Only PostgreSQL supports lock_timeout; on other dialects (sqlite in
// tests) the lock degenerates to the database's own serialization.
func (r *GormInventoryRecordRepository) setLockTimeout(tx *gorm.DB) error {
	if r.lockTimeout <= 0 || tx.Dialector.Name() != "postgres" {
		return nil
	}
	// SET does not accept bind parameters
	return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())).Error
}

// mapLockError converts a lock wait failure into ErrConcurrencyTimeout
func (r *GormInventoryRecordRepository) mapLockError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "55P03") || strings.Contains(msg, "lock timeout") || strings.Contains(msg, "could not obtain lock") {
		return shared.ErrConcurrencyTimeout
	}
	return err
}

// Ensure GormInventoryRecordRepository implements InventoryRecordRepository
var _ inventory.InventoryRecordRepository = (*GormInventoryRecordRepository)(nil)
