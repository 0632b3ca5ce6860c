package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// GormRecordRepository implements base.RecordRepository using GORM
type GormRecordRepository struct {
	db *gorm.DB
}

// NewGormRecordRepository creates a new GORM record repository
func NewGormRecordRepository(db *gorm.DB) *GormRecordRepository {
	return &GormRecordRepository{db: db}
}

// FindByCoordAndKey retrieves one record, (nil, nil) when absent
func (r *GormRecordRepository) FindByCoordAndKey(ctx context.Context, coord shared.Coord, catalogKey string) (*base.Record, error) {
	var model RecordModel
	result := r.db.WithContext(ctx).
		Where("coord = ? AND catalog_key = ?", coord.Value(), catalogKey).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find record: %w", result.Error)
	}
	return r.modelToRecord(&model)
}

// ListByCoord retrieves every record at a base
func (r *GormRecordRepository) ListByCoord(ctx context.Context, coord shared.Coord) ([]*base.Record, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("coord = ?", coord.Value()))
}

// ListActiveByCoord retrieves only active records at a base
func (r *GormRecordRepository) ListActiveByCoord(ctx context.Context, coord shared.Coord) ([]*base.Record, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("coord = ? AND is_active = ?", coord.Value(), true))
}

func (r *GormRecordRepository) list(ctx context.Context, tx *gorm.DB) ([]*base.Record, error) {
	var models []RecordModel
	result := tx.Order("catalog_key").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list records: %w", result.Error)
	}

	records := make([]*base.Record, 0, len(models))
	for i := range models {
		record, err := r.modelToRecord(&models[i])
		if err != nil {
			continue // Skip invalid rows
		}
		records = append(records, record)
	}
	return records, nil
}

// Save upserts one record
func (r *GormRecordRepository) Save(ctx context.Context, rec *base.Record) error {
	model := &RecordModel{
		Coord:                 rec.Coord.Value(),
		CatalogKey:            rec.CatalogKey,
		Kind:                  string(rec.Kind),
		Level:                 rec.Level,
		IsActive:              rec.IsActive,
		PendingUpgrade:        rec.PendingUpgrade,
		CreditsCost:           rec.CreditsCost,
		ConstructionStarted:   rec.ConstructionStarted,
		ConstructionCompleted: rec.ConstructionCompleted,
	}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save record: %w", result.Error)
	}
	return nil
}

// Delete removes a record after a first-build cancellation
func (r *GormRecordRepository) Delete(ctx context.Context, coord shared.Coord, catalogKey string) error {
	result := r.db.WithContext(ctx).
		Where("coord = ? AND catalog_key = ?", coord.Value(), catalogKey).
		Delete(&RecordModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete record: %w", result.Error)
	}
	return nil
}

func (r *GormRecordRepository) modelToRecord(model *RecordModel) (*base.Record, error) {
	coord, err := shared.NewCoord(model.Coord)
	if err != nil {
		return nil, fmt.Errorf("invalid coordinate in database: %w", err)
	}
	return &base.Record{
		Coord:                 coord,
		CatalogKey:            model.CatalogKey,
		Kind:                  catalog.Kind(model.Kind),
		Level:                 model.Level,
		IsActive:              model.IsActive,
		PendingUpgrade:        model.PendingUpgrade,
		CreditsCost:           model.CreditsCost,
		ConstructionStarted:   model.ConstructionStarted,
		ConstructionCompleted: model.ConstructionCompleted,
	}, nil
}
