package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// GormBaseRepository implements base.Repository using GORM
type GormBaseRepository struct {
	db *gorm.DB
}

// NewGormBaseRepository creates a new GORM base repository
func NewGormBaseRepository(db *gorm.DB) *GormBaseRepository {
	return &GormBaseRepository{db: db}
}

// FindByCoord retrieves a base by coordinate
func (r *GormBaseRepository) FindByCoord(ctx context.Context, coord shared.Coord) (*base.Base, error) {
	var model BaseModel
	result := r.db.WithContext(ctx).Where("coord = ?", coord.Value()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(fmt.Sprintf("base not found: %s", coord))
		}
		return nil, fmt.Errorf("failed to find base: %w", result.Error)
	}
	return r.modelToBase(&model)
}

// ListByEmpire retrieves all bases owned by one empire
func (r *GormBaseRepository) ListByEmpire(ctx context.Context, id shared.EmpireID) ([]*base.Base, error) {
	var models []BaseModel
	result := r.db.WithContext(ctx).Where("empire_id = ?", id.Value()).Order("coord").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list bases: %w", result.Error)
	}

	bases := make([]*base.Base, 0, len(models))
	for i := range models {
		b, err := r.modelToBase(&models[i])
		if err != nil {
			continue // Skip invalid rows
		}
		bases = append(bases, b)
	}
	return bases, nil
}

// Save upserts a base
func (r *GormBaseRepository) Save(ctx context.Context, b *base.Base) error {
	model := &BaseModel{
		Coord:       b.Coord.Value(),
		Name:        b.Name,
		SolarEnergy: b.SolarEnergy,
		Fertility:   b.Fertility,
		Area:        b.Area,
	}
	if !b.EmpireID.IsZero() {
		id := b.EmpireID.Value()
		model.EmpireID = &id
	}

	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save base: %w", result.Error)
	}
	return nil
}

func (r *GormBaseRepository) modelToBase(model *BaseModel) (*base.Base, error) {
	coord, err := shared.NewCoord(model.Coord)
	if err != nil {
		return nil, fmt.Errorf("invalid coordinate in database: %w", err)
	}

	b := &base.Base{
		Coord:       coord,
		Name:        model.Name,
		SolarEnergy: model.SolarEnergy,
		Fertility:   model.Fertility,
		Area:        model.Area,
	}
	if model.EmpireID != nil {
		id, err := shared.NewEmpireID(*model.EmpireID)
		if err != nil {
			return nil, fmt.Errorf("invalid empire ID in database: %w", err)
		}
		b.EmpireID = id
	}
	return b, nil
}
