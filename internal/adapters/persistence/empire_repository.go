package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/astrokernel/imperium/internal/domain/empire"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// GormEmpireRepository implements empire.Repository using GORM
type GormEmpireRepository struct {
	db *gorm.DB
}

// NewGormEmpireRepository creates a new GORM empire repository
func NewGormEmpireRepository(db *gorm.DB) *GormEmpireRepository {
	return &GormEmpireRepository{db: db}
}

// FindByID retrieves an empire by ID
func (r *GormEmpireRepository) FindByID(ctx context.Context, id shared.EmpireID) (*empire.Empire, error) {
	var model EmpireModel
	result := r.db.WithContext(ctx).Where("id = ?", id.Value()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(fmt.Sprintf("empire not found: %s", id))
		}
		return nil, fmt.Errorf("failed to find empire: %w", result.Error)
	}
	return r.modelToEmpire(&model)
}

// ListAll retrieves every empire
func (r *GormEmpireRepository) ListAll(ctx context.Context) ([]*empire.Empire, error) {
	var models []EmpireModel
	result := r.db.WithContext(ctx).Order("id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list empires: %w", result.Error)
	}

	empires := make([]*empire.Empire, 0, len(models))
	for i := range models {
		e, err := r.modelToEmpire(&models[i])
		if err != nil {
			continue // Skip invalid rows
		}
		empires = append(empires, e)
	}
	return empires, nil
}

// Save upserts an empire
func (r *GormEmpireRepository) Save(ctx context.Context, e *empire.Empire) error {
	model, err := r.empireToModel(e)
	if err != nil {
		return fmt.Errorf("failed to convert empire to model: %w", err)
	}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save empire: %w", result.Error)
	}
	return nil
}

func (r *GormEmpireRepository) modelToEmpire(model *EmpireModel) (*empire.Empire, error) {
	id, err := shared.NewEmpireID(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid empire ID in database: %w", err)
	}

	techLevels := make(map[string]int)
	if model.TechLevels != "" {
		if err := json.Unmarshal([]byte(model.TechLevels), &techLevels); err != nil {
			return nil, fmt.Errorf("invalid tech levels for empire %d: %w", model.ID, err)
		}
	}
	unitCounts := make(map[string]int)
	if model.UnitCounts != "" {
		if err := json.Unmarshal([]byte(model.UnitCounts), &unitCounts); err != nil {
			return nil, fmt.Errorf("invalid unit counts for empire %d: %w", model.ID, err)
		}
	}

	return &empire.Empire{
		ID:           id,
		Name:         model.Name,
		Credits:      model.Credits,
		TechLevels:   techLevels,
		UnitCounts:   unitCounts,
		LastIncomeAt: model.LastIncomeAt,
	}, nil
}

func (r *GormEmpireRepository) empireToModel(e *empire.Empire) (*EmpireModel, error) {
	techJSON, err := json.Marshal(e.TechLevels)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tech levels: %w", err)
	}
	unitsJSON, err := json.Marshal(e.UnitCounts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal unit counts: %w", err)
	}

	return &EmpireModel{
		ID:           e.ID.Value(),
		Name:         e.Name,
		Credits:      e.Credits,
		TechLevels:   string(techJSON),
		UnitCounts:   string(unitsJSON),
		LastIncomeAt: e.LastIncomeAt,
	}, nil
}
