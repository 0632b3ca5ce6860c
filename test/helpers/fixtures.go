package helpers

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/astrokernel/imperium/internal/adapters/persistence"
	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/empire"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// SeedEmpire persists a test empire and returns it
func SeedEmpire(t *testing.T, db *gorm.DB, id int, credits int64, techLevels map[string]int) *empire.Empire {
	t.Helper()

	if techLevels == nil {
		techLevels = make(map[string]int)
	}
	e := &empire.Empire{
		ID:           shared.MustNewEmpireID(id),
		Name:         "Test Empire",
		Credits:      credits,
		TechLevels:   techLevels,
		UnitCounts:   make(map[string]int),
		LastIncomeAt: time.Now().UTC(),
	}

	repo := persistence.NewGormEmpireRepository(db)
	if err := repo.Save(context.Background(), e); err != nil {
		t.Fatalf("failed to seed empire: %v", err)
	}
	return e
}

// SeedBase persists a test base owned by the given empire and returns it
func SeedBase(t *testing.T, db *gorm.DB, empireID int, coord string, solarEnergy, fertility, area int) *base.Base {
	t.Helper()

	b := &base.Base{
		Coord:       shared.MustNewCoord(coord),
		Name:        "Test Base",
		EmpireID:    shared.MustNewEmpireID(empireID),
		SolarEnergy: solarEnergy,
		Fertility:   fertility,
		Area:        area,
	}

	repo := persistence.NewGormBaseRepository(db)
	if err := repo.Save(context.Background(), b); err != nil {
		t.Fatalf("failed to seed base: %v", err)
	}
	return b
}
