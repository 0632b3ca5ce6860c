package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/queue"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

var testCoord = shared.MustNewCoord("A04:22:18:10")

func record(key string, kind catalog.Kind, level int, active bool) *base.Record {
	return &base.Record{
		Coord:      testCoord,
		CatalogKey: key,
		Kind:       kind,
		Level:      level,
		IsActive:   active,
	}
}

func testBase(solar, fertility, area int) *base.Base {
	return &base.Base{
		Coord:       testCoord,
		Name:        "Test Base",
		EmpireID:    shared.MustNewEmpireID(1),
		SolarEnergy: solar,
		Fertility:   fertility,
		Area:        area,
	}
}

func TestEnergy(t *testing.T) {
	t.Run("bare base produces its solar baseline", func(t *testing.T) {
		report := Energy(testBase(3, 5, 40), nil)
		assert.Equal(t, 3, report.Produced)
		assert.Equal(t, 0, report.Consumed)
		assert.Equal(t, 3, report.Balance)
	})

	t.Run("active producers and consumers roll up per level", func(t *testing.T) {
		records := []*base.Record{
			record("solar_plants", catalog.KindStructure, 3, true),
			record("research_labs", catalog.KindStructure, 2, true),
		}
		report := Energy(testBase(3, 5, 40), records)
		assert.Equal(t, 3+2*3, report.Produced)
		assert.Equal(t, 2, report.Consumed)
		assert.Equal(t, 7, report.Balance)
	})

	t.Run("inactive records contribute nothing", func(t *testing.T) {
		records := []*base.Record{
			record("solar_plants", catalog.KindStructure, 3, false),
			record("research_labs", catalog.KindStructure, 2, false),
		}
		report := Energy(testBase(3, 5, 40), records)
		assert.Equal(t, 3, report.Produced)
		assert.Equal(t, 0, report.Consumed)
	})
}

func TestAreaUsed(t *testing.T) {
	upgrading := record("metal_refineries", catalog.KindStructure, 2, false)
	upgrading.PendingUpgrade = true

	records := []*base.Record{
		record("solar_plants", catalog.KindStructure, 3, true),
		upgrading,
	}
	// 3 solar slots plus the refinery's target level 3
	assert.Equal(t, 6, AreaUsed(records))
}

func TestPopulationCapacity(t *testing.T) {
	t.Run("no urban structures means no housing", func(t *testing.T) {
		assert.Equal(t, 0, PopulationCapacity(testBase(3, 5, 40), nil))
	})

	t.Run("fertility scales urban level", func(t *testing.T) {
		records := []*base.Record{
			record("urban_structures", catalog.KindStructure, 4, true),
		}
		assert.Equal(t, 20, PopulationCapacity(testBase(3, 5, 40), records))
	})

	t.Run("inactive urban structures house nobody", func(t *testing.T) {
		records := []*base.Record{
			record("urban_structures", catalog.KindStructure, 4, false),
		}
		assert.Equal(t, 0, PopulationCapacity(testBase(3, 5, 40), records))
	})
}

func TestPopulationUsed(t *testing.T) {
	records := []*base.Record{
		record("missile_turrets", catalog.KindDefense, 2, true),
		record("plasma_turrets", catalog.KindDefense, 1, true),
		record("solar_plants", catalog.KindStructure, 5, true),
	}

	trainingOrder := queue.New(catalog.KindUnit, shared.MustNewEmpireID(1), testCoord, "corvettes")
	trainingOrder.Quantity = 5

	// turrets: 1*2 + 2*1 = 4; corvettes: 2*5 = 10
	assert.Equal(t, 14, PopulationUsed(records, []*queue.Entry{trainingOrder}))
}
