package capacity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

func record(key string, kind catalog.Kind, level int, active bool) *base.Record {
	return &base.Record{
		Coord:      shared.MustNewCoord("A04:22:18:10"),
		CatalogKey: key,
		Kind:       kind,
		Level:      level,
		IsActive:   active,
	}
}

func TestCompute(t *testing.T) {
	t.Run("empty base still has innate construction rate", func(t *testing.T) {
		c := Compute(nil, nil)
		assert.Equal(t, BaseConstructionRate, c.ConstructionPerHour)
		assert.Equal(t, 0, c.ResearchPerHour)
		assert.Equal(t, 0, c.ProductionPerHour)
	})

	t.Run("active records contribute per level", func(t *testing.T) {
		records := []*base.Record{
			record("research_labs", catalog.KindStructure, 3, true),
			record("metal_refineries", catalog.KindStructure, 2, true),
			record("shipyards", catalog.KindStructure, 1, true),
		}
		c := Compute(records, nil)
		assert.Equal(t, 12+2*2+2*1, c.ConstructionPerHour)
		assert.Equal(t, 8*3, c.ResearchPerHour)
		assert.Equal(t, 6*1, c.ProductionPerHour)
		assert.Equal(t, 2*2, c.EconomyPerHour)
	})

	t.Run("inactive records contribute nothing", func(t *testing.T) {
		records := []*base.Record{
			record("research_labs", catalog.KindStructure, 3, false),
		}
		c := Compute(records, nil)
		assert.Equal(t, 0, c.ResearchPerHour)
	})

	t.Run("tech bonuses floor to integers", func(t *testing.T) {
		records := []*base.Record{
			record("research_labs", catalog.KindStructure, 1, true),
		}
		// 8 * 1.05 = 8.4 floors to 8
		c := Compute(records, map[string]int{"computer_tech": 1})
		assert.Equal(t, 8, c.ResearchPerHour)

		// 8 * 1.25 = 10
		c = Compute(records, map[string]int{"computer_tech": 5})
		assert.Equal(t, 10, c.ResearchPerHour)
	})

	t.Run("cybernetics boosts construction and production", func(t *testing.T) {
		records := []*base.Record{
			record("robotic_factories", catalog.KindStructure, 2, true),
		}
		// construction 12+8=20, production 8; +10% at level 2
		c := Compute(records, map[string]int{"cybernetics_tech": 2})
		assert.Equal(t, 22, c.ConstructionPerHour)
		assert.Equal(t, 8, c.ProductionPerHour)
	})
}

func TestRateFor(t *testing.T) {
	c := Capacities{
		ConstructionPerHour: 14,
		ProductionPerHour:   6,
		ResearchPerHour:     8,
	}
	assert.Equal(t, 14, c.RateFor(catalog.KindStructure))
	assert.Equal(t, 14, c.RateFor(catalog.KindDefense))
	assert.Equal(t, 6, c.RateFor(catalog.KindUnit))
	assert.Equal(t, 8, c.RateFor(catalog.KindTech))
}

func TestETAMinutes(t *testing.T) {
	// ceil(75/37 * 60) = ceil(121.6) = 122
	assert.Equal(t, 122, ETAMinutes(75, 37))

	// exact division stays exact
	assert.Equal(t, 60, ETAMinutes(60, 60))

	// tiny costs round up to one minute
	assert.Equal(t, 1, ETAMinutes(1, 120))

	// callers reject a zero rate before calling
	assert.Equal(t, 0, ETAMinutes(100, 0))
}
