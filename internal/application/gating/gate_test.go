package gating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/ledger"
	"github.com/astrokernel/imperium/internal/domain/queue"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

var (
	gateCoord  = shared.MustNewCoord("A04:22:18:10")
	gateEmpire = shared.MustNewEmpireID(1)
)

func queuedEntry(key string, delta int) *queue.Entry {
	e := queue.New(catalog.KindStructure, gateEmpire, gateCoord, key)
	e.EnergyDelta = delta
	return e
}

func TestEvaluate(t *testing.T) {
	t.Run("producer is always admitted", func(t *testing.T) {
		report := ledger.EnergyReport{Produced: 0, Consumed: 5, Balance: -5}
		result := Evaluate("StructureService", "solar_plants", report, nil, 2)
		assert.True(t, result.Admitted)
		assert.NoError(t, result.Err())
	})

	t.Run("consumer admitted while projection stays non-negative", func(t *testing.T) {
		report := ledger.EnergyReport{Produced: 5, Consumed: 4, Balance: 1}
		result := Evaluate("StructureService", "research_labs", report, nil, -1)
		assert.True(t, result.Admitted)
		assert.Equal(t, 0, result.ProjectedEnergy)
	})

	t.Run("consumer rejected when projection goes negative", func(t *testing.T) {
		// Two active research_labs on a balance of 1: a third lab cannot fit.
		report := ledger.EnergyReport{Produced: 3, Consumed: 2, Balance: 1}
		result := Evaluate("StructureService", "research_labs", report, nil, -2)
		assert.False(t, result.Admitted)
		assert.Equal(t, -1, result.ProjectedEnergy)

		err := result.Err()
		require.Error(t, err)
		energyErr, ok := err.(*shared.InsufficientEnergyError)
		require.True(t, ok)
		assert.Equal(t, shared.CodeInsufficientEnergy, shared.CodeOf(err))
		assert.Equal(t, -1, energyErr.ProjectedEnergy)
		assert.Equal(t, -2, energyErr.Delta)
	})

	t.Run("earlier queued producer lifts the projection", func(t *testing.T) {
		// Balance -1 would reject a -2 consumer, but a queued fusion plant
		// (+4) created earlier reserves enough headroom.
		report := ledger.EnergyReport{Produced: 3, Consumed: 4, Balance: -1}
		earlier := []*queue.Entry{queuedEntry("fusion_plants", 4)}

		result := Evaluate("StructureService", "research_labs", report, earlier, -2)
		assert.True(t, result.Admitted)
		assert.Equal(t, 4, result.Reserved)
		assert.Equal(t, 1, result.ProjectedEnergy)
	})

	t.Run("earlier queued consumers lower the projection", func(t *testing.T) {
		report := ledger.EnergyReport{Produced: 4, Consumed: 1, Balance: 3}
		earlier := []*queue.Entry{
			queuedEntry("research_labs", -1),
			queuedEntry("metal_refineries", -1),
		}

		result := Evaluate("StructureService", "shipyards", report, earlier, -2)
		assert.False(t, result.Admitted)
		assert.Equal(t, -2, result.Reserved)
		assert.Equal(t, -1, result.ProjectedEnergy)
	})

	t.Run("started entries are not re-reserved", func(t *testing.T) {
		// Active entries already show in the balance; counting them again
		// would double-charge the projection.
		started := queuedEntry("research_labs", -1)
		started.Status = queue.StatusActive

		report := ledger.EnergyReport{Produced: 2, Consumed: 1, Balance: 1}
		result := Evaluate("StructureService", "metal_refineries", report,
			[]*queue.Entry{started}, -1)
		assert.True(t, result.Admitted)
		assert.Equal(t, 0, result.Reserved)
		assert.Equal(t, 0, result.ProjectedEnergy)
	})
}
