package base

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

var recordCoord = shared.MustNewCoord("A04:22:18:10")

func TestNewConstruction(t *testing.T) {
	r := NewConstruction(recordCoord, catalog.KindStructure, "solar_plants", 60)

	assert.Equal(t, 1, r.Level)
	assert.False(t, r.IsActive)
	assert.False(t, r.PendingUpgrade)
	assert.Equal(t, int64(60), r.CreditsCost)
	assert.Equal(t, 1, r.TargetLevel())
	assert.True(t, r.InFlight())
}

func TestBeginUpgrade(t *testing.T) {
	r := NewConstruction(recordCoord, catalog.KindStructure, "solar_plants", 60)
	r.Activate(1)

	r.BeginUpgrade(90)

	assert.Equal(t, 1, r.Level)
	assert.False(t, r.IsActive)
	assert.True(t, r.PendingUpgrade)
	assert.Equal(t, 2, r.TargetLevel())
	assert.Equal(t, int64(90), r.CreditsCost)
	assert.True(t, r.InFlight())
}

func TestActivate(t *testing.T) {
	t.Run("first completion activates at target level", func(t *testing.T) {
		r := NewConstruction(recordCoord, catalog.KindStructure, "solar_plants", 60)
		assert.True(t, r.Activate(1))
		assert.True(t, r.IsActive)
		assert.Equal(t, 1, r.Level)
		assert.Equal(t, int64(0), r.CreditsCost)
		assert.False(t, r.InFlight())
	})

	t.Run("duplicate completion is a no-op", func(t *testing.T) {
		r := NewConstruction(recordCoord, catalog.KindStructure, "solar_plants", 60)
		r.Activate(1)
		assert.False(t, r.Activate(1))
		assert.Equal(t, 1, r.Level)
	})

	t.Run("stale lower target never downgrades", func(t *testing.T) {
		r := NewConstruction(recordCoord, catalog.KindStructure, "solar_plants", 60)
		r.Activate(3)
		assert.False(t, r.Activate(2))
		assert.Equal(t, 3, r.Level)
	})
}

func TestRevertUpgrade(t *testing.T) {
	r := NewConstruction(recordCoord, catalog.KindStructure, "solar_plants", 60)
	r.Activate(1)
	r.BeginUpgrade(90)
	now := time.Now()
	r.StampSchedule(now, now.Add(time.Hour))

	r.RevertUpgrade()

	assert.True(t, r.IsActive)
	assert.False(t, r.PendingUpgrade)
	assert.Equal(t, 1, r.Level)
	assert.Equal(t, int64(0), r.CreditsCost)
	assert.Nil(t, r.ConstructionStarted)
	assert.Nil(t, r.ConstructionCompleted)
}

func TestOwnership(t *testing.T) {
	owner := shared.MustNewEmpireID(7)
	b := &Base{Coord: recordCoord, EmpireID: owner}

	assert.True(t, b.IsOwned())
	assert.True(t, b.IsOwnedBy(owner))
	assert.False(t, b.IsOwnedBy(shared.MustNewEmpireID(8)))

	unowned := &Base{Coord: recordCoord}
	assert.False(t, unowned.IsOwned())
	assert.False(t, unowned.IsOwnedBy(owner))
}
