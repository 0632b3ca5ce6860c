package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrokernel/imperium/internal/adapters/persistence"
	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/empire"
	"github.com/astrokernel/imperium/internal/domain/shared"
	"github.com/astrokernel/imperium/test/helpers"
)

func TestEmpireRepository(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormEmpireRepository(db)
	ctx := context.Background()

	t.Run("save and reload round-trips maps", func(t *testing.T) {
		emp := empire.New(shared.MustNewEmpireID(1), "Rome", 500, time.Now().UTC())
		emp.TechLevels["energy_tech"] = 3
		emp.UnitCounts["fighters"] = 12
		require.NoError(t, repo.Save(ctx, emp))

		loaded, err := repo.FindByID(ctx, emp.ID)
		require.NoError(t, err)
		assert.Equal(t, "Rome", loaded.Name)
		assert.Equal(t, int64(500), loaded.Credits)
		assert.Equal(t, 3, loaded.TechLevels["energy_tech"])
		assert.Equal(t, 12, loaded.UnitCounts["fighters"])
	})

	t.Run("missing empire maps to NOT_FOUND", func(t *testing.T) {
		_, err := repo.FindByID(ctx, shared.MustNewEmpireID(99))
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	})

	t.Run("list all", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx,
			empire.New(shared.MustNewEmpireID(2), "Carthage", 100, time.Now().UTC())))

		all, err := repo.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestBaseRepository(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBaseRepository(db)
	ctx := context.Background()

	owner := shared.MustNewEmpireID(1)
	coord := shared.MustNewCoord("A04:22:18:10")

	require.NoError(t, repo.Save(ctx, &base.Base{
		Coord:       coord,
		Name:        "Alpha",
		EmpireID:    owner,
		SolarEnergy: 3,
		Fertility:   5,
		Area:        40,
	}))

	t.Run("find by coord", func(t *testing.T) {
		b, err := repo.FindByCoord(ctx, coord)
		require.NoError(t, err)
		assert.Equal(t, "Alpha", b.Name)
		assert.True(t, b.IsOwnedBy(owner))
		assert.Equal(t, 40, b.Area)
	})

	t.Run("unowned base round-trips as unowned", func(t *testing.T) {
		empty := shared.MustNewCoord("C01:02:03:04")
		require.NoError(t, repo.Save(ctx, &base.Base{Coord: empty, Name: "Empty"}))

		b, err := repo.FindByCoord(ctx, empty)
		require.NoError(t, err)
		assert.False(t, b.IsOwned())
	})

	t.Run("list by empire", func(t *testing.T) {
		bases, err := repo.ListByEmpire(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, bases, 1)
	})

	t.Run("missing base maps to NOT_FOUND", func(t *testing.T) {
		_, err := repo.FindByCoord(ctx, shared.MustNewCoord("Z99:99:99:99"))
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	})
}

func TestRecordRepository(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRecordRepository(db)
	ctx := context.Background()

	coord := shared.MustNewCoord("A04:22:18:10")

	t.Run("absent record is nil without error", func(t *testing.T) {
		r, err := repo.FindByCoordAndKey(ctx, coord, "solar_plants")
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("save and reload", func(t *testing.T) {
		r := base.NewConstruction(coord, catalog.KindStructure, "solar_plants", 60)
		require.NoError(t, repo.Save(ctx, r))

		loaded, err := repo.FindByCoordAndKey(ctx, coord, "solar_plants")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, 1, loaded.Level)
		assert.False(t, loaded.IsActive)
		assert.Equal(t, int64(60), loaded.CreditsCost)
	})

	t.Run("active listing filters inactive records", func(t *testing.T) {
		active := base.NewConstruction(coord, catalog.KindStructure, "gas_plants", 80)
		active.Activate(1)
		require.NoError(t, repo.Save(ctx, active))

		all, err := repo.ListByCoord(ctx, coord)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		activeOnly, err := repo.ListActiveByCoord(ctx, coord)
		require.NoError(t, err)
		require.Len(t, activeOnly, 1)
		assert.Equal(t, "gas_plants", activeOnly[0].CatalogKey)
	})

	t.Run("delete removes the row", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, coord, "solar_plants"))

		r, err := repo.FindByCoordAndKey(ctx, coord, "solar_plants")
		require.NoError(t, err)
		assert.Nil(t, r)
	})
}
