package admission_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/astrokernel/imperium/internal/adapters/persistence"
	"github.com/astrokernel/imperium/internal/application/admission"
	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/empire"
	"github.com/astrokernel/imperium/internal/domain/ledger"
	"github.com/astrokernel/imperium/internal/domain/queue"
	"github.com/astrokernel/imperium/internal/domain/shared"
	"github.com/astrokernel/imperium/test/helpers"
)

const testCoordValue = "A04:22:18:10"

type testEnv struct {
	db      *gorm.DB
	empires *persistence.GormEmpireRepository
	bases   *persistence.GormBaseRepository
	records *persistence.GormRecordRepository
	entries *persistence.GormQueueRepository
	journal *persistence.GormTransactionRepository
	clock   *shared.MockClock

	pipeline *admission.Pipeline
	empireID shared.EmpireID
	coord    shared.Coord
}

func newTestEnv(t *testing.T) *testEnv {
	db := helpers.NewTestDB(t)
	env := &testEnv{
		db:       db,
		empires:  persistence.NewGormEmpireRepository(db),
		bases:    persistence.NewGormBaseRepository(db),
		records:  persistence.NewGormRecordRepository(db),
		entries:  persistence.NewGormQueueRepository(db),
		journal:  persistence.NewGormTransactionRepository(db),
		clock:    shared.NewMockClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)),
		empireID: shared.MustNewEmpireID(1),
		coord:    shared.MustNewCoord(testCoordValue),
	}
	env.pipeline = admission.NewPipeline(env.empires, env.bases, env.records, env.entries, env.clock).
		WithJournal(env.journal)

	helpers.SeedEmpire(t, db, 1, 10000, nil)
	helpers.SeedBase(t, db, 1, testCoordValue, 2, 5, 40)
	return env
}

// activateRecord seeds an already-built structure/defense at the given level
func (env *testEnv) activateRecord(t *testing.T, kind catalog.Kind, key string, level int) {
	t.Helper()
	r := base.NewConstruction(env.coord, kind, key, 0)
	r.Activate(level)
	require.NoError(t, env.records.Save(context.Background(), r))
}

func (env *testEnv) setTechLevel(t *testing.T, key string, level int) {
	t.Helper()
	ctx := context.Background()
	emp, err := env.empires.FindByID(ctx, env.empireID)
	require.NoError(t, err)
	emp.PromoteTechTo(key, level)
	require.NoError(t, env.empires.Save(ctx, emp))
}

func (env *testEnv) credits(t *testing.T) int64 {
	t.Helper()
	emp, err := env.empires.FindByID(context.Background(), env.empireID)
	require.NoError(t, err)
	return emp.Credits
}

func (env *testEnv) startStructure(key string) (*admission.StartResult, error) {
	h := admission.NewStartStructureHandler(env.pipeline)
	response, err := h.Handle(context.Background(), &admission.StartStructureCommand{
		EmpireID: env.empireID, Coord: env.coord, CatalogKey: key,
	})
	if err != nil {
		return nil, err
	}
	return response.(*admission.StartResult), nil
}

func TestStartStructureFirstBuild(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.startStructure("solar_plants")
	require.NoError(t, err)

	assert.Equal(t, queue.StatusQueued, result.Entry.Status)
	assert.Equal(t, 1, result.Entry.TargetLevel)
	assert.Equal(t, int64(60), result.Entry.CreditsCost)

	// Innate construction rate 12: ceil(60/12*60) = 300 minutes
	assert.Equal(t, 12, result.CapacityPerHour)
	assert.Equal(t, 300, result.EtaMinutes)

	// Queueing is free
	assert.Equal(t, int64(10000), env.credits(t))

	// The record exists, inactive, holding the in-flight cost
	r, err := env.records.FindByCoordAndKey(context.Background(), env.coord, "solar_plants")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.False(t, r.IsActive)
	assert.Equal(t, int64(60), r.CreditsCost)
}

func TestStartStructureUpgrade(t *testing.T) {
	env := newTestEnv(t)
	env.activateRecord(t, catalog.KindStructure, "solar_plants", 1)

	result, err := env.startStructure("solar_plants")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Entry.TargetLevel)
	assert.Equal(t, int64(90), result.Entry.CreditsCost)

	r, err := env.records.FindByCoordAndKey(context.Background(), env.coord, "solar_plants")
	require.NoError(t, err)
	assert.False(t, r.IsActive)
	assert.True(t, r.PendingUpgrade)
	assert.Equal(t, 1, r.Level)
	assert.Equal(t, 2, r.TargetLevel())
}

func TestStartStructureIdempotency(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.startStructure("solar_plants")
	require.NoError(t, err)

	_, err = env.startStructure("solar_plants")
	require.Error(t, err)

	inProgress, ok := err.(*shared.AlreadyInProgressError)
	require.True(t, ok)
	assert.Equal(t, shared.CodeAlreadyInProgress, shared.CodeOf(err))
	assert.Equal(t, "structure", inProgress.QueueType)
	assert.Equal(t, first.Entry.ID, inProgress.Existing.ID)
	assert.Equal(t, "queued", inProgress.Existing.State)

	// Only one live entry exists
	live, err := env.entries.ListLiveByCoord(context.Background(), env.coord)
	require.NoError(t, err)
	assert.Len(t, live, 1)
}

func TestConcurrentAdmissionSingleWinner(t *testing.T) {
	env := newTestEnv(t)

	// Pin the in-memory database to one connection so every goroutine sees
	// the same store.
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	const n = 8
	results := make([]*admission.StartResult, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.startStructure("solar_plants")
		}(i)
	}
	wg.Wait()

	// Exactly one admission wins the identity slot.
	var winnerID string
	winners := 0
	for i := 0; i < n; i++ {
		if errs[i] == nil {
			winners++
			winnerID = results[i].Entry.ID
		}
	}
	require.Equal(t, 1, winners)

	// Every loser gets ALREADY_IN_PROGRESS carrying the winner's entry,
	// whether it failed at the pre-check or on the unique-index backstop.
	for i := 0; i < n; i++ {
		if errs[i] == nil {
			continue
		}
		inProgress, ok := errs[i].(*shared.AlreadyInProgressError)
		require.True(t, ok, "request %d: unexpected error %v", i, errs[i])
		assert.Equal(t, winnerID, inProgress.Existing.ID)
	}

	live, err := env.entries.ListLiveByCoord(context.Background(), env.coord)
	require.NoError(t, err)
	assert.Len(t, live, 1)
}

func TestStartStructureTechPrereqs(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.startStructure("fusion_plants")
	require.Error(t, err)

	techErr, ok := err.(*shared.TechRequirementsError)
	require.True(t, ok)
	assert.Equal(t, shared.CodeTechRequirements, shared.CodeOf(err))
	require.Len(t, techErr.Unmet, 1)
	assert.Equal(t, "energy_tech", techErr.Unmet[0].TechKey)
	assert.Equal(t, 4, techErr.Unmet[0].Required)
	assert.Equal(t, 0, techErr.Unmet[0].Current)

	env.setTechLevel(t, "energy_tech", 4)
	_, err = env.startStructure("fusion_plants")
	assert.NoError(t, err)
}

func TestStartStructureAreaExhaustion(t *testing.T) {
	env := newTestEnv(t)
	env.activateRecord(t, catalog.KindStructure, "solar_plants", 40)

	_, err := env.startStructure("urban_structures")
	require.Error(t, err)
	assert.Equal(t, shared.CodeInsufficientArea, shared.CodeOf(err))
}

func TestEnergyGateAcrossQueue(t *testing.T) {
	env := newTestEnv(t)
	// Base solar baseline is 2.

	// Two queued consumers reserve the whole balance.
	_, err := env.startStructure("research_labs")
	require.NoError(t, err)
	_, err = env.startStructure("metal_refineries")
	require.NoError(t, err)

	// A third consumer would project to -1.
	_, err = env.startStructure("shipyards")
	require.Error(t, err)
	energyErr, ok := err.(*shared.InsufficientEnergyError)
	require.True(t, ok)
	assert.Equal(t, shared.CodeInsufficientEnergy, shared.CodeOf(err))
	assert.Equal(t, -1, energyErr.ProjectedEnergy)
	assert.Equal(t, -2, energyErr.Reserved)

	// A producer is always admitted and lifts later projections.
	_, err = env.startStructure("solar_plants")
	require.NoError(t, err)
	_, err = env.startStructure("shipyards")
	assert.NoError(t, err)
}

func TestStartResearch(t *testing.T) {
	env := newTestEnv(t)
	handler := admission.NewStartResearchHandler(env.pipeline)
	ctx := context.Background()

	t.Run("rejected without research capacity", func(t *testing.T) {
		_, err := handler.Handle(ctx, &admission.StartResearchCommand{
			EmpireID: env.empireID, Coord: env.coord, CatalogKey: "energy_tech",
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeNoCapacity, shared.CodeOf(err))
	})

	env.activateRecord(t, catalog.KindStructure, "research_labs", 2)

	t.Run("starts immediately and charges credits", func(t *testing.T) {
		response, err := handler.Handle(ctx, &admission.StartResearchCommand{
			EmpireID: env.empireID, Coord: env.coord, CatalogKey: "energy_tech",
		})
		require.NoError(t, err)
		result := response.(*admission.StartResult)

		assert.Equal(t, queue.StatusActive, result.Entry.Status)
		assert.Equal(t, 1, result.Entry.TargetLevel)
		require.NotNil(t, result.Entry.CompletesAt)

		// Labs level 2 -> rate 16: ceil(200/16*60) = 750 minutes
		assert.Equal(t, 16, result.CapacityPerHour)
		assert.Equal(t, 750, result.EtaMinutes)
		assert.Equal(t, int64(10000-200), env.credits(t))
	})

	t.Run("duplicate research is rejected", func(t *testing.T) {
		_, err := handler.Handle(ctx, &admission.StartResearchCommand{
			EmpireID: env.empireID, Coord: env.coord, CatalogKey: "energy_tech",
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeAlreadyInProgress, shared.CodeOf(err))
	})

	t.Run("insufficient funds rejects before insert", func(t *testing.T) {
		emp, err := env.empires.FindByID(ctx, env.empireID)
		require.NoError(t, err)
		require.NoError(t, emp.DeductCredits(emp.Credits))
		require.NoError(t, env.empires.Save(ctx, emp))

		_, err = handler.Handle(ctx, &admission.StartResearchCommand{
			EmpireID: env.empireID, Coord: env.coord, CatalogKey: "computer_tech",
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeInsufficientFunds, shared.CodeOf(err))

		// Nothing was inserted for the rejected tech
		live, err := env.entries.FindLiveByIdentityKey(ctx,
			queue.IdentityKey(env.empireID, env.coord, "computer_tech"))
		require.NoError(t, err)
		assert.Nil(t, live)
	})
}

func TestTrainUnits(t *testing.T) {
	env := newTestEnv(t)
	handler := admission.NewTrainUnitsHandler(env.pipeline)
	ctx := context.Background()

	train := func(key string, quantity int) (*admission.StartResult, error) {
		response, err := handler.Handle(ctx, &admission.TrainUnitsCommand{
			EmpireID: env.empireID, Coord: env.coord, CatalogKey: key, Quantity: quantity,
		})
		if err != nil {
			return nil, err
		}
		return response.(*admission.StartResult), nil
	}

	t.Run("quantity bounds", func(t *testing.T) {
		_, err := train("fighters", 0)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidRequest, shared.CodeOf(err))

		_, err = train("fighters", 10001)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidRequest, shared.CodeOf(err))
	})

	t.Run("rejected without a shipyard", func(t *testing.T) {
		_, err := train("fighters", 5)
		require.Error(t, err)
		assert.Equal(t, shared.CodeShipyardRequired, shared.CodeOf(err))
	})

	env.activateRecord(t, catalog.KindStructure, "shipyards", 1)

	t.Run("rejected without housing", func(t *testing.T) {
		_, err := train("fighters", 5)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInsufficientPopulation, shared.CodeOf(err))
	})

	env.activateRecord(t, catalog.KindStructure, "urban_structures", 2)

	t.Run("trains immediately and charges credits", func(t *testing.T) {
		result, err := train("fighters", 5)
		require.NoError(t, err)

		assert.Equal(t, queue.StatusActive, result.Entry.Status)
		assert.Equal(t, 5, result.Entry.Quantity)
		assert.Equal(t, int64(25), result.Entry.CreditsCost)

		// Shipyard level 1 -> production 6: ceil(25/6*60) = 250 minutes
		assert.Equal(t, 6, result.CapacityPerHour)
		assert.Equal(t, 250, result.EtaMinutes)
		assert.Equal(t, int64(10000-25), env.credits(t))
	})

	t.Run("shipyard level gates heavier hulls", func(t *testing.T) {
		_, err := train("recyclers", 1)
		require.Error(t, err)
		assert.Equal(t, shared.CodeShipyardRequired, shared.CodeOf(err))
	})

	t.Run("housing accounts for live training orders", func(t *testing.T) {
		// 5 fighters already occupy half of the 10 housing slots
		_, err := train("scout_ships", 6)
		require.Error(t, err)

		// scout_ships also needs computer_tech 1; prereqs are checked first
		assert.Equal(t, shared.CodeTechRequirements, shared.CodeOf(err))

		env.setTechLevel(t, "computer_tech", 1)
		_, err = train("scout_ships", 6)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInsufficientPopulation, shared.CodeOf(err))

		_, err = train("scout_ships", 5)
		assert.NoError(t, err)
	})
}

func TestOwnershipChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("unknown base", func(t *testing.T) {
		h := admission.NewStartStructureHandler(env.pipeline)
		_, err := h.Handle(ctx, &admission.StartStructureCommand{
			EmpireID: env.empireID, Coord: shared.MustNewCoord("Z99:99:99:99"),
			CatalogKey: "solar_plants",
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	})

	t.Run("foreign base", func(t *testing.T) {
		emp2 := empire.New(shared.MustNewEmpireID(2), "Rival", 1000, env.clock.Now())
		require.NoError(t, env.empires.Save(ctx, emp2))

		h := admission.NewStartStructureHandler(env.pipeline)
		_, err := h.Handle(ctx, &admission.StartStructureCommand{
			EmpireID: emp2.ID, Coord: env.coord, CatalogKey: "solar_plants",
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotOwner, shared.CodeOf(err))
	})

	t.Run("unknown catalog key", func(t *testing.T) {
		_, err := env.startStructure("orbital_cannons")
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidRequest, shared.CodeOf(err))
	})
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t)
	cancelHandler := admission.NewCancelHandler(env.pipeline)
	ctx := context.Background()

	cancel := func(id string) (*admission.CancelResult, error) {
		response, err := cancelHandler.Handle(ctx, &admission.CancelCommand{
			EmpireID: env.empireID, EntryID: id,
		})
		if err != nil {
			return nil, err
		}
		return response.(*admission.CancelResult), nil
	}

	t.Run("queued first build refunds nothing and deletes the record", func(t *testing.T) {
		started, err := env.startStructure("solar_plants")
		require.NoError(t, err)

		result, err := cancel(started.Entry.ID)
		require.NoError(t, err)
		assert.True(t, result.Deleted)
		assert.False(t, result.RevertedUpgrade)
		assert.Equal(t, int64(0), result.RefundedCredits)
		assert.Equal(t, int64(10000), env.credits(t))

		r, err := env.records.FindByCoordAndKey(ctx, env.coord, "solar_plants")
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("started upgrade refunds and reverts the record", func(t *testing.T) {
		env.activateRecord(t, catalog.KindStructure, "metal_refineries", 1)
		started, err := env.startStructure("metal_refineries")
		require.NoError(t, err)

		// Simulate the scheduler having started the upgrade.
		started.Entry.Start(env.clock.Now(), 60)
		won, err := env.entries.StartEntry(ctx, started.Entry.ID,
			*started.Entry.StartedAt, *started.Entry.CompletesAt)
		require.NoError(t, err)
		require.True(t, won)

		result, err := cancel(started.Entry.ID)
		require.NoError(t, err)
		assert.True(t, result.RevertedUpgrade)
		assert.False(t, result.Deleted)
		assert.Equal(t, started.Entry.CreditsCost, result.RefundedCredits)

		r, err := env.records.FindByCoordAndKey(ctx, env.coord, "metal_refineries")
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.True(t, r.IsActive)
		assert.Equal(t, 1, r.Level)
		assert.False(t, r.PendingUpgrade)
	})

	t.Run("research refunds its admission charge", func(t *testing.T) {
		env.activateRecord(t, catalog.KindStructure, "research_labs", 1)
		researchHandler := admission.NewStartResearchHandler(env.pipeline)

		before := env.credits(t)
		response, err := researchHandler.Handle(ctx, &admission.StartResearchCommand{
			EmpireID: env.empireID, Coord: env.coord, CatalogKey: "energy_tech",
		})
		require.NoError(t, err)
		started := response.(*admission.StartResult)
		assert.Equal(t, before-200, env.credits(t))

		result, err := cancel(started.Entry.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(200), result.RefundedCredits)
		assert.Equal(t, before, env.credits(t))
	})

	t.Run("repeated cancel is a zero-refund no-op", func(t *testing.T) {
		started, err := env.startStructure("solar_plants")
		require.NoError(t, err)

		first, err := cancel(started.Entry.ID)
		require.NoError(t, err)
		require.True(t, first.Deleted)

		second, err := cancel(started.Entry.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), second.RefundedCredits)
		assert.False(t, second.Deleted)
	})

	t.Run("foreign entries cannot be cancelled", func(t *testing.T) {
		started, err := env.startStructure("gas_plants")
		if err != nil {
			// gas_plants needs energy_tech 1
			env.setTechLevel(t, "energy_tech", 1)
			started, err = env.startStructure("gas_plants")
			require.NoError(t, err)
		}

		rival := empire.New(shared.MustNewEmpireID(2), "Rival", 0, env.clock.Now())
		require.NoError(t, env.empires.Save(ctx, rival))

		_, err = cancelHandler.Handle(ctx, &admission.CancelCommand{
			EmpireID: rival.ID, EntryID: started.Entry.ID,
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotOwner, shared.CodeOf(err))
	})
}

func TestCreditJournal(t *testing.T) {
	env := newTestEnv(t)
	env.activateRecord(t, catalog.KindStructure, "research_labs", 1)
	ctx := context.Background()

	researchHandler := admission.NewStartResearchHandler(env.pipeline)
	response, err := researchHandler.Handle(ctx, &admission.StartResearchCommand{
		EmpireID: env.empireID, Coord: env.coord, CatalogKey: "energy_tech",
	})
	require.NoError(t, err)
	started := response.(*admission.StartResult)

	env.clock.Advance(time.Minute)
	cancelHandler := admission.NewCancelHandler(env.pipeline)
	_, err = cancelHandler.Handle(ctx, &admission.CancelCommand{
		EmpireID: env.empireID, EntryID: started.Entry.ID,
	})
	require.NoError(t, err)

	rows, err := env.journal.ListByEmpire(ctx, env.empireID, ledger.DefaultQueryOptions())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	refund, charge := rows[0], rows[1]
	assert.Equal(t, ledger.TransactionTypeRefund, refund.Type)
	assert.Equal(t, int64(200), refund.Amount)
	assert.Equal(t, ledger.TransactionTypeResearch, charge.Type)
	assert.Equal(t, int64(-200), charge.Amount)
	assert.Equal(t, int64(10000), charge.BalanceBefore)
	assert.Equal(t, int64(9800), charge.BalanceAfter)
	assert.Equal(t, started.Entry.ID, charge.EntryID)

	// The journal surfaces through the read query too.
	logHandler := admission.NewTransactionLogHandler(env.pipeline)
	logResponse, err := logHandler.Handle(ctx, &admission.TransactionLogQuery{EmpireID: env.empireID})
	require.NoError(t, err)
	page := logResponse.(*admission.TransactionLog)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Transactions, 2)
	assert.Equal(t, "REFUND", page.Transactions[0].Type)
}

func TestBaseStatusQuery(t *testing.T) {
	env := newTestEnv(t)
	env.activateRecord(t, catalog.KindStructure, "solar_plants", 2)
	env.activateRecord(t, catalog.KindDefense, "missile_turrets", 1)

	_, err := env.startStructure("research_labs")
	require.NoError(t, err)

	h := admission.NewBaseStatusHandler(env.pipeline)
	response, err := h.Handle(context.Background(), &admission.BaseStatusQuery{
		EmpireID: env.empireID, Coord: env.coord,
	})
	require.NoError(t, err)
	status := response.(*admission.BaseStatus)

	assert.Equal(t, testCoordValue, status.Coord)
	assert.Equal(t, 2+2*2, status.Energy.Produced)
	assert.Equal(t, 40, status.AreaTotal)
	assert.Len(t, status.Structures, 2)
	assert.Len(t, status.Defenses, 1)
	require.Len(t, status.Queue, 1)
	assert.Equal(t, "research_labs", status.Queue[0].CatalogKey)
	assert.Equal(t, "queued", status.Queue[0].Status)
}

func TestEmpireOverviewQuery(t *testing.T) {
	env := newTestEnv(t)
	env.setTechLevel(t, "energy_tech", 2)

	h := admission.NewEmpireOverviewHandler(env.pipeline)
	response, err := h.Handle(context.Background(), &admission.EmpireOverviewQuery{
		EmpireID: env.empireID,
	})
	require.NoError(t, err)
	overview := response.(*admission.EmpireOverview)

	assert.Equal(t, 1, overview.ID)
	assert.Equal(t, int64(10000), overview.Credits)
	assert.Equal(t, 2, overview.TechLevels["energy_tech"])
	assert.Equal(t, []string{testCoordValue}, overview.Bases)
}
