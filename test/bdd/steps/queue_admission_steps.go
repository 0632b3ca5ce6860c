package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"gorm.io/gorm"

	"github.com/astrokernel/imperium/internal/adapters/persistence"
	"github.com/astrokernel/imperium/internal/application/admission"
	"github.com/astrokernel/imperium/internal/application/gameloop"
	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/empire"
	"github.com/astrokernel/imperium/internal/domain/shared"
	"github.com/astrokernel/imperium/internal/infrastructure/database"
)

type queueAdmissionContext struct {
	db      *gorm.DB
	empires *persistence.GormEmpireRepository
	bases   *persistence.GormBaseRepository
	records *persistence.GormRecordRepository
	entries *persistence.GormQueueRepository
	clock   *shared.MockClock

	structures *admission.StartStructureHandler
	scheduler  *gameloop.ConstructionScheduler
	ticker     *gameloop.TickProcessor

	lastResult *admission.StartResult
	lastErr    error
}

func (ctx *queueAdmissionContext) reset() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("failed to open test database: %w", err)
	}
	ctx.db = db

	ctx.empires = persistence.NewGormEmpireRepository(db)
	ctx.bases = persistence.NewGormBaseRepository(db)
	ctx.records = persistence.NewGormRecordRepository(db)
	ctx.entries = persistence.NewGormQueueRepository(db)
	ctx.clock = shared.NewMockClock(time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC))

	pipeline := admission.NewPipeline(ctx.empires, ctx.bases, ctx.records, ctx.entries, ctx.clock)
	ctx.structures = admission.NewStartStructureHandler(pipeline)
	ctx.scheduler = gameloop.NewConstructionScheduler(ctx.empires, ctx.records, ctx.entries, ctx.clock)
	ctx.ticker = gameloop.NewTickProcessor(ctx.empires, ctx.bases, ctx.records, ctx.entries, ctx.clock, nil)

	ctx.lastResult = nil
	ctx.lastErr = nil
	return nil
}

// Given steps

func (ctx *queueAdmissionContext) anEmpireWithIDAndCredits(id int, credits int64) error {
	emp := empire.New(shared.MustNewEmpireID(id), fmt.Sprintf("Empire %d", id), credits, ctx.clock.Now())
	return ctx.empires.Save(context.Background(), emp)
}

func (ctx *queueAdmissionContext) aBaseOwnedByEmpireWithSolarEnergy(coord string, empireID, solar int) error {
	c, err := shared.NewCoord(coord)
	if err != nil {
		return err
	}
	b := &base.Base{
		Coord:       c,
		Name:        "Homeworld",
		EmpireID:    shared.MustNewEmpireID(empireID),
		SolarEnergy: solar,
		Fertility:   5,
		Area:        40,
	}
	return ctx.bases.Save(context.Background(), b)
}

// When steps

func (ctx *queueAdmissionContext) empireQueuesAt(empireID int, catalogKey, coord string) error {
	c, err := shared.NewCoord(coord)
	if err != nil {
		return err
	}

	response, err := ctx.structures.Handle(context.Background(), &admission.StartStructureCommand{
		EmpireID:   shared.MustNewEmpireID(empireID),
		Coord:      c,
		CatalogKey: catalogKey,
	})
	ctx.lastErr = err
	if err == nil {
		ctx.lastResult = response.(*admission.StartResult)
	} else {
		ctx.lastResult = nil
	}
	return nil
}

func (ctx *queueAdmissionContext) theConstructionSchedulerRuns() error {
	_, err := ctx.scheduler.RunOnce(context.Background())
	return err
}

func (ctx *queueAdmissionContext) minutesPass(minutes int) error {
	ctx.clock.Advance(time.Duration(minutes) * time.Minute)
	return nil
}

func (ctx *queueAdmissionContext) theTickProcessorRuns() error {
	ctx.ticker.ProcessTick(context.Background())
	return nil
}

// Then steps

func (ctx *queueAdmissionContext) theOrderShouldBeAdmitted() error {
	if ctx.lastErr != nil {
		return fmt.Errorf("expected admission but got error: %v", ctx.lastErr)
	}
	if ctx.lastResult == nil {
		return fmt.Errorf("expected a start result but got none")
	}
	return nil
}

func (ctx *queueAdmissionContext) theOrderShouldBeRejectedWithCode(code string) error {
	if ctx.lastErr == nil {
		return fmt.Errorf("expected rejection with code %s but the order was admitted", code)
	}
	if got := string(shared.CodeOf(ctx.lastErr)); got != code {
		return fmt.Errorf("expected code %s but got %s (%v)", code, got, ctx.lastErr)
	}
	return nil
}

func (ctx *queueAdmissionContext) theBaseShouldHaveAnActiveAtLevel(coord, catalogKey string, level int) error {
	c, err := shared.NewCoord(coord)
	if err != nil {
		return err
	}
	r, err := ctx.records.FindByCoordAndKey(context.Background(), c, catalogKey)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("no record for %s at %s", catalogKey, coord)
	}
	if !r.IsActive {
		return fmt.Errorf("expected %s to be active but it is not", catalogKey)
	}
	if r.Level != level {
		return fmt.Errorf("expected %s at level %d but got %d", catalogKey, level, r.Level)
	}
	return nil
}

func (ctx *queueAdmissionContext) empireShouldHaveCredits(empireID int, credits int64) error {
	emp, err := ctx.empires.FindByID(context.Background(), shared.MustNewEmpireID(empireID))
	if err != nil {
		return err
	}
	if emp.Credits != credits {
		return fmt.Errorf("expected %d credits but got %d", credits, emp.Credits)
	}
	return nil
}

// InitializeQueueAdmissionScenario registers the queue admission step definitions
func InitializeQueueAdmissionScenario(sc *godog.ScenarioContext) {
	admissionCtx := &queueAdmissionContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		return ctx, admissionCtx.reset()
	})

	sc.Step(`^an empire with ID (\d+) and (\d+) credits$`, admissionCtx.anEmpireWithIDAndCredits)
	sc.Step(`^a base "([^"]*)" owned by empire (\d+) with solar energy (\d+)$`, admissionCtx.aBaseOwnedByEmpireWithSolarEnergy)
	sc.Step(`^empire (\d+) queues "([^"]*)" at "([^"]*)"$`, admissionCtx.empireQueuesAt)
	sc.Step(`^the construction scheduler runs$`, admissionCtx.theConstructionSchedulerRuns)
	sc.Step(`^(\d+) minutes pass$`, admissionCtx.minutesPass)
	sc.Step(`^the tick processor runs$`, admissionCtx.theTickProcessorRuns)
	sc.Step(`^the order should be admitted$`, admissionCtx.theOrderShouldBeAdmitted)
	sc.Step(`^the order should be rejected with code "([^"]*)"$`, admissionCtx.theOrderShouldBeRejectedWithCode)
	sc.Step(`^the base should have an active "([^"]*)" at level (\d+)$`, func(catalogKey string, level int) error {
		return admissionCtx.theBaseShouldHaveAnActiveAtLevel("A01:02:03:04", catalogKey, level)
	})
	sc.Step(`^empire (\d+) should have (\d+) credits$`, admissionCtx.empireShouldHaveCredits)
}
