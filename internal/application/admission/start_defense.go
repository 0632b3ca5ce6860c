package admission

import (
	"context"
	"fmt"

	"github.com/astrokernel/imperium/internal/application/common"
	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/capacity"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/ledger"
	"github.com/astrokernel/imperium/internal/domain/queue"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// StartDefenseCommand requests a first build or upgrade of a base defense.
// Defenses share the construction queue and its credit-gated scheduler, and
// additionally occupy base population.
type StartDefenseCommand struct {
	EmpireID   shared.EmpireID
	Coord      shared.Coord
	CatalogKey string
}

// StartDefenseHandler admits defense construction requests
type StartDefenseHandler struct {
	*Pipeline
}

// NewStartDefenseHandler creates the handler
func NewStartDefenseHandler(p *Pipeline) *StartDefenseHandler {
	return &StartDefenseHandler{Pipeline: p}
}

// Handle runs the ordered admission checks and persists the queue entry
func (h *StartDefenseHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartDefenseCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	spec, err := resolveSpec(catalog.KindDefense, cmd.CatalogKey)
	if err != nil {
		return nil, err
	}

	b, err := h.loadOwnedBase(ctx, cmd.EmpireID, cmd.Coord)
	if err != nil {
		return nil, err
	}

	emp, err := h.empires.FindByID(ctx, cmd.EmpireID)
	if err != nil {
		return nil, err
	}

	if err := checkTechPrereqs(emp, spec); err != nil {
		return nil, err
	}

	allRecords, err := h.records.ListByCoord(ctx, cmd.Coord)
	if err != nil {
		return nil, err
	}
	liveEntries, err := h.entries.ListLiveByCoord(ctx, cmd.Coord)
	if err != nil {
		return nil, err
	}

	if spec.AreaCost > 0 {
		if used := ledger.AreaUsed(allRecords); used+spec.AreaCost > b.Area {
			return nil, shared.NewCapacityError(shared.CodeInsufficientArea,
				fmt.Sprintf("base %s has no free area: %d/%d used", b.Coord, used, b.Area),
				spec.AreaCost, b.Area-used)
		}
	}
	if spec.PopulationCost > 0 {
		used := ledger.PopulationUsed(allRecords, liveEntries)
		housing := ledger.PopulationCapacity(b, allRecords)
		if used+spec.PopulationCost > housing {
			return nil, shared.NewCapacityError(shared.CodeInsufficientPopulation,
				fmt.Sprintf("base %s has no free population: %d/%d used", b.Coord, used, housing),
				spec.PopulationCost, housing-used)
		}
	}

	if err := h.admitEnergy(ctx, "DefenseService", b, spec); err != nil {
		return nil, err
	}

	record := findRecord(allRecords, cmd.CatalogKey)
	targetLevel := 1
	if record != nil {
		targetLevel = record.Level + 1
	}
	cost := spec.CostAtLevel(targetLevel)

	entry := queue.New(catalog.KindDefense, cmd.EmpireID, cmd.Coord, cmd.CatalogKey)
	entry.TargetLevel = targetLevel
	entry.EnergyDelta = spec.EnergyDelta
	entry.CreditsCost = cost

	if err := h.insertGuarded(ctx, entry); err != nil {
		return nil, err
	}

	if record == nil {
		record = base.NewConstruction(cmd.Coord, catalog.KindDefense, cmd.CatalogKey, cost)
	} else {
		record.BeginUpgrade(cost)
	}
	if err := h.records.Save(ctx, record); err != nil {
		return nil, err
	}

	activeRecords, err := h.records.ListActiveByCoord(ctx, cmd.Coord)
	if err != nil {
		return nil, err
	}
	rate := capacity.Compute(activeRecords, emp.TechLevels).ConstructionPerHour

	return &StartResult{
		Entry:           entry,
		EtaMinutes:      capacity.ETAMinutes(cost, rate),
		CapacityPerHour: rate,
	}, nil
}
