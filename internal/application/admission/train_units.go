package admission

import (
	"context"
	"fmt"

	"github.com/astrokernel/imperium/internal/application/common"
	"github.com/astrokernel/imperium/internal/domain/capacity"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/ledger"
	"github.com/astrokernel/imperium/internal/domain/queue"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// maxTrainingBatch bounds one training order; larger fleets queue again
const maxTrainingBatch = 10000

// TrainUnitsCommand requests a unit training order at a base with a
// sufficient shipyard. Training starts immediately: credits are charged at
// admission and the order completes after a production-rate-derived duration.
type TrainUnitsCommand struct {
	EmpireID   shared.EmpireID
	Coord      shared.Coord
	CatalogKey string
	Quantity   int
}

// TrainUnitsHandler admits unit training requests
type TrainUnitsHandler struct {
	*Pipeline
}

// NewTrainUnitsHandler creates the handler
func NewTrainUnitsHandler(p *Pipeline) *TrainUnitsHandler {
	return &TrainUnitsHandler{Pipeline: p}
}

// Handle runs the ordered admission checks and persists the queue entry
func (h *TrainUnitsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*TrainUnitsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	spec, err := resolveSpec(catalog.KindUnit, cmd.CatalogKey)
	if err != nil {
		return nil, err
	}
	if cmd.Quantity < 1 || cmd.Quantity > maxTrainingBatch {
		return nil, shared.NewInvalidRequestError(
			fmt.Sprintf("quantity must be between 1 and %d", maxTrainingBatch))
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

	shipyard := findRecord(allRecords, "shipyards")
	shipyardLevel := 0
	if shipyard != nil && shipyard.IsActive {
		shipyardLevel = shipyard.Level
	}
	if shipyardLevel < spec.RequiredShipyardLevel {
		return nil, shared.NewCapacityError(shared.CodeShipyardRequired,
			fmt.Sprintf("%s requires shipyards level %d (have %d)",
				cmd.CatalogKey, spec.RequiredShipyardLevel, shipyardLevel),
			spec.RequiredShipyardLevel, shipyardLevel)
	}

	if spec.PopulationCost > 0 {
		liveEntries, err := h.entries.ListLiveByCoord(ctx, cmd.Coord)
		if err != nil {
			return nil, err
		}
		used := ledger.PopulationUsed(allRecords, liveEntries)
		housing := ledger.PopulationCapacity(b, allRecords)
		need := spec.PopulationCost * cmd.Quantity
		if used+need > housing {
			return nil, shared.NewCapacityError(shared.CodeInsufficientPopulation,
				fmt.Sprintf("base %s has no free population: %d/%d used", b.Coord, used, housing),
				need, housing-used)
		}
	}

	activeRecords, err := h.records.ListActiveByCoord(ctx, cmd.Coord)
	if err != nil {
		return nil, err
	}
	rate := capacity.Compute(activeRecords, emp.TechLevels).ProductionPerHour
	if rate <= 0 {
		return nil, shared.NewCapacityError(shared.CodeNoCapacity,
			fmt.Sprintf("base %s has no production capacity", b.Coord), 1, 0)
	}

	if err := h.admitEnergy(ctx, "UnitService", b, spec); err != nil {
		return nil, err
	}

	cost := spec.CostForQuantity(cmd.Quantity)
	if !emp.CanAfford(cost) {
		return nil, shared.NewInsufficientFundsError(cost, emp.Credits)
	}

	eta := capacity.ETAMinutes(cost, rate)

	entry := queue.New(catalog.KindUnit, cmd.EmpireID, cmd.Coord, cmd.CatalogKey)
	entry.Quantity = cmd.Quantity
	entry.EnergyDelta = spec.EnergyDelta
	entry.CreditsCost = cost
	entry.Start(h.clock.Now(), eta)

	if err := h.insertGuarded(ctx, entry); err != nil {
		return nil, err
	}

	if err := emp.DeductCredits(cost); err != nil {
		_, _ = h.entries.CancelEntry(ctx, entry.ID, h.clock.Now())
		return nil, err
	}
	if err := h.empires.Save(ctx, emp); err != nil {
		return nil, err
	}
	h.recordTransaction(ctx, emp, ledger.TransactionTypeUnitTraining, -cost,
		fmt.Sprintf("train %d %s", cmd.Quantity, cmd.CatalogKey), entry.ID, cmd.CatalogKey)

	return &StartResult{
		Entry:           entry,
		EtaMinutes:      eta,
		CapacityPerHour: rate,
	}, nil
}
