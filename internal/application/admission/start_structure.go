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

// StartStructureCommand requests a first build or the next upgrade of a
// structure at a base. Queueing is free; credits are charged when the
// construction scheduler starts the head-of-line item.
type StartStructureCommand struct {
	EmpireID   shared.EmpireID
	Coord      shared.Coord
	CatalogKey string
}

// StartStructureHandler admits structure construction requests
type StartStructureHandler struct {
	*Pipeline
}

// NewStartStructureHandler creates the handler
func NewStartStructureHandler(p *Pipeline) *StartStructureHandler {
	return &StartStructureHandler{Pipeline: p}
}

// Handle runs the ordered admission checks and persists the queue entry
func (h *StartStructureHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartStructureCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	spec, err := resolveSpec(catalog.KindStructure, cmd.CatalogKey)
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
	if used := ledger.AreaUsed(allRecords); used+spec.AreaCost > b.Area {
		return nil, shared.NewCapacityError(shared.CodeInsufficientArea,
			fmt.Sprintf("base %s has no free area: %d/%d used", b.Coord, used, b.Area),
			spec.AreaCost, b.Area-used)
	}

	if err := h.admitEnergy(ctx, "StructureService", b, spec); err != nil {
		return nil, err
	}

	record := findRecord(allRecords, cmd.CatalogKey)
	targetLevel := 1
	if record != nil {
		targetLevel = record.Level + 1
	}
	cost := spec.CostAtLevel(targetLevel)

	entry := queue.New(catalog.KindStructure, cmd.EmpireID, cmd.Coord, cmd.CatalogKey)
	entry.TargetLevel = targetLevel
	entry.EnergyDelta = spec.EnergyDelta
	entry.CreditsCost = cost

	if err := h.insertGuarded(ctx, entry); err != nil {
		return nil, err
	}

	if record == nil {
		record = base.NewConstruction(cmd.Coord, catalog.KindStructure, cmd.CatalogKey, cost)
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

func findRecord(records []*base.Record, catalogKey string) *base.Record {
	for _, r := range records {
		if r.CatalogKey == catalogKey {
			return r
		}
	}
	return nil
}
