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

// StartResearchCommand requests the next level of an empire tech, researched
// at a base with laboratories. Research starts immediately: credits are
// charged at admission and the entry enters the active state with its
// completion deadline stamped.
type StartResearchCommand struct {
	EmpireID   shared.EmpireID
	Coord      shared.Coord
	CatalogKey string
}

// StartResearchHandler admits research requests
type StartResearchHandler struct {
	*Pipeline
}

// NewStartResearchHandler creates the handler
func NewStartResearchHandler(p *Pipeline) *StartResearchHandler {
	return &StartResearchHandler{Pipeline: p}
}

// Handle runs the ordered admission checks and persists the queue entry
func (h *StartResearchHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartResearchCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	spec, err := resolveSpec(catalog.KindTech, cmd.CatalogKey)
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

	activeRecords, err := h.records.ListActiveByCoord(ctx, cmd.Coord)
	if err != nil {
		return nil, err
	}
	rate := capacity.Compute(activeRecords, emp.TechLevels).ResearchPerHour
	if rate <= 0 {
		return nil, shared.NewCapacityError(shared.CodeNoCapacity,
			fmt.Sprintf("base %s has no research capacity (build research_labs first)", b.Coord), 1, 0)
	}

	if err := h.admitEnergy(ctx, "ResearchService", b, spec); err != nil {
		return nil, err
	}

	targetLevel := emp.TechLevel(cmd.CatalogKey) + 1
	cost := spec.CostAtLevel(targetLevel)
	if !emp.CanAfford(cost) {
		return nil, shared.NewInsufficientFundsError(cost, emp.Credits)
	}

	eta := capacity.ETAMinutes(cost, rate)

	entry := queue.New(catalog.KindTech, cmd.EmpireID, cmd.Coord, cmd.CatalogKey)
	entry.TargetLevel = targetLevel
	entry.EnergyDelta = spec.EnergyDelta
	entry.CreditsCost = cost
	entry.Start(h.clock.Now(), eta)

	if err := h.insertGuarded(ctx, entry); err != nil {
		return nil, err
	}

	if err := emp.DeductCredits(cost); err != nil {
		// Lost the balance race after insert: withdraw the entry instead of
		// leaving an unpayable active item behind.
		_, _ = h.entries.CancelEntry(ctx, entry.ID, h.clock.Now())
		return nil, err
	}
	if err := h.empires.Save(ctx, emp); err != nil {
		return nil, err
	}
	h.recordTransaction(ctx, emp, ledger.TransactionTypeResearch, -cost,
		fmt.Sprintf("research %s to level %d", cmd.CatalogKey, targetLevel), entry.ID, cmd.CatalogKey)

	return &StartResult{
		Entry:           entry,
		EtaMinutes:      eta,
		CapacityPerHour: rate,
	}, nil
}
