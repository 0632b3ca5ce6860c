package admission

import (
	"context"
	"fmt"

	"github.com/astrokernel/imperium/internal/application/common"
	"github.com/astrokernel/imperium/internal/domain/capacity"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/ledger"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// BaseStatusQuery reads one base's derived snapshots and live queues
type BaseStatusQuery struct {
	EmpireID shared.EmpireID
	Coord    shared.Coord
}

// BaseStatusHandler serves the read-only base status endpoint
type BaseStatusHandler struct {
	*Pipeline
}

// NewBaseStatusHandler creates the handler
func NewBaseStatusHandler(p *Pipeline) *BaseStatusHandler {
	return &BaseStatusHandler{Pipeline: p}
}

// Handle recomputes the ledger and capacities fresh and lists live entries
func (h *BaseStatusHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*BaseStatusQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	b, err := h.loadOwnedBase(ctx, q.EmpireID, q.Coord)
	if err != nil {
		return nil, err
	}
	emp, err := h.empires.FindByID(ctx, q.EmpireID)
	if err != nil {
		return nil, err
	}

	allRecords, err := h.records.ListByCoord(ctx, q.Coord)
	if err != nil {
		return nil, err
	}
	activeRecords, err := h.records.ListActiveByCoord(ctx, q.Coord)
	if err != nil {
		return nil, err
	}
	liveEntries, err := h.entries.ListLiveByCoord(ctx, q.Coord)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	status := &BaseStatus{
		Coord:              b.Coord.Value(),
		Name:               b.Name,
		Energy:             ledger.Energy(b, activeRecords),
		Capacities:         capacity.Compute(activeRecords, emp.TechLevels),
		AreaUsed:           ledger.AreaUsed(allRecords),
		AreaTotal:          b.Area,
		PopulationUsed:     ledger.PopulationUsed(allRecords, liveEntries),
		PopulationCapacity: ledger.PopulationCapacity(b, allRecords),
	}

	for _, r := range allRecords {
		rs := RecordStatus{
			CatalogKey:     r.CatalogKey,
			Level:          r.Level,
			IsActive:       r.IsActive,
			PendingUpgrade: r.PendingUpgrade,
			CreditsCost:    r.CreditsCost,
		}
		if r.Kind == catalog.KindDefense {
			status.Defenses = append(status.Defenses, rs)
		} else {
			status.Structures = append(status.Structures, rs)
		}
	}

	for _, e := range liveEntries {
		status.Queue = append(status.Queue, EntryStatus{
			ID:          e.ID,
			Type:        string(e.Type),
			CatalogKey:  e.CatalogKey,
			Quantity:    e.Quantity,
			TargetLevel: e.TargetLevel,
			Status:      string(e.Status),
			CreditsCost: e.CreditsCost,
			EtaSeconds:  e.RemainingSeconds(now),
		})
	}

	return status, nil
}

// EmpireOverviewQuery reads one empire's credits, techs, roster and bases
type EmpireOverviewQuery struct {
	EmpireID shared.EmpireID
}

// EmpireOverviewHandler serves the read-only empire endpoint
type EmpireOverviewHandler struct {
	*Pipeline
}

// NewEmpireOverviewHandler creates the handler
func NewEmpireOverviewHandler(p *Pipeline) *EmpireOverviewHandler {
	return &EmpireOverviewHandler{Pipeline: p}
}

// Handle loads the empire and its base list
func (h *EmpireOverviewHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*EmpireOverviewQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	emp, err := h.empires.FindByID(ctx, q.EmpireID)
	if err != nil {
		return nil, err
	}
	bases, err := h.bases.ListByEmpire(ctx, q.EmpireID)
	if err != nil {
		return nil, err
	}

	overview := &EmpireOverview{
		ID:         emp.ID.Value(),
		Name:       emp.Name,
		Credits:    emp.Credits,
		TechLevels: emp.TechLevels,
		UnitCounts: emp.UnitCounts,
	}
	for _, b := range bases {
		overview.Bases = append(overview.Bases, b.Coord.Value())
	}
	return overview, nil
}

// CatalogQuery lists the buildable catalog of one queue kind
type CatalogQuery struct {
	Kind string
}

// CatalogHandler serves the static catalog listing. It reads no state; the
// catalog is immutable game data.
type CatalogHandler struct{}

// NewCatalogHandler creates the handler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Handle lists every spec of the requested kind in key order
func (h *CatalogHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*CatalogQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	kind := catalog.Kind(q.Kind)
	keys := catalog.Keys(kind)
	if keys == nil {
		return nil, shared.NewInvalidRequestError("unknown catalog kind: " + q.Kind)
	}

	list := &CatalogList{Kind: q.Kind, Items: []CatalogItemView{}}
	for _, key := range keys {
		spec, err := catalog.Resolve(kind, key)
		if err != nil {
			continue
		}
		list.Items = append(list.Items, CatalogItemView{
			Key:                   spec.Key,
			Credits:               spec.BaseCredits,
			EnergyDelta:           spec.EnergyDelta,
			AreaCost:              spec.AreaCost,
			PopulationCost:        spec.PopulationCost,
			TechPrereqs:           spec.TechPrereqs,
			RequiredShipyardLevel: spec.RequiredShipyardLevel,
		})
	}
	return list, nil
}

// TransactionLogQuery reads a page of an empire's credit journal
type TransactionLogQuery struct {
	EmpireID shared.EmpireID
	Category string
	Limit    int
	Offset   int
}

// TransactionLogHandler serves the read-only journal endpoint
type TransactionLogHandler struct {
	*Pipeline
}

// NewTransactionLogHandler creates the handler
func NewTransactionLogHandler(p *Pipeline) *TransactionLogHandler {
	return &TransactionLogHandler{Pipeline: p}
}

// Handle lists the empire's journal, newest first. With journaling disabled
// the log is empty, never an error.
func (h *TransactionLogHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*TransactionLogQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	result := &TransactionLog{Transactions: []TransactionView{}}
	if h.journal == nil {
		return result, nil
	}

	opts := ledger.DefaultQueryOptions()
	if q.Limit > 0 {
		opts.Limit = q.Limit
	}
	opts.Offset = q.Offset
	if q.Category != "" {
		switch c := ledger.Category(q.Category); c {
		case ledger.CategoryIncome, ledger.CategoryExpense:
			opts.Category = &c
		default:
			return nil, shared.NewInvalidRequestError("unknown category: " + q.Category)
		}
	}

	transactions, err := h.journal.ListByEmpire(ctx, q.EmpireID, opts)
	if err != nil {
		return nil, err
	}
	total, err := h.journal.CountByEmpire(ctx, q.EmpireID, opts)
	if err != nil {
		return nil, err
	}

	result.Total = total
	for _, tx := range transactions {
		result.Transactions = append(result.Transactions, TransactionView{
			ID:            tx.ID,
			Timestamp:     tx.Timestamp,
			Type:          string(tx.Type),
			Category:      string(tx.Category),
			Amount:        tx.Amount,
			BalanceBefore: tx.BalanceBefore,
			BalanceAfter:  tx.BalanceAfter,
			Description:   tx.Description,
			EntryID:       tx.EntryID,
			CatalogKey:    tx.CatalogKey,
		})
	}
	return result, nil
}
