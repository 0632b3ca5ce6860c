package admission

import (
	"context"
	"fmt"

	"github.com/astrokernel/imperium/internal/application/common"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/ledger"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// CancelCommand withdraws one queue entry. Started construction refunds its
// full in-flight cost; queued-but-unstarted construction refunds nothing
// (queueing is free). Tech/unit orders refund what they paid at admission.
// Cancelling an already-terminal entry is a no-op with a zero refund.
type CancelCommand struct {
	EmpireID shared.EmpireID
	EntryID  string
}

// CancelHandler handles queue-entry cancellation for all four queue types
type CancelHandler struct {
	*Pipeline
}

// NewCancelHandler creates the handler
func NewCancelHandler(p *Pipeline) *CancelHandler {
	return &CancelHandler{Pipeline: p}
}

// Handle cancels the entry and reverts or deletes its record as needed
func (h *CancelHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CancelCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.EntryID == "" {
		return nil, shared.NewInvalidRequestError("entry id is required")
	}

	entry, err := h.entries.FindByID(ctx, cmd.EntryID)
	if err != nil {
		return nil, err
	}
	if !entry.EmpireID.Equals(cmd.EmpireID) {
		return nil, shared.NewNotOwnerError(entry.Coord)
	}

	result := &CancelResult{CancelledID: entry.ID}

	// The atomic transition is the refund guard: only the caller that flips
	// the entry to cancelled pays out, so repeated cancels refund zero.
	won, err := h.entries.CancelEntry(ctx, entry.ID, h.clock.Now())
	if err != nil {
		return nil, err
	}
	if !won {
		return result, nil
	}

	var refund int64
	switch entry.Type {
	case catalog.KindStructure, catalog.KindDefense:
		if entry.IsStarted() {
			refund = entry.CreditsCost
		}
		record, err := h.records.FindByCoordAndKey(ctx, entry.Coord, entry.CatalogKey)
		if err != nil {
			return nil, err
		}
		if record != nil {
			if entry.TargetLevel <= 1 {
				// Never-activated first build: the record disappears.
				if err := h.records.Delete(ctx, entry.Coord, entry.CatalogKey); err != nil {
					return nil, err
				}
				result.Deleted = true
			} else {
				record.RevertUpgrade()
				if err := h.records.Save(ctx, record); err != nil {
					return nil, err
				}
				result.RevertedUpgrade = true
			}
		}
	case catalog.KindTech, catalog.KindUnit:
		refund = entry.CreditsCost
	}

	if refund > 0 {
		emp, err := h.empires.FindByID(ctx, cmd.EmpireID)
		if err != nil {
			return nil, err
		}
		emp.AddCredits(refund)
		if err := h.empires.Save(ctx, emp); err != nil {
			return nil, err
		}
		result.RefundedCredits = refund
		h.recordTransaction(ctx, emp, ledger.TransactionTypeRefund, refund,
			fmt.Sprintf("cancel %s %s", entry.Type, entry.CatalogKey), entry.ID, entry.CatalogKey)
	}

	return result, nil
}
