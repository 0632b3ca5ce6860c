// Package gating implements the energy feasibility gate deciding whether a
// new consumer may join a base's queues.
package gating

import (
	"log"

	"github.com/astrokernel/imperium/internal/domain/ledger"
	"github.com/astrokernel/imperium/internal/domain/queue"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// Result is the full projection breakdown for one admission candidate
type Result struct {
	Admitted        bool
	Produced        int
	Consumed        int
	Balance         int
	Reserved        int
	Delta           int
	ProjectedEnergy int
}

// Err returns the typed gate failure, nil when admitted
func (r Result) Err() error {
	if r.Admitted {
		return nil
	}
	return shared.NewInsufficientEnergyError(
		r.Produced, r.Consumed, r.Balance, r.Reserved, r.Delta, r.ProjectedEnergy)
}

// Evaluate projects the base's post-admission energy and decides admission.
//
// The reservation accumulator sums deltas of queued-but-not-yet-active
// entries ONLY - started items already show up in the active balance, and
// terminal items are gone. Callers must pass entries created strictly
// earlier than the candidate (lower Seq): a producer queued after the
// candidate must never justify it, and no producer may be counted into more
// than one later candidate's projection. Producers themselves are always
// admitted; their delta only improves later projections.
func Evaluate(service, catalogKey string, report ledger.EnergyReport, earlier []*queue.Entry, delta int) Result {
	reserved := 0
	for _, e := range earlier {
		if e.Status == queue.StatusQueued {
			reserved += e.EnergyDelta
		}
	}

	result := Result{
		Produced:        report.Produced,
		Consumed:        report.Consumed,
		Balance:         report.Balance,
		Reserved:        reserved,
		Delta:           delta,
		ProjectedEnergy: report.Balance + reserved + delta,
	}
	result.Admitted = delta >= 0 || result.ProjectedEnergy >= 0

	log.Printf("[%s.start] key=%s delta=%d produced=%d consumed=%d balance=%d reserved=%d projectedEnergy=%d",
		service, catalogKey, result.Delta, result.Produced, result.Consumed,
		result.Balance, result.Reserved, result.ProjectedEnergy)

	return result
}
