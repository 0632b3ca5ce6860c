package gameloop

import (
	"context"
	"fmt"
	"log"

	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/capacity"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/empire"
	"github.com/astrokernel/imperium/internal/domain/ledger"
	"github.com/astrokernel/imperium/internal/domain/queue"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// tickKinds is the scan order of one tick
var tickKinds = []catalog.Kind{
	catalog.KindTech,
	catalog.KindUnit,
	catalog.KindStructure,
	catalog.KindDefense,
}

// TickSummary counts per-queue outcomes of one tick. Observability only;
// correctness never depends on these numbers.
type TickSummary struct {
	Completed  map[catalog.Kind]int
	Cancelled  map[catalog.Kind]int
	Errored    map[catalog.Kind]int
	IncomePaid int64
}

func newTickSummary() *TickSummary {
	return &TickSummary{
		Completed: make(map[catalog.Kind]int),
		Cancelled: make(map[catalog.Kind]int),
		Errored:   make(map[catalog.Kind]int),
	}
}

// Metrics receives tick outcomes; the prometheus adapter implements it
type Metrics interface {
	RecordTickOutcome(queueType, outcome string)
	RecordTickDuration(seconds float64)
}

// NopMetrics discards all recordings
type NopMetrics struct{}

func (NopMetrics) RecordTickOutcome(string, string) {}
func (NopMetrics) RecordTickDuration(float64)       {}

// TickProcessor advances all four queues. Each tick is independent and
// tolerates overlap with another tick or a crashed-and-retried run: every
// promotion is a max/idempotent write or is guarded by the atomic entry
// completion, so re-observing a due item never double-applies its effect.
type TickProcessor struct {
	empires empire.Repository
	bases   base.Repository
	records base.RecordRepository
	entries queue.Repository
	clock   shared.Clock
	metrics Metrics

	// journal is optional; nil disables credit journaling
	journal ledger.TransactionRepository
}

// NewTickProcessor creates the processor
func NewTickProcessor(
	empires empire.Repository,
	bases base.Repository,
	records base.RecordRepository,
	entries queue.Repository,
	clock shared.Clock,
	metrics Metrics,
) *TickProcessor {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &TickProcessor{
		empires: empires,
		bases:   bases,
		records: records,
		entries: entries,
		clock:   clock,
		metrics: metrics,
	}
}

// WithJournal enables credit journaling on the tick processor
func (t *TickProcessor) WithJournal(journal ledger.TransactionRepository) *TickProcessor {
	t.journal = journal
	return t
}

// ProcessTick scans every queue type for due items and promotes them.
// Per-item errors are counted, logged and skipped - one malformed entry
// never halts the remaining scan.
func (t *TickProcessor) ProcessTick(ctx context.Context) *TickSummary {
	start := t.clock.Now()
	summary := newTickSummary()

	for _, kind := range tickKinds {
		due, err := t.entries.ListDue(ctx, kind, t.clock.Now())
		if err != nil {
			log.Printf("[GameLoop] scanning %s queue: %v", kind, err)
			summary.Errored[kind]++
			t.metrics.RecordTickOutcome(string(kind), "errored")
			continue
		}
		for _, e := range due {
			outcome, err := t.promote(ctx, e)
			if err != nil {
				log.Printf("[GameLoop] promoting %s entry %s (%s): %v", kind, e.ID, e.CatalogKey, err)
				summary.Errored[kind]++
				t.metrics.RecordTickOutcome(string(kind), "errored")
				continue
			}
			switch outcome {
			case outcomeCompleted:
				summary.Completed[kind]++
				t.metrics.RecordTickOutcome(string(kind), "completed")
			case outcomeCancelled:
				summary.Cancelled[kind]++
				t.metrics.RecordTickOutcome(string(kind), "cancelled")
			}
		}
	}

	paid, err := t.accrueIncome(ctx)
	if err != nil {
		log.Printf("[GameLoop] economy accrual: %v", err)
	}
	summary.IncomePaid = paid

	elapsed := t.clock.Now().Sub(start)
	t.metrics.RecordTickDuration(elapsed.Seconds())
	return summary
}

type promoteOutcome int

const (
	outcomeSkipped promoteOutcome = iota
	outcomeCompleted
	outcomeCancelled
)

// promote applies one due entry's effect and marks it terminal
func (t *TickProcessor) promote(ctx context.Context, e *queue.Entry) (promoteOutcome, error) {
	switch e.Type {
	case catalog.KindTech:
		return t.promoteTech(ctx, e)
	case catalog.KindUnit:
		return t.promoteUnits(ctx, e)
	case catalog.KindStructure, catalog.KindDefense:
		return t.promoteRecord(ctx, e)
	}
	return outcomeSkipped, fmt.Errorf("unknown queue type %q", e.Type)
}

// promoteTech bumps the empire tech level with max semantics, then marks the
// entry completed. A duplicate observation re-applies the same max and is a
// no-op.
func (t *TickProcessor) promoteTech(ctx context.Context, e *queue.Entry) (promoteOutcome, error) {
	emp, err := t.empires.FindByID(ctx, e.EmpireID)
	if err != nil {
		if _, gone := err.(*shared.NotFoundError); gone {
			return t.cancelOrphan(ctx, e)
		}
		return outcomeSkipped, err
	}

	if emp.PromoteTechTo(e.CatalogKey, e.TargetLevel) {
		if err := t.empires.Save(ctx, emp); err != nil {
			return outcomeSkipped, err
		}
	}

	won, err := t.entries.CompleteEntry(ctx, e.ID, t.clock.Now())
	if err != nil {
		return outcomeSkipped, err
	}
	if !won {
		return outcomeSkipped, nil
	}
	return outcomeCompleted, nil
}

// promoteUnits adds trained units to the roster. Counts are not max-writable,
// so the atomic entry completion is the guard: only the winner applies the
// count.
func (t *TickProcessor) promoteUnits(ctx context.Context, e *queue.Entry) (promoteOutcome, error) {
	emp, err := t.empires.FindByID(ctx, e.EmpireID)
	if err != nil {
		if _, gone := err.(*shared.NotFoundError); gone {
			return t.cancelOrphan(ctx, e)
		}
		return outcomeSkipped, err
	}

	won, err := t.entries.CompleteEntry(ctx, e.ID, t.clock.Now())
	if err != nil {
		return outcomeSkipped, err
	}
	if !won {
		return outcomeSkipped, nil
	}

	emp.AddUnits(e.CatalogKey, e.Quantity)
	if err := t.empires.Save(ctx, emp); err != nil {
		return outcomeSkipped, err
	}
	return outcomeCompleted, nil
}

// promoteRecord activates a finished structure/defense at its target level
// (max semantics), then marks the entry completed
func (t *TickProcessor) promoteRecord(ctx context.Context, e *queue.Entry) (promoteOutcome, error) {
	record, err := t.records.FindByCoordAndKey(ctx, e.Coord, e.CatalogKey)
	if err != nil {
		return outcomeSkipped, err
	}
	if record == nil {
		// Record deleted under the entry (base lost, cancelled race).
		return t.cancelOrphan(ctx, e)
	}

	if record.Activate(e.TargetLevel) {
		if err := t.records.Save(ctx, record); err != nil {
			return outcomeSkipped, err
		}
	}

	won, err := t.entries.CompleteEntry(ctx, e.ID, t.clock.Now())
	if err != nil {
		return outcomeSkipped, err
	}
	if !won {
		return outcomeSkipped, nil
	}
	return outcomeCompleted, nil
}

// cancelOrphan cancels a due entry whose owner vanished. Re-observing the
// same orphan later finds it terminal and does nothing.
func (t *TickProcessor) cancelOrphan(ctx context.Context, e *queue.Entry) (promoteOutcome, error) {
	won, err := t.entries.CancelEntry(ctx, e.ID, t.clock.Now())
	if err != nil {
		return outcomeSkipped, err
	}
	if !won {
		return outcomeSkipped, nil
	}
	log.Printf("[GameLoop] cancelled orphaned %s entry %s (%s)", e.Type, e.ID, e.CatalogKey)
	return outcomeCancelled, nil
}

// accrueIncome pays every empire its economy income for the elapsed interval
func (t *TickProcessor) accrueIncome(ctx context.Context) (int64, error) {
	empires, err := t.empires.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	now := t.clock.Now()
	for _, emp := range empires {
		bases, err := t.bases.ListByEmpire(ctx, emp.ID)
		if err != nil {
			log.Printf("[GameLoop] listing bases for empire %s: %v", emp.ID, err)
			continue
		}
		rate := 0
		for _, b := range bases {
			activeRecords, err := t.records.ListActiveByCoord(ctx, b.Coord)
			if err != nil {
				log.Printf("[GameLoop] records at %s: %v", b.Coord, err)
				continue
			}
			rate += capacity.Compute(activeRecords, emp.TechLevels).EconomyPerHour
		}
		if earned := emp.AccrueIncome(rate, now); earned > 0 {
			if err := t.empires.Save(ctx, emp); err != nil {
				log.Printf("[GameLoop] saving income for empire %s: %v", emp.ID, err)
				continue
			}
			recordJournal(ctx, t.journal, emp, now, ledger.TransactionTypeIncome, earned,
				fmt.Sprintf("economy income at %d/h", rate), "", "")
			total += earned
		}
	}
	return total, nil
}
