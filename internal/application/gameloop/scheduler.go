// Package gameloop drives queued work forward: the construction scheduler
// starts credit-gated head-of-line items, and the tick processor promotes
// completed items into empire/base state exactly once.
package gameloop

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/capacity"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/empire"
	"github.com/astrokernel/imperium/internal/domain/ledger"
	"github.com/astrokernel/imperium/internal/domain/queue"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// recordJournal appends one credit movement, best-effort. Called after the
// empire balance was already updated and saved.
func recordJournal(ctx context.Context, journal ledger.TransactionRepository, emp *empire.Empire, now time.Time, txType ledger.TransactionType, amount int64, description, entryID, catalogKey string) {
	if journal == nil || amount == 0 {
		return
	}
	tx, err := ledger.NewTransaction(emp.ID, now, txType, amount, emp.Credits-amount, description, entryID, catalogKey)
	if err != nil {
		log.Printf("[Journal] building transaction for empire %s: %v", emp.ID, err)
		return
	}
	if err := journal.Record(ctx, tx); err != nil {
		log.Printf("[Journal] recording transaction for empire %s: %v", emp.ID, err)
	}
}

// ConstructionScheduler starts queued construction items once the owning
// empire can pay. Only the head of each base's ordered queue is considered:
// a cheap item never jumps an expensive one. Credits are charged here, at
// start time, never at admission.
type ConstructionScheduler struct {
	empires empire.Repository
	records base.RecordRepository
	entries queue.Repository
	clock   shared.Clock

	// journal is optional; nil disables credit journaling
	journal ledger.TransactionRepository
}

// NewConstructionScheduler creates the scheduler
func NewConstructionScheduler(
	empires empire.Repository,
	records base.RecordRepository,
	entries queue.Repository,
	clock shared.Clock,
) *ConstructionScheduler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ConstructionScheduler{
		empires: empires,
		records: records,
		entries: entries,
		clock:   clock,
	}
}

// WithJournal enables credit journaling on the scheduler
func (s *ConstructionScheduler) WithJournal(journal ledger.TransactionRepository) *ConstructionScheduler {
	s.journal = journal
	return s
}

// RunOnce makes one scheduling pass over every base with queued construction.
// Items that cannot start yet stay queued for the next pass. Per-base errors
// are logged and skipped so one bad base cannot stall the rest.
func (s *ConstructionScheduler) RunOnce(ctx context.Context) (int, error) {
	coords, err := s.entries.ListCoordsWithQueued(ctx, catalog.KindStructure, catalog.KindDefense)
	if err != nil {
		return 0, fmt.Errorf("scheduler: listing queued bases: %w", err)
	}

	started := 0
	for _, coord := range coords {
		ok, err := s.scheduleHead(ctx, coord)
		if err != nil {
			log.Printf("[Scheduler] base %s: %v", coord, err)
			continue
		}
		if ok {
			started++
		}
	}
	return started, nil
}

// scheduleHead inspects only the head-of-line item at one base
func (s *ConstructionScheduler) scheduleHead(ctx context.Context, coord shared.Coord) (bool, error) {
	queued, err := s.entries.ListQueuedByCoord(ctx, coord, catalog.KindStructure, catalog.KindDefense)
	if err != nil {
		return false, err
	}
	if len(queued) == 0 {
		return false, nil
	}
	head := queued[0]

	emp, err := s.empires.FindByID(ctx, head.EmpireID)
	if err != nil {
		return false, err
	}
	if !emp.CanAfford(head.CreditsCost) {
		return false, nil
	}

	activeRecords, err := s.records.ListActiveByCoord(ctx, coord)
	if err != nil {
		return false, err
	}
	rate := capacity.Compute(activeRecords, emp.TechLevels).ConstructionPerHour
	eta := capacity.ETAMinutes(head.CreditsCost, rate)

	now := s.clock.Now()
	head.Start(now, eta)

	// Win the queued->active transition before touching credits. An
	// overlapping pass that read the same queued head loses here and
	// must not charge the empire a second time.
	won, err := s.entries.StartEntry(ctx, head.ID, *head.StartedAt, *head.CompletesAt)
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}

	if err := emp.DeductCredits(head.CreditsCost); err != nil {
		return false, err
	}
	if err := s.empires.Save(ctx, emp); err != nil {
		return false, err
	}
	recordJournal(ctx, s.journal, emp, now, ledger.TransactionTypeConstruction, -head.CreditsCost,
		fmt.Sprintf("start %s %s at %s", head.Type, head.CatalogKey, coord), head.ID, head.CatalogKey)

	record, err := s.records.FindByCoordAndKey(ctx, coord, head.CatalogKey)
	if err != nil {
		return false, err
	}
	if record != nil {
		record.StampSchedule(now, now.Add(time.Duration(eta)*time.Minute))
		if err := s.records.Save(ctx, record); err != nil {
			return false, err
		}
	}

	log.Printf("[Scheduler] started %s %s at %s: cost=%d rate=%d eta=%dm",
		head.Type, head.CatalogKey, coord, head.CreditsCost, rate, eta)
	return true, nil
}
