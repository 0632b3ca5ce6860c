// Package admission implements the queue admission pipeline: ordered
// validation of start requests, the energy feasibility gate, the identity
// guard, and queue-entry persistence. All checks fail closed; the first
// failing stage short-circuits before any write.
package admission

import (
	"context"
	"errors"
	"log"
	"sort"

	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/empire"
	"github.com/astrokernel/imperium/internal/domain/ledger"
	"github.com/astrokernel/imperium/internal/domain/queue"
	"github.com/astrokernel/imperium/internal/domain/shared"

	"github.com/astrokernel/imperium/internal/application/gating"
)

// Pipeline bundles the collaborators every admission command needs. Handlers
// embed it; no state is kept between requests, every read goes to storage.
type Pipeline struct {
	empires empire.Repository
	bases   base.Repository
	records base.RecordRepository
	entries queue.Repository
	clock   shared.Clock

	// journal is optional; nil disables credit journaling
	journal ledger.TransactionRepository
}

// NewPipeline creates the shared admission pipeline
func NewPipeline(
	empires empire.Repository,
	bases base.Repository,
	records base.RecordRepository,
	entries queue.Repository,
	clock shared.Clock,
) *Pipeline {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Pipeline{
		empires: empires,
		bases:   bases,
		records: records,
		entries: entries,
		clock:   clock,
	}
}

// WithJournal enables credit journaling on the pipeline
func (p *Pipeline) WithJournal(journal ledger.TransactionRepository) *Pipeline {
	p.journal = journal
	return p
}

// recordTransaction appends a journal row. Journaling is best-effort: a
// failed write is logged by the repository caller and never fails the
// command that caused the movement.
func (p *Pipeline) recordTransaction(ctx context.Context, emp *empire.Empire, txType ledger.TransactionType, amount int64, description, entryID, catalogKey string) {
	if p.journal == nil || amount == 0 {
		return
	}
	tx, err := ledger.NewTransaction(
		emp.ID, p.clock.Now(), txType, amount, emp.Credits-amount, description, entryID, catalogKey)
	if err != nil {
		log.Printf("[Journal] building transaction for empire %s: %v", emp.ID, err)
		return
	}
	if err := p.journal.Record(ctx, tx); err != nil {
		log.Printf("[Journal] recording transaction for empire %s: %v", emp.ID, err)
	}
}

// loadOwnedBase resolves the base and verifies ownership
func (p *Pipeline) loadOwnedBase(ctx context.Context, empireID shared.EmpireID, coord shared.Coord) (*base.Base, error) {
	b, err := p.bases.FindByCoord(ctx, coord)
	if err != nil {
		return nil, err
	}
	if !b.IsOwnedBy(empireID) {
		return nil, shared.NewNotOwnerError(coord)
	}
	return b, nil
}

// checkTechPrereqs collects every unmet prerequisite so the caller sees the
// full list, not just the first failure
func checkTechPrereqs(emp *empire.Empire, spec catalog.Spec) error {
	if len(spec.TechPrereqs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(spec.TechPrereqs))
	for key := range spec.TechPrereqs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var unmet []shared.UnmetPrereq
	for _, key := range keys {
		required := spec.TechPrereqs[key]
		if current := emp.TechLevel(key); current < required {
			unmet = append(unmet, shared.UnmetPrereq{TechKey: key, Required: required, Current: current})
		}
	}
	if len(unmet) > 0 {
		return shared.NewTechRequirementsError(unmet)
	}
	return nil
}

// admitEnergy runs the gate over the base's current snapshot and every
// already-live entry. All live entries were created before the candidate, so
// the strict earlier-than-candidate ordering holds by construction here.
func (p *Pipeline) admitEnergy(ctx context.Context, service string, b *base.Base, spec catalog.Spec) error {
	activeRecords, err := p.records.ListActiveByCoord(ctx, b.Coord)
	if err != nil {
		return err
	}
	liveEntries, err := p.entries.ListLiveByCoord(ctx, b.Coord)
	if err != nil {
		return err
	}
	report := ledger.Energy(b, activeRecords)
	return gating.Evaluate(service, spec.Key, report, liveEntries, spec.EnergyDelta).Err()
}

// insertGuarded runs the identity guard: pre-check, then insert with the
// storage uniqueness constraint as the race backstop. A lost race is remapped
// to the same ALREADY_IN_PROGRESS result the pre-check produces, carrying a
// consistent snapshot of the winning entry.
func (p *Pipeline) insertGuarded(ctx context.Context, e *queue.Entry) error {
	now := p.clock.Now()

	existing, err := p.entries.FindLiveByIdentityKey(ctx, e.IdentityKey)
	if err != nil {
		return err
	}
	if existing != nil {
		return shared.NewAlreadyInProgressError(
			string(e.Type), e.IdentityKey, e.CatalogKey, existing.Snapshot(now))
	}

	if err := p.entries.Insert(ctx, e); err != nil {
		if errors.Is(err, queue.ErrDuplicateIdentity) {
			winner, findErr := p.entries.FindLiveByIdentityKey(ctx, e.IdentityKey)
			snapshot := shared.ExistingEntrySnapshot{CatalogKey: e.CatalogKey}
			if findErr == nil && winner != nil {
				snapshot = winner.Snapshot(now)
			}
			return shared.NewAlreadyInProgressError(
				string(e.Type), e.IdentityKey, e.CatalogKey, snapshot)
		}
		return err
	}
	return nil
}

// resolveSpec maps an empty or unknown catalog key to INVALID_REQUEST
func resolveSpec(kind catalog.Kind, key string) (catalog.Spec, error) {
	if key == "" {
		return catalog.Spec{}, shared.NewInvalidRequestError("catalogKey is required")
	}
	spec, err := catalog.Resolve(kind, key)
	if err != nil {
		return catalog.Spec{}, shared.NewInvalidRequestError(err.Error())
	}
	return spec, nil
}
