package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// Status is the lifecycle state of a queue entry
type Status string

const (
	StatusPending   Status = "pending"
	StatusQueued    Status = "queued"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether the status is final. Terminal entries are
// immutable and no longer hold the identity-key slot.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Entry is one in-flight queue item. It is the authoritative source for
// "is X already in progress" at its base.
type Entry struct {
	ID string

	// Seq is the storage-assigned creation order. The energy gate and the
	// head-of-line scheduler both depend on strict Seq ordering.
	Seq int64

	Type        catalog.Kind
	IdentityKey string
	EmpireID    shared.EmpireID
	Coord       shared.Coord
	CatalogKey  string

	// Quantity is the unit count for training orders, 1 otherwise.
	Quantity int

	// TargetLevel is the level reached on completion (structures, defenses,
	// techs). Zero for unit orders.
	TargetLevel int

	EnergyDelta int
	CreditsCost int64

	Status      Status
	StartedAt   *time.Time
	CompletesAt *time.Time
	CreatedAt   time.Time
}

// New creates a queued entry with a fresh ID. Seq is assigned by storage on
// insert.
func New(kind catalog.Kind, empireID shared.EmpireID, coord shared.Coord, catalogKey string) *Entry {
	return &Entry{
		ID:          uuid.NewString(),
		Type:        kind,
		IdentityKey: IdentityKey(empireID, coord, catalogKey),
		EmpireID:    empireID,
		Coord:       coord,
		CatalogKey:  catalogKey,
		Quantity:    1,
		Status:      StatusQueued,
	}
}

// IsTerminal reports whether the entry reached a final state
func (e *Entry) IsTerminal() bool {
	return e.Status.IsTerminal()
}

// IsStarted reports whether construction/training has begun (credits spent)
func (e *Entry) IsStarted() bool {
	return e.Status == StatusActive
}

// Start transitions the entry to active with its completion deadline
func (e *Entry) Start(now time.Time, etaMinutes int) {
	completes := now.Add(time.Duration(etaMinutes) * time.Minute)
	e.Status = StatusActive
	e.StartedAt = &now
	e.CompletesAt = &completes
}

// IsDue reports whether the entry should be promoted by the tick processor
func (e *Entry) IsDue(now time.Time) bool {
	return !e.IsTerminal() && e.CompletesAt != nil && !e.CompletesAt.After(now)
}

// RemainingSeconds returns seconds until completion, 0 when due or unstarted
func (e *Entry) RemainingSeconds(now time.Time) int64 {
	if e.CompletesAt == nil || !e.CompletesAt.After(now) {
		return 0
	}
	return int64(e.CompletesAt.Sub(now).Seconds())
}

// Snapshot returns the terminal-safe view shared with racing admitters
func (e *Entry) Snapshot(now time.Time) shared.ExistingEntrySnapshot {
	return shared.ExistingEntrySnapshot{
		ID:         e.ID,
		State:      string(e.Status),
		StartedAt:  e.StartedAt,
		EtaSeconds: e.RemainingSeconds(now),
		CatalogKey: e.CatalogKey,
	}
}
