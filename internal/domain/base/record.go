package base

import (
	"time"

	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// Record is one structure or defense row per (base, catalog key). A single
// record represents both "built and active at level N" and "in-flight change
// to level N+1" - disambiguated by IsActive/PendingUpgrade, never by a
// second row.
type Record struct {
	Coord      shared.Coord
	CatalogKey string
	Kind       catalog.Kind // structure or defense

	Level          int
	IsActive       bool
	PendingUpgrade bool

	// CreditsCost is the cost of the in-flight level change, 0 when idle.
	CreditsCost int64

	ConstructionStarted   *time.Time
	ConstructionCompleted *time.Time
}

// NewConstruction creates the record for a first-time build: level 1,
// inactive, not yet started. The record is deleted again only if this
// never-activated construction is cancelled.
func NewConstruction(coord shared.Coord, kind catalog.Kind, key string, cost int64) *Record {
	return &Record{
		Coord:       coord,
		CatalogKey:  key,
		Kind:        kind,
		Level:       1,
		IsActive:    false,
		CreditsCost: cost,
	}
}

// TargetLevel is the level this record reaches when its in-flight change
// completes
func (r *Record) TargetLevel() int {
	if r.PendingUpgrade {
		return r.Level + 1
	}
	return r.Level
}

// InFlight reports whether a level change is queued or under construction
func (r *Record) InFlight() bool {
	return r.CreditsCost > 0 || r.PendingUpgrade || (!r.IsActive && r.ConstructionCompleted == nil)
}

// BeginUpgrade flips an active record into its in-flight upgrade state.
// The level stays at N until completion; the ledger stops counting the
// record while it is inactive.
func (r *Record) BeginUpgrade(cost int64) {
	r.IsActive = false
	r.PendingUpgrade = true
	r.CreditsCost = cost
	r.ConstructionStarted = nil
	r.ConstructionCompleted = nil
}

// StampSchedule records the construction window chosen by the scheduler
func (r *Record) StampSchedule(started, completes time.Time) {
	r.ConstructionStarted = &started
	r.ConstructionCompleted = &completes
}

// Activate promotes the record to the target level using max semantics and
// returns it to the active state. Safe to call repeatedly for the same
// completion: a second call changes nothing.
func (r *Record) Activate(targetLevel int) bool {
	changed := false
	if targetLevel > r.Level {
		r.Level = targetLevel
		changed = true
	}
	if !r.IsActive || r.PendingUpgrade || r.CreditsCost != 0 {
		changed = true
	}
	r.IsActive = true
	r.PendingUpgrade = false
	r.CreditsCost = 0
	return changed
}

// RevertUpgrade undoes a cancelled upgrade, restoring the record to active
// at its previous level and clearing the in-flight bookkeeping
func (r *Record) RevertUpgrade() {
	r.IsActive = true
	r.PendingUpgrade = false
	r.CreditsCost = 0
	r.ConstructionStarted = nil
	r.ConstructionCompleted = nil
}
