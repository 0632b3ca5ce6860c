package empire

import (
	"time"

	"github.com/astrokernel/imperium/internal/domain/shared"
)

// Empire is the aggregate owning the global credit balance, empire-wide tech
// levels and the standing unit roster. Credits are the only shared currency;
// they are deducted when construction starts and refunded on cancellation.
type Empire struct {
	ID         shared.EmpireID
	Name       string
	Credits    int64
	TechLevels map[string]int
	UnitCounts map[string]int

	// LastIncomeAt anchors elapsed-time economy accrual so duplicate ticks
	// never pay an empire twice for the same interval.
	LastIncomeAt time.Time
}

// New creates an empire with empty tech/unit maps
func New(id shared.EmpireID, name string, credits int64, now time.Time) *Empire {
	return &Empire{
		ID:           id,
		Name:         name,
		Credits:      credits,
		TechLevels:   make(map[string]int),
		UnitCounts:   make(map[string]int),
		LastIncomeAt: now,
	}
}

// TechLevel returns the empire's current level for a tech key (0 if unresearched)
func (e *Empire) TechLevel(key string) int {
	return e.TechLevels[key]
}

// CanAfford reports whether the empire can pay the given amount
func (e *Empire) CanAfford(amount int64) bool {
	return e.Credits >= amount
}

// DeductCredits removes credits from the balance. The balance never goes
// negative; callers must check CanAfford first.
func (e *Empire) DeductCredits(amount int64) error {
	if amount < 0 {
		return shared.NewInvalidRequestError("credit deduction cannot be negative")
	}
	if e.Credits < amount {
		return shared.NewInsufficientFundsError(amount, e.Credits)
	}
	e.Credits -= amount
	return nil
}

// AddCredits adds credits to the balance (refunds, economy accrual)
func (e *Empire) AddCredits(amount int64) {
	if amount > 0 {
		e.Credits += amount
	}
}

// PromoteTechTo raises a tech to the target level using max semantics, so a
// duplicate completion observation never double-applies a level bump.
// Returns true when the level actually changed.
func (e *Empire) PromoteTechTo(key string, target int) bool {
	if e.TechLevels == nil {
		e.TechLevels = make(map[string]int)
	}
	if e.TechLevels[key] >= target {
		return false
	}
	e.TechLevels[key] = target
	return true
}

// AddUnits adds trained units to the roster. Idempotence for unit counts is
// enforced by the caller's atomic entry completion, not here.
func (e *Empire) AddUnits(key string, quantity int) {
	if quantity <= 0 {
		return
	}
	if e.UnitCounts == nil {
		e.UnitCounts = make(map[string]int)
	}
	e.UnitCounts[key] += quantity
}

// AccrueIncome pays economy income for the elapsed interval and advances the
// accrual anchor. Paying is a no-op when no whole credit has accrued yet.
func (e *Empire) AccrueIncome(ratePerHour int, now time.Time) int64 {
	if ratePerHour <= 0 || !now.After(e.LastIncomeAt) {
		return 0
	}
	elapsed := now.Sub(e.LastIncomeAt)
	earned := int64(float64(ratePerHour) * elapsed.Hours())
	if earned <= 0 {
		return 0
	}
	e.Credits += earned
	e.LastIncomeAt = now
	return earned
}
