// Package capacity derives per-base hourly rates from active structures and
// tech levels. Rates feed both ETA math and economy accrual. Pure and
// recomputed per call, never cached across requests.
package capacity

import (
	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/catalog"
)

// BaseConstructionRate is the innate construction throughput every owned
// base has before any structure contributes.
const BaseConstructionRate = 12

// Capacities are hourly throughput rates for one base
type Capacities struct {
	ConstructionPerHour int `json:"construction"`
	ProductionPerHour   int `json:"production"`
	ResearchPerHour     int `json:"research"`
	EconomyPerHour      int `json:"economy"`
}

// RateFor returns the rate gating one queue kind
func (c Capacities) RateFor(kind catalog.Kind) int {
	switch kind {
	case catalog.KindStructure, catalog.KindDefense:
		return c.ConstructionPerHour
	case catalog.KindUnit:
		return c.ProductionPerHour
	case catalog.KindTech:
		return c.ResearchPerHour
	}
	return 0
}

// Compute rolls up hourly rates from ACTIVE records, then applies empire tech
// bonuses: cybernetics_tech +5%/level to construction and production,
// computer_tech +5%/level to research (integer floor).
func Compute(records []*base.Record, techLevels map[string]int) Capacities {
	c := Capacities{ConstructionPerHour: BaseConstructionRate}
	for _, r := range records {
		if !r.IsActive {
			continue
		}
		spec, err := catalog.Resolve(r.Kind, r.CatalogKey)
		if err != nil {
			continue
		}
		c.ConstructionPerHour += spec.ConstructionRate * r.Level
		c.ProductionPerHour += spec.ProductionRate * r.Level
		c.ResearchPerHour += spec.ResearchRate * r.Level
		c.EconomyPerHour += spec.EconomyRate * r.Level
	}

	cyber := techLevels["cybernetics_tech"]
	computer := techLevels["computer_tech"]
	c.ConstructionPerHour = applyBonus(c.ConstructionPerHour, cyber)
	c.ProductionPerHour = applyBonus(c.ProductionPerHour, cyber)
	c.ResearchPerHour = applyBonus(c.ResearchPerHour, computer)
	return c
}

func applyBonus(rate, techLevel int) int {
	if techLevel <= 0 || rate <= 0 {
		return rate
	}
	return rate * (100 + 5*techLevel) / 100
}

// ETAMinutes converts a credit cost and an hourly rate into a completion
// duration: max(1, ceil(cost/rate * 60)). Callers must reject a zero rate
// before calling.
func ETAMinutes(creditsCost int64, ratePerHour int) int {
	if ratePerHour <= 0 {
		return 0
	}
	rate := int64(ratePerHour)
	minutes := (creditsCost*60 + rate - 1) / rate
	if minutes < 1 {
		return 1
	}
	return int(minutes)
}
