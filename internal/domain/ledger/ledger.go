// Package ledger computes a base's energy, area and population rollups from
// its records. Everything here is pure and recomputed per call: base state
// changes between requests, so nothing is cached.
package ledger

import (
	"github.com/astrokernel/imperium/internal/domain/base"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/queue"
)

// EnergyReport is the derived energy snapshot for one base
type EnergyReport struct {
	Produced int `json:"produced"`
	Consumed int `json:"consumed"`
	Balance  int `json:"balance"`
}

// Energy rolls up produced/consumed/balance over ACTIVE records only.
// Inactive records (under construction or mid-upgrade) contribute nothing.
// The base's innate solar rating is the production baseline.
func Energy(b *base.Base, records []*base.Record) EnergyReport {
	report := EnergyReport{Produced: b.SolarEnergy}
	for _, r := range records {
		if !r.IsActive {
			continue
		}
		spec, err := catalog.Resolve(r.Kind, r.CatalogKey)
		if err != nil {
			continue
		}
		total := spec.EnergyDelta * r.Level
		if total >= 0 {
			report.Produced += total
		} else {
			report.Consumed += -total
		}
	}
	report.Balance = report.Produced - report.Consumed
	return report
}

// AreaUsed sums buildable slots over all records, active or not. In-flight
// upgrades count their target level so the new level's slot is held from
// admission onward.
func AreaUsed(records []*base.Record) int {
	used := 0
	for _, r := range records {
		spec, err := catalog.Resolve(r.Kind, r.CatalogKey)
		if err != nil {
			continue
		}
		used += spec.AreaCost * r.TargetLevel()
	}
	return used
}

// PopulationCapacity is fertility-scaled urban housing
func PopulationCapacity(b *base.Base, records []*base.Record) int {
	for _, r := range records {
		if r.CatalogKey == "urban_structures" && r.IsActive {
			return b.Fertility * r.Level
		}
	}
	return 0
}

// PopulationUsed sums defense garrisons plus live unit training orders.
// Completed units ship out with the fleet and stop occupying base housing.
func PopulationUsed(records []*base.Record, liveEntries []*queue.Entry) int {
	used := 0
	for _, r := range records {
		if r.Kind != catalog.KindDefense {
			continue
		}
		spec, err := catalog.Resolve(r.Kind, r.CatalogKey)
		if err != nil {
			continue
		}
		used += spec.PopulationCost * r.TargetLevel()
	}
	for _, e := range liveEntries {
		if e.Type != catalog.KindUnit {
			continue
		}
		spec, err := catalog.Resolve(e.Type, e.CatalogKey)
		if err != nil {
			continue
		}
		used += spec.PopulationCost * e.Quantity
	}
	return used
}
