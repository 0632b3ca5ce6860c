package catalog

import (
	"fmt"
	"math"
	"sort"
)

// Kind identifies which of the four queue families a catalog entry belongs to
type Kind string

const (
	KindStructure Kind = "structure"
	KindTech      Kind = "tech"
	KindUnit      Kind = "unit"
	KindDefense   Kind = "defense"
)

// Spec is the immutable definition of one catalog entry. Specs carry no
// state; all per-base/per-empire state lives in the owning records.
type Spec struct {
	Key  string
	Kind Kind

	// BaseCredits is the level-1 (or per-unit) credit cost. Levels scale it,
	// see CostAtLevel.
	BaseCredits int64

	// EnergyDelta is the net energy per level: positive for producers,
	// negative for consumers, zero for neutral entries.
	EnergyDelta int

	// AreaCost is buildable slots consumed per level (structures/defenses).
	AreaCost int

	// PopulationCost is population consumed per level (defenses) or per
	// unit (units).
	PopulationCost int

	// TechPrereqs maps tech key -> minimum empire tech level.
	TechPrereqs map[string]int

	// RequiredShipyardLevel gates unit training on the base's shipyard level.
	RequiredShipyardLevel int

	// Hourly capacity contributions per active level.
	ConstructionRate int
	ProductionRate   int
	ResearchRate     int
	EconomyRate      int
}

// IsProducer reports whether this entry adds to a base's energy output
func (s Spec) IsProducer() bool {
	return s.EnergyDelta >= 0
}

// CostAtLevel returns the credit cost of bringing this entry to the given
// level (structures/defenses grow 1.5x per level, techs 2x per level).
func (s Spec) CostAtLevel(level int) int64 {
	if level <= 1 {
		return s.BaseCredits
	}
	growth := 1.5
	if s.Kind == KindTech {
		growth = 2.0
	}
	return int64(math.Round(float64(s.BaseCredits) * math.Pow(growth, float64(level-1))))
}

// CostForQuantity returns the credit cost of training quantity units
func (s Spec) CostForQuantity(quantity int) int64 {
	return s.BaseCredits * int64(quantity)
}

// Resolve looks up the immutable spec for a catalog key of the given kind
func Resolve(kind Kind, key string) (Spec, error) {
	var table map[string]Spec
	switch kind {
	case KindStructure:
		table = structures
	case KindTech:
		table = techs
	case KindUnit:
		table = units
	case KindDefense:
		table = defenses
	default:
		return Spec{}, fmt.Errorf("unknown catalog kind: %s", kind)
	}
	spec, ok := table[key]
	if !ok {
		return Spec{}, fmt.Errorf("unknown %s catalog key: %s", kind, key)
	}
	return spec, nil
}

// Keys returns all catalog keys of one kind in sorted order, for
// status/listing endpoints
func Keys(kind Kind) []string {
	var table map[string]Spec
	switch kind {
	case KindStructure:
		table = structures
	case KindTech:
		table = techs
	case KindUnit:
		table = units
	case KindDefense:
		table = defenses
	default:
		return nil
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
