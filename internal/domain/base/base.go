package base

import (
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// Base is a colonized (or empty) location. Environmental attributes
// parameterize structure output: SolarEnergy is the innate energy baseline,
// Fertility scales population per urban level, Area bounds buildable slots.
type Base struct {
	Coord    shared.Coord
	Name     string
	EmpireID shared.EmpireID // zero value = unowned

	SolarEnergy int
	Fertility   int
	Area        int
}

// IsOwned reports whether any empire owns this base
func (b *Base) IsOwned() bool {
	return !b.EmpireID.IsZero()
}

// IsOwnedBy reports whether the given empire owns this base
func (b *Base) IsOwnedBy(id shared.EmpireID) bool {
	return b.IsOwned() && b.EmpireID.Equals(id)
}
