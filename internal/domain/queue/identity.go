package queue

import (
	"fmt"

	"github.com/astrokernel/imperium/internal/domain/shared"
)

// IdentityKey derives the deterministic admission-slot key for one
// (empire, base, catalog item). At most one non-terminal entry may hold a
// given identity key; storage enforces this with a uniqueness constraint as
// the race backstop behind the pipeline's pre-check.
func IdentityKey(empireID shared.EmpireID, coord shared.Coord, catalogKey string) string {
	return fmt.Sprintf("%d:%s:%s", empireID.Value(), coord.Value(), catalogKey)
}
