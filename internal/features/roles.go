package features

import "github.com/latentspace/match-engine/internal/types"

// roleSide groups role intents by the side of the company they cover.
type roleSide int

const (
	sideBusiness roleSide = iota
	sideTechnical
	sideProduct
)

func sideOf(role types.RoleIntent) roleSide {
	switch role {
	case types.RoleCTO, types.RoleTechnical:
		return sideTechnical
	case types.RoleCPO:
		return sideProduct
	default:
		return sideBusiness
	}
}

// RoleComplementarity scores how well two role intents fit together as a
// founding pair. Roles covering different sides of the company score
// highest; two users wanting the exact same seat score lowest.
func RoleComplementarity(a, b types.RoleIntent) float64 {
	switch {
	case a == b:
		return 0.2
	case sideOf(a) != sideOf(b):
		return 1.0
	default:
		return 0.5
	}
}
