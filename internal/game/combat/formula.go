// Package combat implements the arena combat model: damage and speed
// formulas, combatant and projectile state, and attack resolution.
package combat

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/inventory"
)

// MitigatedDamage returns the damage that reaches a combatant wearing armor.
//
// Precondition: armor must be non-nil.
// Postcondition: returns floor(raw * armor.Defense), never negative.
func MitigatedDamage(raw int, armor *inventory.ArmorDef) int {
	if raw <= 0 {
		return 0
	}
	return int(math.Floor(float64(raw) * armor.Defense))
}

// EffectiveSpeed returns the movement speed of a combatant wearing armor.
//
// Precondition: armor must be non-nil.
// Postcondition: returns base * armor.SpeedMult.
func EffectiveSpeed(base float64, armor *inventory.ArmorDef) float64 {
	return base * armor.SpeedMult
}
