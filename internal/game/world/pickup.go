// Package world models the arena playfield: its bounds, the cave zones, and
// the self-respawning healing pickups inside them.
package world

import (
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Pickup constants.
const (
	PickupRadius = 15
	PickupHeal   = 30
)

// RespawnRule bounds the number of ticks a collected pickup stays unavailable.
//
// Invariant: 1 <= MinTicks <= MaxTicks.
type RespawnRule struct {
	MinTicks int
	MaxTicks int
}

// DefaultRespawn is the standard respawn window.
var DefaultRespawn = RespawnRule{MinTicks: 300, MaxTicks: 600}

// Pickup is a healing resource that becomes available again after being collected.
//
// Invariant: while Collected is false the respawn timer is zero.
type Pickup struct {
	ID         int
	Pos        combat.Point
	Radius     float64
	HealAmount int
	Collected  bool

	rule         RespawnRule
	respawnTimer int
	respawnAfter int
}

// NewPickup creates an available pickup at pos.
func NewPickup(id int, pos combat.Point, rule RespawnRule) *Pickup {
	return &Pickup{
		ID:         id,
		Pos:        pos,
		Radius:     PickupRadius,
		HealAmount: PickupHeal,
		rule:       rule,
	}
}

// Box returns the axis-aligned box approximating the pickup's circle.
func (p *Pickup) Box() combat.Rect {
	return combat.Rect{X: p.Pos.X - p.Radius, Y: p.Pos.Y - p.Radius, W: p.Radius * 2, H: p.Radius * 2}
}

// Available reports whether the pickup can be collected.
func (p *Pickup) Available() bool { return !p.Collected }

// Collect marks the pickup collected and draws its respawn threshold from src.
//
// Precondition: src must be non-nil.
// Postcondition: Collected is true; RespawnIn() equals the drawn threshold.
func (p *Pickup) Collect(src dice.Source) {
	p.Collected = true
	p.respawnTimer = 0
	p.respawnAfter = dice.Between(src, p.rule.MinTicks, p.rule.MaxTicks)
}

// Tick advances the respawn timer of a collected pickup.
//
// Postcondition: returns true on the tick the pickup becomes available again.
func (p *Pickup) Tick() bool {
	if !p.Collected {
		return false
	}
	p.respawnTimer++
	if p.respawnTimer >= p.respawnAfter {
		p.Collected = false
		p.respawnTimer = 0
		return true
	}
	return false
}

// RespawnIn returns the ticks remaining until a collected pickup is available,
// or zero when it already is.
func (p *Pickup) RespawnIn() int {
	if !p.Collected {
		return 0
	}
	return p.respawnAfter - p.respawnTimer
}
