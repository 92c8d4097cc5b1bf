package combat

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/arena/internal/game/inventory"
)

// Default combatant dimensions and stats.
const (
	DefaultWidth     = 50
	DefaultHeight    = 70
	DefaultMaxHealth = 100
	DefaultSpeed     = 6
)

// ControllerKind distinguishes who writes a combatant's intent.
type ControllerKind int

const (
	// ControlHuman is driven by a local input layer.
	ControlHuman ControllerKind = iota
	// ControlAI is driven by the AI controller.
	ControlAI
	// ControlRemote is driven by snapshots received from a network peer.
	ControlRemote
)

// String returns a human-readable controller label.
func (k ControllerKind) String() string {
	switch k {
	case ControlHuman:
		return "human"
	case ControlAI:
		return "ai"
	case ControlRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Controller is the tagged variant selecting a combatant's behavior.
// Tier is meaningful only when Kind == ControlAI.
type Controller struct {
	Kind ControllerKind
	Tier string
}

// Human returns a human Controller.
func Human() Controller { return Controller{Kind: ControlHuman} }

// AI returns an AI Controller for the given difficulty tier.
func AI(tier string) Controller { return Controller{Kind: ControlAI, Tier: tier} }

// Remote returns a network-driven Controller.
func Remote() Controller { return Controller{Kind: ControlRemote} }

// Combatant is one of the two fighters in a match.
//
// Invariant: 0 <= Health <= MaxHealth; Cooldown >= 0; once Alive() is false it
// never becomes true again.
type Combatant struct {
	ID          uuid.UUID
	Name        string
	X, Y        float64
	Width       float64
	Height      float64
	Health      int
	MaxHealth   int
	BaseSpeed   float64
	Speed       float64
	Weapon      *inventory.WeaponDef
	Armor       *inventory.ArmorDef
	Cooldown    int
	FacingRight bool
	Controller  Controller

	alive bool
}

// NewCombatant creates a living combatant at (x, y) with the default stats.
//
// Precondition: weapon and armor must be non-nil.
// Postcondition: Alive() is true, Health == MaxHealth, Cooldown == 0.
func NewCombatant(name string, x, y float64, weapon *inventory.WeaponDef, armor *inventory.ArmorDef, ctrl Controller) *Combatant {
	c := &Combatant{
		ID:          uuid.New(),
		Name:        name,
		X:           x,
		Y:           y,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Health:      DefaultMaxHealth,
		MaxHealth:   DefaultMaxHealth,
		BaseSpeed:   DefaultSpeed,
		Weapon:      weapon,
		Armor:       armor,
		FacingRight: true,
		Controller:  ctrl,
		alive:       true,
	}
	c.RefreshSpeed()
	return c
}

// Alive reports whether the combatant is still in the fight.
func (c *Combatant) Alive() bool { return c.alive }

// IsAI reports whether the combatant is driven by the AI controller.
func (c *Combatant) IsAI() bool { return c.Controller.Kind == ControlAI }

// Box returns the combatant's bounding box.
func (c *Combatant) Box() Rect {
	return Rect{X: c.X, Y: c.Y, W: c.Width, H: c.Height}
}

// Center returns the midpoint of the combatant's bounding box.
func (c *Combatant) Center() Point {
	return c.Box().Center()
}

// Position returns the combatant's top-left corner.
func (c *Combatant) Position() Point {
	return Point{X: c.X, Y: c.Y}
}

// RefreshSpeed recomputes Speed from the current armor.
//
// Postcondition: Speed == EffectiveSpeed(BaseSpeed, Armor).
func (c *Combatant) RefreshSpeed() {
	c.Speed = EffectiveSpeed(c.BaseSpeed, c.Armor)
}

// ApplyDamage mitigates raw through the combatant's armor and subtracts it
// from Health, flooring at zero. Dead combatants take no damage.
//
// Postcondition: Health >= 0; returns the damage actually subtracted.
func (c *Combatant) ApplyDamage(raw int) int {
	if !c.alive {
		return 0
	}
	dmg := MitigatedDamage(raw, c.Armor)
	if dmg > c.Health {
		dmg = c.Health
	}
	c.Health -= dmg
	return dmg
}

// Heal restores up to amount health. Dead combatants cannot be healed.
//
// Postcondition: Health <= MaxHealth; returns the health actually restored.
func (c *Combatant) Heal(amount int) int {
	if !c.alive || amount <= 0 {
		return 0
	}
	applied := c.MaxHealth - c.Health
	if amount < applied {
		applied = amount
	}
	c.Health += applied
	return applied
}

// TickCooldown decrements the attack cooldown by one tick.
//
// Postcondition: Cooldown >= 0.
func (c *Combatant) TickCooldown() {
	if c.Cooldown > 0 {
		c.Cooldown--
	}
}

// CheckDeath marks the combatant dead once Health reaches zero.
//
// Postcondition: returns true only on the call that transitions alive to dead.
func (c *Combatant) CheckDeath() bool {
	if c.alive && c.Health <= 0 {
		c.alive = false
		return true
	}
	return false
}

// Kill marks the combatant dead regardless of Health.
//
// Postcondition: Alive() is false; Health is unchanged.
func (c *Combatant) Kill() {
	c.alive = false
}

// Place moves the combatant to (x, y) clamped into bounds.
func (c *Combatant) Place(x, y float64, bounds Rect) {
	c.X, c.Y = bounds.Clamp(x, y, c.Width, c.Height)
}

// Move displaces the combatant by (dx, dy) and clamps it into bounds.
func (c *Combatant) Move(dx, dy float64, bounds Rect) {
	c.Place(c.X+dx, c.Y+dy, bounds)
}

// Loadout returns the IDs of the combatant's weapon and armor.
func (c *Combatant) Loadout() (string, string) {
	return c.Weapon.ID, c.Armor.ID
}
