package combat

// AttackKind classifies the outcome of an attack attempt.
type AttackKind int

const (
	// AttackNone means nothing happened: on cooldown, dead, or a melee swing out of reach.
	AttackNone AttackKind = iota
	// AttackMelee means a melee swing landed; the caller applies Damage to the defender.
	AttackMelee
	// AttackRanged means a projectile was spawned.
	AttackRanged
)

// String returns a human-readable attack label.
func (k AttackKind) String() string {
	switch k {
	case AttackNone:
		return "none"
	case AttackMelee:
		return "melee"
	case AttackRanged:
		return "ranged"
	default:
		return "unknown"
	}
}

// AttackResult is the outcome of Combatant.Attack.
type AttackResult struct {
	Kind AttackKind
	// Damage is the raw weapon damage for a landed melee swing.
	Damage int
	// Projectile is set when Kind == AttackRanged.
	Projectile *Projectile
	// Attempted is true when the attempt consumed the cooldown.
	Attempted bool
}

// Attack attempts an attack toward target.
//
// Melee weapons land iff the distance from the attacker's center to target is
// at most the weapon range. Ranged weapons always spawn a projectile from the
// attacker's center toward target. Every attempt that is not a no-op resets
// Cooldown to the weapon cooldown, including a melee swing that misses.
//
// Postcondition: returns AttackNone with no state change when Cooldown > 0 or
// the attacker is dead.
func (c *Combatant) Attack(target Point) AttackResult {
	if c.Cooldown > 0 || !c.alive {
		return AttackResult{}
	}
	c.Cooldown = c.Weapon.Cooldown
	origin := c.Center()

	if c.Weapon.Projectile {
		return AttackResult{
			Kind:       AttackRanged,
			Projectile: NewProjectile(origin, target, c.Weapon.Damage, c.ID),
			Attempted:  true,
		}
	}
	if origin.Distance(target) <= c.Weapon.Range {
		return AttackResult{Kind: AttackMelee, Damage: c.Weapon.Damage, Attempted: true}
	}
	return AttackResult{Attempted: true}
}
