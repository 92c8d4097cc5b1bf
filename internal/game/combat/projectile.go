package combat

import (
	"math"

	"github.com/google/uuid"
)

// Projectile constants.
const (
	ProjectileSpeed    = 15
	ProjectileRadius   = 10
	ProjectileLifetime = 100
)

// Projectile is a ranged attack in flight.
//
// Invariant: velocity is fixed at spawn; OwnerID identifies the combatant that
// fired it and is used only to exclude self-hits.
type Projectile struct {
	ID       uuid.UUID
	X, Y     float64
	VX, VY   float64
	Radius   float64
	Damage   int
	OwnerID  uuid.UUID
	Lifetime int

	alive bool
}

// NewProjectile spawns a projectile at origin travelling toward target at
// ProjectileSpeed. A target equal to origin yields a stationary projectile.
//
// Postcondition: Alive() is true; Lifetime == ProjectileLifetime.
func NewProjectile(origin, target Point, damage int, owner uuid.UUID) *Projectile {
	p := &Projectile{
		ID:       uuid.New(),
		X:        origin.X,
		Y:        origin.Y,
		Radius:   ProjectileRadius,
		Damage:   damage,
		OwnerID:  owner,
		Lifetime: ProjectileLifetime,
		alive:    true,
	}
	dx, dy := target.X-origin.X, target.Y-origin.Y
	if dist := math.Hypot(dx, dy); dist > 0 {
		p.VX = dx / dist * ProjectileSpeed
		p.VY = dy / dist * ProjectileSpeed
	}
	return p
}

// Alive reports whether the projectile is still in flight.
func (p *Projectile) Alive() bool { return p.alive }

// Kill removes the projectile from play.
func (p *Projectile) Kill() { p.alive = false }

// Position returns the projectile's center.
func (p *Projectile) Position() Point { return Point{X: p.X, Y: p.Y} }

// Box returns the axis-aligned box approximating the projectile's circle.
func (p *Projectile) Box() Rect {
	return Rect{X: p.X - p.Radius, Y: p.Y - p.Radius, W: p.Radius * 2, H: p.Radius * 2}
}

// Step advances the projectile one tick and expires it when its lifetime
// runs out or it leaves bounds.
//
// Postcondition: Alive() is false if Lifetime <= 0 or the center is outside bounds.
func (p *Projectile) Step(bounds Rect) {
	if !p.alive {
		return
	}
	p.X += p.VX
	p.Y += p.VY
	p.Lifetime--
	if p.Lifetime <= 0 || !bounds.Contains(p.Position()) {
		p.alive = false
	}
}

// CanHit reports whether the projectile may damage c.
func (p *Projectile) CanHit(c *Combatant) bool {
	return p.alive && c.Alive() && c.ID != p.OwnerID && p.Box().Intersects(c.Box())
}
