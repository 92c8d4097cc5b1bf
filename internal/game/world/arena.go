package world

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

const (
	minPickupsPerZone = 2
	maxPickupsPerZone = 4
	// pickupInset keeps pickups away from zone edges.
	pickupInset = 30
)

// Zone is a static cave region holding healing pickups.
type Zone struct {
	Rect    combat.Rect
	Pickups []*Pickup
}

// NewZone creates a zone with a random count of pickups placed inside rect
// at least pickupInset units from every edge.
//
// Precondition: rect.W and rect.H must be at least 2*pickupInset; src must be non-nil.
// Postcondition: 2 <= len(Pickups) <= 4.
func NewZone(rect combat.Rect, firstID int, src dice.Source, rule RespawnRule) *Zone {
	n := dice.Between(src, minPickupsPerZone, maxPickupsPerZone)
	z := &Zone{Rect: rect, Pickups: make([]*Pickup, 0, n)}
	for i := 0; i < n; i++ {
		x := rect.X + float64(dice.Between(src, pickupInset, int(rect.W)-pickupInset))
		y := rect.Y + float64(dice.Between(src, pickupInset, int(rect.H)-pickupInset))
		z.Pickups = append(z.Pickups, NewPickup(firstID+i, combat.Point{X: x, Y: y}, rule))
	}
	return z
}

// StandardZones returns the five cave rectangles for a width x height arena.
func StandardZones(width, height float64) []combat.Rect {
	halfW := math.Floor(width / 2)
	halfH := math.Floor(height / 2)
	return []combat.Rect{
		{X: 100, Y: 100, W: 200, H: 150},
		{X: width - 300, Y: 100, W: 200, H: 150},
		{X: halfW - 100, Y: height - 200, W: 200, H: 150},
		{X: 50, Y: halfH - 75, W: 180, H: 150},
		{X: width - 230, Y: halfH - 75, W: 180, H: 150},
	}
}

// Arena is the playfield: its bounds and the fixed set of zones.
type Arena struct {
	Bounds combat.Rect
	Zones  []*Zone
}

// NewArena builds the standard arena layout.
//
// Precondition: src must be non-nil.
// Postcondition: len(Zones) == 5; every pickup is available.
func NewArena(width, height float64, src dice.Source, rule RespawnRule) *Arena {
	a := &Arena{Bounds: combat.Rect{W: width, H: height}}
	next := 0
	for _, r := range StandardZones(width, height) {
		z := NewZone(r, next, src, rule)
		next += len(z.Pickups)
		a.Zones = append(a.Zones, z)
	}
	return a
}

// Pickups returns every pickup across all zones in zone order.
func (a *Arena) Pickups() []*Pickup {
	var out []*Pickup
	for _, z := range a.Zones {
		out = append(out, z.Pickups...)
	}
	return out
}

// NearestAvailable returns the uncollected pickup closest to from.
//
// Postcondition: ok is false iff no pickup is available.
func (a *Arena) NearestAvailable(from combat.Point) (*Pickup, bool) {
	var best *Pickup
	bestDist := math.Inf(1)
	for _, z := range a.Zones {
		for _, p := range z.Pickups {
			if p.Collected {
				continue
			}
			if d := from.Distance(p.Pos); d < bestDist {
				best, bestDist = p, d
			}
		}
	}
	return best, best != nil
}

// Tick advances every pickup's respawn timer and returns the pickups that
// became available on this tick.
func (a *Arena) Tick() []*Pickup {
	var respawned []*Pickup
	for _, z := range a.Zones {
		for _, p := range z.Pickups {
			if p.Tick() {
				respawned = append(respawned, p)
			}
		}
	}
	return respawned
}

// Collection records one pickup collected by a combatant.
type Collection struct {
	Pickup *Pickup
	Healed int
}

// CollectFor collects every available pickup touched by c inside a zone it
// overlaps, healing c for each one.
//
// Precondition: c and src must be non-nil.
// Postcondition: every returned pickup is Collected; c.Health <= c.MaxHealth.
func (a *Arena) CollectFor(c *combat.Combatant, src dice.Source) []Collection {
	if !c.Alive() {
		return nil
	}
	box := c.Box()
	var out []Collection
	for _, z := range a.Zones {
		if !box.Intersects(z.Rect) {
			continue
		}
		for _, p := range z.Pickups {
			if p.Collected || !box.Intersects(p.Box()) {
				continue
			}
			p.Collect(src)
			out = append(out, Collection{Pickup: p, Healed: c.Heal(p.HealAmount)})
		}
	}
	return out
}
