package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/inventory"
	"github.com/cory-johannsen/arena/internal/game/world"
)

func fighterAt(x, y float64) *combat.Combatant {
	reg := inventory.DefaultRegistry()
	w, _ := reg.Weapon("sword")
	a, _ := reg.Armor("light")
	return combat.NewCombatant("f", x, y, w, a, combat.Human())
}

func TestStandardZones(t *testing.T) {
	zones := world.StandardZones(1400, 800)
	require.Len(t, zones, 5)
	assert.Equal(t, combat.Rect{X: 1100, Y: 100, W: 200, H: 150}, zones[1])
	assert.Equal(t, combat.Rect{X: 600, Y: 600, W: 200, H: 150}, zones[2])
	assert.Equal(t, combat.Rect{X: 1170, Y: 325, W: 180, H: 150}, zones[4])
}

func TestNewArena_PickupsInsideZones_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		a := world.NewArena(1400, 800, dice.NewSeededSource(seed), world.DefaultRespawn)
		require.Len(rt, a.Zones, 5)
		ids := map[int]bool{}
		for _, z := range a.Zones {
			if len(z.Pickups) < 2 || len(z.Pickups) > 4 {
				rt.Fatalf("zone has %d pickups", len(z.Pickups))
			}
			for _, p := range z.Pickups {
				if p.Pos.X < z.Rect.X+30 || p.Pos.X > z.Rect.X+z.Rect.W-30 ||
					p.Pos.Y < z.Rect.Y+30 || p.Pos.Y > z.Rect.Y+z.Rect.H-30 {
					rt.Fatalf("pickup at %+v outside inset of zone %+v", p.Pos, z.Rect)
				}
				if ids[p.ID] {
					rt.Fatalf("duplicate pickup id %d", p.ID)
				}
				ids[p.ID] = true
				assert.True(rt, p.Available())
			}
		}
	})
}

func TestPickup_RespawnsWithoutTrigger(t *testing.T) {
	src := &dice.FixedSource{Ints: []int{0}}
	p := world.NewPickup(1, combat.Point{X: 10, Y: 10}, world.RespawnRule{MinTicks: 3, MaxTicks: 3})
	p.Collect(src)
	require.True(t, p.Collected)
	assert.Equal(t, 3, p.RespawnIn())

	assert.False(t, p.Tick())
	assert.False(t, p.Tick())
	assert.True(t, p.Collected)
	assert.True(t, p.Tick())
	assert.False(t, p.Collected)
	assert.Equal(t, 0, p.RespawnIn())
	assert.False(t, p.Tick(), "available pickups do not tick")
}

func TestPickup_RespawnThresholdInRange_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := dice.NewSeededSource(rapid.Int64().Draw(rt, "seed"))
		p := world.NewPickup(0, combat.Point{}, world.DefaultRespawn)
		p.Collect(src)
		n := p.RespawnIn()
		if n < 300 || n > 600 {
			rt.Fatalf("respawn threshold %d outside [300, 600]", n)
		}
		for i := 0; i < n; i++ {
			p.Tick()
		}
		if p.Collected {
			rt.Fatalf("pickup still collected after %d ticks", n)
		}
	})
}

func TestArena_NearestAvailable(t *testing.T) {
	a := &world.Arena{Bounds: combat.Rect{W: 1400, H: 800}}
	near := world.NewPickup(1, combat.Point{X: 100, Y: 100}, world.DefaultRespawn)
	far := world.NewPickup(2, combat.Point{X: 900, Y: 100}, world.DefaultRespawn)
	a.Zones = []*world.Zone{{Rect: combat.Rect{X: 0, Y: 0, W: 1000, H: 200}, Pickups: []*world.Pickup{far, near}}}

	got, ok := a.NearestAvailable(combat.Point{X: 0, Y: 0})
	require.True(t, ok)
	assert.Equal(t, 1, got.ID)

	near.Collect(dice.NewSeededSource(1))
	got, ok = a.NearestAvailable(combat.Point{X: 0, Y: 0})
	require.True(t, ok)
	assert.Equal(t, 2, got.ID)

	far.Collect(dice.NewSeededSource(1))
	_, ok = a.NearestAvailable(combat.Point{})
	assert.False(t, ok)
}

func TestArena_CollectFor_HealsClamped(t *testing.T) {
	p := world.NewPickup(1, combat.Point{X: 150, Y: 150}, world.DefaultRespawn)
	a := &world.Arena{
		Bounds: combat.Rect{W: 1400, H: 800},
		Zones:  []*world.Zone{{Rect: combat.Rect{X: 100, Y: 100, W: 200, H: 150}, Pickups: []*world.Pickup{p}}},
	}
	c := fighterAt(130, 120)
	c.Health = 90

	got := a.CollectFor(c, dice.NewSeededSource(7))
	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].Healed)
	assert.Equal(t, 100, c.Health)
	assert.True(t, p.Collected)

	assert.Empty(t, a.CollectFor(c, dice.NewSeededSource(7)), "collected pickups cannot be taken twice")
}

func TestArena_CollectFor_RequiresZoneOverlap(t *testing.T) {
	// Pickup box pokes outside the zone; a combatant touching only that part
	// is not inside the zone.
	p := world.NewPickup(1, combat.Point{X: 105, Y: 200}, world.DefaultRespawn)
	a := &world.Arena{
		Zones: []*world.Zone{{Rect: combat.Rect{X: 100, Y: 100, W: 200, H: 150}, Pickups: []*world.Pickup{p}}},
	}
	c := fighterAt(45, 170)
	c.Health = 50
	assert.Empty(t, a.CollectFor(c, dice.NewSeededSource(1)))
	assert.Equal(t, 50, c.Health)
}

func TestArena_Tick_ReportsRespawned(t *testing.T) {
	a := world.NewArena(1400, 800, dice.NewSeededSource(3), world.RespawnRule{MinTicks: 1, MaxTicks: 1})
	first := a.Pickups()[0]
	first.Collect(dice.NewSeededSource(3))
	got := a.Tick()
	require.Len(t, got, 1)
	assert.Same(t, first, got[0])
}
