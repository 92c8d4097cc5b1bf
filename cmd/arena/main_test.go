package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/inventory"
	"github.com/cory-johannsen/arena/internal/game/match"
)

func TestRunSetup(t *testing.T) {
	reg := inventory.DefaultRegistry()
	m := config.Default().Match
	m.P1Weapon, m.P1Armor = "axe", "heavy"
	m.P2Weapon, m.P2Armor = "bow", "light"
	m.Difficulty = "hard"

	setup := match.NewSetup(match.ModeVersus, reg, dice.NewSeededSource(1))
	require.NoError(t, runSetup(setup, m))
	l, err := setup.Loadouts()
	require.NoError(t, err)
	assert.Equal(t, "axe", l[0].WeaponID)
	assert.Equal(t, "light", l[1].ArmorID)
	assert.Equal(t, []int{0, 1}, humanSlots(l))

	// Ints: AI weapon index 4 (gun), armor index 0 (light).
	setup = match.NewSetup(match.ModeAI, reg, &dice.FixedSource{Ints: []int{4, 0}})
	require.NoError(t, runSetup(setup, m))
	l, err = setup.Loadouts()
	require.NoError(t, err)
	assert.Equal(t, combat.AI("hard"), l[1].Controller)
	assert.Equal(t, "gun", l[1].WeaponID, "the AI loadout is drawn, not configured")
	assert.Equal(t, []int{0}, humanSlots(l))

	setup = match.NewSetup(match.ModeJoin, reg, dice.NewSeededSource(1))
	require.NoError(t, runSetup(setup, m))
	local, err := setup.Local("Guest")
	require.NoError(t, err)
	assert.Equal(t, "heavy", local.ArmorID)

	m.P1Weapon = "spear"
	err = runSetup(match.NewSetup(match.ModeVersus, reg, dice.NewSeededSource(1)), m)
	assert.ErrorIs(t, err, match.ErrInvalidChoice)
}

func TestFrameLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	fl := newFrameLogger(zap.New(core), 10)

	fl.Observe(match.Frame{Phase: match.PhasePlaying, Tick: 3})
	assert.Equal(t, 0, logs.Len(), "off-interval frames are not logged")

	fl.Observe(match.Frame{Phase: match.PhasePlaying, Tick: 10})
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "frame", logs.All()[0].Message)

	fl.Observe(match.Frame{
		Phase:      match.PhaseOver,
		Tick:       13,
		Combatants: [2]match.CombatantView{{Name: "Ada", Health: 40}, {Name: "Bo"}},
		Pickups:    []match.PickupView{{Available: true}, {}},
	})
	final := logs.FilterMessage("final frame").All()
	require.Len(t, final, 1)
	ctx := final[0].ContextMap()
	assert.Equal(t, "Ada", ctx["p1_name"])
	assert.Equal(t, int64(40), ctx["p1_health"])
	assert.Equal(t, int64(1), ctx["pickups_available"])
}
