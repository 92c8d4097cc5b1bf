package match_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/match"
)

func newManager(t *testing.T) *match.Manager {
	return match.NewManager(match.Options{Source: dice.NewSeededSource(7), Logger: zaptest.NewLogger(t)})
}

func begin(t *testing.T, m *match.Manager, l match.Loadouts) *match.Session {
	t.Helper()
	s, _, err := m.Prepare(match.ModeVersus)
	require.NoError(t, err)
	require.NoError(t, s.Start(l))
	return s
}

func TestManager_SingleActiveSession(t *testing.T) {
	m := newManager(t)
	_, ok := m.Active()
	assert.False(t, ok)

	s := begin(t, m, versus("sword", "light", "bow", "medium"))
	active, ok := m.Active()
	require.True(t, ok)
	assert.Same(t, s, active)

	_, _, err := m.Prepare(match.ModeAI)
	assert.True(t, errors.Is(err, match.ErrSessionActive))

	m.End()
	_, ok = m.Active()
	assert.False(t, ok)
	assert.Equal(t, match.PhaseMenu, s.Phase())

	begin(t, m, versus("axe", "heavy", "gun", "light"))
}

func TestManager_PrepareEntersSetup(t *testing.T) {
	m := newManager(t)
	s, setup, err := m.Prepare(match.ModeAI)
	require.NoError(t, err)
	assert.Equal(t, match.PhaseSetup, s.Phase())
	assert.Equal(t, match.StepDifficulty, setup.Step())

	active, ok := m.Active()
	require.True(t, ok, "a session in setup holds the slot")
	assert.Same(t, s, active)
}

func TestManager_PrepareAfterAbort(t *testing.T) {
	m := newManager(t)
	s := begin(t, m, versus("sword", "light", "sword", "light"))
	s.Abort()
	_, _, err := m.Prepare(match.ModeVersus)
	assert.NoError(t, err, "a session returned to the menu releases the slot")
}

func TestManager_BadLoadoutKeepsSetup(t *testing.T) {
	m := newManager(t)
	s, _, err := m.Prepare(match.ModeVersus)
	require.NoError(t, err)
	require.Error(t, s.Start(versus("sword", "plate", "sword", "light")))
	assert.Equal(t, match.PhaseSetup, s.Phase())

	m.End()
	_, ok := m.Active()
	assert.False(t, ok)
}

func TestManager_ConcurrentPrepare(t *testing.T) {
	m := newManager(t)
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := m.Prepare(match.ModeVersus); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
