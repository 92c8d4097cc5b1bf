package match

import (
	"fmt"
	"sync"
)

// Manager enforces that at most one session is active at a time. A session is
// active from Prepare until it returns to the menu or End is called.
// All methods are safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	opts   Options
	active *Session
}

// NewManager creates a Manager that builds sessions from opts.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts.withDefaults()}
}

// Prepare creates a session in the setup phase for mode, makes it the active
// session, and returns it with its selection flow. The caller starts the
// session once the loadouts are chosen.
//
// Postcondition: returns ErrSessionActive if another session is in setup,
// playing, or over.
func (m *Manager) Prepare(mode Mode) (*Session, *Setup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil && m.active.Phase() != PhaseMenu {
		return nil, nil, fmt.Errorf("Prepare: %w", ErrSessionActive)
	}
	s := NewSession(m.opts)
	setup, err := s.BeginSetup(mode)
	if err != nil {
		return nil, nil, err
	}
	m.active = s
	return s, setup, nil
}

// Active returns the active session, if any.
//
// Postcondition: ok is false when no session exists or the last one returned to the menu.
func (m *Manager) Active() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || m.active.Phase() == PhaseMenu {
		return nil, false
	}
	return m.active, true
}

// End aborts the active session and releases the slot.
func (m *Manager) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		m.active.Abort()
		m.active = nil
	}
}
