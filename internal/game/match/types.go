// Package match owns a two-combatant match session: loadout setup, the
// fixed-tick update loop, and the single-active-session manager.
package match

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/combat"
)

// Sentinel errors.
var (
	// ErrSessionActive is returned when a session is begun while another is in play.
	ErrSessionActive = errors.New("match: a session is already active")
	// ErrNotPlaying is returned when a playing-only operation runs in another phase.
	ErrNotPlaying = errors.New("match: session is not playing")
	// ErrNotOver is returned by Rematch before the match has ended.
	ErrNotOver = errors.New("match: session is not over")
	// ErrInvalidChoice is returned for an out-of-range setup selection.
	ErrInvalidChoice = errors.New("match: invalid choice")
	// ErrSetupIncomplete is returned when loadouts are requested before setup finishes.
	ErrSetupIncomplete = errors.New("match: setup incomplete")
	// ErrNoRemote is returned by ApplyRemote when neither combatant is remote-controlled.
	ErrNoRemote = errors.New("match: no remote combatant")
)

// Phase is the session lifecycle state.
type Phase int

const (
	PhaseMenu Phase = iota
	PhaseSetup
	PhasePlaying
	PhaseOver
)

// String returns a human-readable phase label.
func (p Phase) String() string {
	switch p {
	case PhaseMenu:
		return "menu"
	case PhaseSetup:
		return "setup"
	case PhasePlaying:
		return "playing"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// Mode selects who controls the two combatants.
type Mode string

const (
	// ModeVersus pits two local humans against each other.
	ModeVersus Mode = "versus"
	// ModeAI pits a local human against the AI.
	ModeAI Mode = "ai"
	// ModeHost is a networked match where the local human is player one.
	ModeHost Mode = "host"
	// ModeJoin is a networked match where the local human is player two.
	ModeJoin Mode = "join"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeVersus, ModeAI, ModeHost, ModeJoin:
		return m, nil
	}
	return "", fmt.Errorf("match: unknown mode %q", s)
}

// Networked reports whether the mode uses a peer connection.
func (m Mode) Networked() bool { return m == ModeHost || m == ModeJoin }

// LocalSlot returns the combatant index controlled by this process's human
// in a networked mode: 0 for host, 1 for join.
func (m Mode) LocalSlot() int {
	if m == ModeJoin {
		return 1
	}
	return 0
}

// Spawn positions for the two combatants.
var (
	SpawnP1 = combat.Point{X: 200, Y: 400}
	SpawnP2 = combat.Point{X: 1150, Y: 400}
)

// Loadout is one combatant's configured identity and gear.
type Loadout struct {
	Name       string
	WeaponID   string
	ArmorID    string
	Controller combat.Controller
}

// Loadouts holds the configuration for both combatants; index 0 is player one.
type Loadouts [2]Loadout

// Intent is one tick of input for a human-controlled combatant.
type Intent struct {
	// MoveX and MoveY are per-axis directions in {-1, 0, 1}.
	MoveX, MoveY int
	// Attack requests an attack this tick.
	Attack bool
	// Aim is the ranged target point; nil aims at the opponent's center.
	Aim *combat.Point
}

// RemoteState is the most recent snapshot of the remote-controlled combatant.
type RemoteState struct {
	X, Y        float64
	FacingRight bool
	Attack      bool
	Aim         *combat.Point
	Alive       bool
}

// CombatantView is a read-only copy of a combatant for presentation.
type CombatantView struct {
	Name        string
	X, Y        float64
	Width       float64
	Height      float64
	Health      int
	MaxHealth   int
	Cooldown    int
	MaxCooldown int
	FacingRight bool
	Alive       bool
	WeaponID    string
	ArmorID     string
	Controller  combat.ControllerKind
}

// ProjectileView is a read-only copy of a projectile.
type ProjectileView struct {
	X, Y   float64
	Radius float64
}

// PickupView is a read-only copy of a pickup.
type PickupView struct {
	X, Y      float64
	Radius    float64
	Available bool
}

// Frame is a value snapshot of the session for presentation.
type Frame struct {
	Phase       Phase
	Tick        uint64
	Combatants  [2]CombatantView
	Projectiles []ProjectileView
	Pickups     []PickupView
	Zones       []combat.Rect
	// Winner is the index of the surviving combatant, or -1 when undecided or a draw.
	Winner int
	// Disconnected is set by the runner when the network link dropped.
	Disconnected bool
}
