package match

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/inventory"
)

// Step is the current selection in the setup flow.
type Step int

const (
	StepDifficulty Step = iota
	StepP1Weapon
	StepP1Armor
	StepP2Weapon
	StepP2Armor
	StepDone
)

// String returns a human-readable step label.
func (s Step) String() string {
	switch s {
	case StepDifficulty:
		return "difficulty"
	case StepP1Weapon:
		return "p1_weapon"
	case StepP1Armor:
		return "p1_armor"
	case StepP2Weapon:
		return "p2_weapon"
	case StepP2Armor:
		return "p2_armor"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// Setup walks the loadout selection flow for one mode:
//
//	versus: p1 weapon, p1 armor, p2 weapon, p2 armor
//	ai:     difficulty, p1 weapon, p1 armor (the AI loadout is random)
//	host, join: the local weapon and armor only
type Setup struct {
	mode     Mode
	reg      *inventory.Registry
	src      dice.Source
	step     Step
	tier     ai.Tier
	loadouts Loadouts
}

// NewSetup starts the selection flow for mode.
//
// Precondition: reg and src must be non-nil.
func NewSetup(mode Mode, reg *inventory.Registry, src dice.Source) *Setup {
	s := &Setup{mode: mode, reg: reg, src: src, step: StepP1Weapon, tier: ai.Medium}
	if mode == ModeAI {
		s.step = StepDifficulty
	}
	return s
}

// Mode returns the mode being configured.
func (s *Setup) Mode() Mode { return s.mode }

// Step returns the current selection step.
func (s *Setup) Step() Step { return s.step }

// Done reports whether every selection has been made.
func (s *Setup) Done() bool { return s.step == StepDone }

// Options returns the IDs selectable at the current step, in menu order.
func (s *Setup) Options() []string {
	var out []string
	switch s.step {
	case StepDifficulty:
		for _, t := range ai.Tiers() {
			out = append(out, t.String())
		}
	case StepP1Weapon, StepP2Weapon:
		for _, w := range s.reg.Weapons() {
			out = append(out, w.ID)
		}
	case StepP1Armor, StepP2Armor:
		for _, a := range s.reg.Armors() {
			out = append(out, a.ID)
		}
	}
	return out
}

// Choose selects the option at index for the current step and advances.
//
// Postcondition: returns ErrInvalidChoice (wrapped) and leaves the step unchanged
// when index is out of range or setup is already done.
func (s *Setup) Choose(index int) error {
	opts := s.Options()
	if index < 0 || index >= len(opts) {
		return fmt.Errorf("%w: %d at step %s", ErrInvalidChoice, index, s.step)
	}
	id := opts[index]
	switch s.step {
	case StepDifficulty:
		s.tier = ai.Tier(id)
		s.step = StepP1Weapon
	case StepP1Weapon:
		s.loadouts[0].WeaponID = id
		s.step = StepP1Armor
	case StepP1Armor:
		s.loadouts[0].ArmorID = id
		switch {
		case s.mode == ModeAI:
			s.pickAILoadout()
			s.step = StepDone
		case s.mode.Networked():
			s.step = StepDone
		default:
			s.step = StepP2Weapon
		}
	case StepP2Weapon:
		s.loadouts[1].WeaponID = id
		s.step = StepP2Armor
	case StepP2Armor:
		s.loadouts[1].ArmorID = id
		s.step = StepDone
	}
	return nil
}

// Select chooses the option with the given ID at the current step.
//
// Postcondition: returns ErrInvalidChoice (wrapped) and leaves the step
// unchanged when id is not offered.
func (s *Setup) Select(id string) error {
	for i, o := range s.Options() {
		if o == id {
			return s.Choose(i)
		}
	}
	return fmt.Errorf("%w: %q at step %s", ErrInvalidChoice, id, s.step)
}

func (s *Setup) pickAILoadout() {
	weapons := s.reg.Weapons()
	armors := s.reg.Armors()
	s.loadouts[1].WeaponID = weapons[dice.Pick(s.src, len(weapons))].ID
	s.loadouts[1].ArmorID = armors[dice.Pick(s.src, len(armors))].ID
}

// Tier returns the selected AI difficulty.
func (s *Setup) Tier() ai.Tier { return s.tier }

// Loadouts returns the two configured loadouts for a local mode.
//
// Postcondition: returns ErrSetupIncomplete until Done; networked modes must use Local.
func (s *Setup) Loadouts() (Loadouts, error) {
	if !s.Done() {
		return Loadouts{}, ErrSetupIncomplete
	}
	if s.mode.Networked() {
		return Loadouts{}, fmt.Errorf("%w: networked setup yields only the local loadout", ErrSetupIncomplete)
	}
	out := s.loadouts
	out[0].Name = "Player 1"
	out[0].Controller = combat.Human()
	if s.mode == ModeAI {
		out[1].Name = "AI Opponent"
		out[1].Controller = combat.AI(s.tier.String())
	} else {
		out[1].Name = "Player 2"
		out[1].Controller = combat.Human()
	}
	return out, nil
}

// Local returns the local player's weapon and armor selection.
//
// Postcondition: returns ErrSetupIncomplete until the local armor is chosen.
func (s *Setup) Local(name string) (Loadout, error) {
	if s.step <= StepP1Armor {
		return Loadout{}, ErrSetupIncomplete
	}
	l := s.loadouts[0]
	l.Name = name
	l.Controller = combat.Human()
	return l, nil
}

// NetworkLoadouts places the local and remote loadouts into their slots for a
// networked mode: the host is player one and the joining peer is player two.
func NetworkLoadouts(mode Mode, local, remote Loadout) Loadouts {
	local.Controller = combat.Human()
	remote.Controller = combat.Remote()
	var out Loadouts
	out[mode.LocalSlot()] = local
	out[1-mode.LocalSlot()] = remote
	return out
}
