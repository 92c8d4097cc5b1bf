package gameserver

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/match"
	"github.com/cory-johannsen/arena/internal/observability"
)

// Autopilot produces intents for human-controlled slots from an AI
// controller, so a headless process can play its side of a match. The AI
// steering is reduced to per-axis directions, the same input a keyboard gives.
type Autopilot struct {
	src         dice.Source
	controllers [2]*ai.Controller
}

// NewAutopilot drives the given slots at tier.
//
// Precondition: src must be non-nil; every slot must be 0 or 1.
func NewAutopilot(tier ai.Tier, src dice.Source, logger *zap.Logger, slots ...int) *Autopilot {
	logger = observability.OrNop(logger)
	a := &Autopilot{src: src}
	for _, i := range slots {
		a.controllers[i] = ai.NewController(tier, logger.With(zap.Int("autopilot_slot", i)))
	}
	return a
}

// Intents implements IntentSource.
func (a *Autopilot) Intents(s *match.Session) [2]match.Intent {
	var out [2]match.Intent
	for i, ctrl := range a.controllers {
		if ctrl == nil {
			continue
		}
		self, opp := s.Combatant(i), s.Combatant(1-i)
		if !self.Alive() {
			continue
		}
		steer := ctrl.Plan(self, opp, s.Arena(), a.src)
		out[i].MoveX = direction(steer.DX)
		out[i].MoveY = direction(steer.DY)
		if ctrl.ReadyToAttack(self, opp) {
			out[i].Attack = true
			ctrl.ResetReaction()
		}
	}
	return out
}

func direction(v float64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
