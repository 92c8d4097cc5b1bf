package ai

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/world"
	"github.com/cory-johannsen/arena/internal/observability"
)

// Mode is the controller's current strategy.
type Mode int

const (
	// ModeIdle holds position until the first decision tick.
	ModeIdle Mode = iota
	// ModeHeal walks toward the nearest available pickup.
	ModeHeal
	// ModeAttack keeps the opponent at the weapon's optimal range.
	ModeAttack
)

// String returns a human-readable mode label.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeHeal:
		return "heal"
	case ModeAttack:
		return "attack"
	default:
		return "unknown"
	}
}

const (
	// arriveDistance ends a heal walk.
	arriveDistance = 10
	// healAxisDeadband suppresses jitter on an axis already aligned with the pickup.
	healAxisDeadband = 5
	// attackAxisDeadband suppresses jitter on an axis already aligned with the opponent.
	attackAxisDeadband = 10
	// rangeSlack is the tolerance band around the optimal range.
	rangeSlack = 50
	// optimalRangeFactor scales the weapon range into the preferred distance.
	optimalRangeFactor = 0.8
	// mistakeOffset is the magnitude of a corrupted steering direction.
	mistakeOffset = 50
)

// Steering is the movement a controller wants to apply this tick.
type Steering struct {
	DX, DY float64
	// Face reports whether FacingRight should be applied.
	Face        bool
	FacingRight bool
}

// Controller is the per-combatant AI state.
//
// Distances used for steering and for the attack trigger are measured between
// the combatants' top-left corners.
type Controller struct {
	tier     Tier
	params   Params
	mode     Mode
	timer    int
	target   combat.Point
	reaction int
	logger   *zap.Logger
}

// NewController returns an idle controller for tier.
//
// Postcondition: Mode() == ModeIdle.
func NewController(tier Tier, logger *zap.Logger) *Controller {
	return &Controller{tier: tier, params: tier.Params(), logger: observability.OrNop(logger)}
}

// Tier returns the controller's difficulty tier.
func (c *Controller) Tier() Tier { return c.tier }

// Mode returns the current strategy.
func (c *Controller) Mode() Mode { return c.mode }

// Target returns the position of the pickup being sought in ModeHeal.
func (c *Controller) Target() combat.Point { return c.target }

// Decide re-evaluates the strategy. It runs every DecisionDelay ticks from
// Plan and is exported for tests.
//
// Postcondition: Mode() is ModeHeal iff self.Health < HealthThreshold and a
// pickup is available; otherwise ModeAttack.
func (c *Controller) Decide(self *combat.Combatant, arena *world.Arena) {
	prev := c.mode
	c.mode = ModeAttack
	if self.Health < c.params.HealthThreshold {
		if p, ok := arena.NearestAvailable(self.Position()); ok {
			c.mode = ModeHeal
			c.target = p.Pos
		}
	}
	if c.mode != prev {
		c.logger.Debug("ai mode change",
			zap.String("combatant", self.Name),
			zap.Stringer("from", prev),
			zap.Stringer("to", c.mode),
			zap.Int("health", self.Health),
		)
	}
}

// Plan advances the decision timer and returns the movement for this tick.
//
// Precondition: self, opponent, arena, and src must be non-nil.
// Postcondition: self is not modified except by mode bookkeeping in c.
func (c *Controller) Plan(self, opponent *combat.Combatant, arena *world.Arena, src dice.Source) Steering {
	c.timer++
	if c.timer%c.params.DecisionDelay == 0 {
		c.Decide(self, arena)
	}

	speed := self.Speed * c.params.MoveFactor
	switch c.mode {
	case ModeHeal:
		dx := c.target.X - self.X
		dy := c.target.Y - self.Y
		if math.Hypot(dx, dy) <= arriveDistance {
			c.mode = ModeAttack
			return Steering{}
		}
		return Steering{
			DX: axisStep(dx, healAxisDeadband, speed),
			DY: axisStep(dy, healAxisDeadband, speed),
		}

	case ModeAttack:
		dx := opponent.X - self.X
		dy := opponent.Y - self.Y
		dist := math.Hypot(dx, dy)
		optimal := self.Weapon.Range * optimalRangeFactor

		if src.Float64() > c.params.Accuracy {
			dx = float64(dice.Sign(src) * mistakeOffset)
			dy = float64(dice.Sign(src) * mistakeOffset)
		}

		s := Steering{Face: true, FacingRight: dx > 0}
		switch {
		case dist > optimal+rangeSlack:
			s.DX = axisStep(dx, attackAxisDeadband, speed)
			s.DY = axisStep(dy, attackAxisDeadband, speed)
		case dist < optimal-rangeSlack && self.Weapon.IsMelee():
			s.DX = -axisStep(dx, attackAxisDeadband, speed)
			s.DY = -axisStep(dy, attackAxisDeadband, speed)
		}
		return s
	}
	return Steering{}
}

// Update plans and applies this tick's movement to self, clamped into the
// arena bounds.
//
// Precondition: self.Alive() and opponent non-nil.
func (c *Controller) Update(self, opponent *combat.Combatant, arena *world.Arena, src dice.Source) {
	s := c.Plan(self, opponent, arena, src)
	self.Move(s.DX, s.DY, arena.Bounds)
	if s.Face {
		self.FacingRight = s.FacingRight
	}
}

// ReadyToAttack advances the reaction counter and reports whether the AI
// should attack this tick: the counter has reached AttackDelay, the weapon is
// off cooldown, and the opponent is within weapon range.
//
// Postcondition: the counter does not advance unless both combatants are alive.
func (c *Controller) ReadyToAttack(self, opponent *combat.Combatant) bool {
	if !self.Alive() || !opponent.Alive() {
		return false
	}
	c.reaction++
	if self.Cooldown != 0 || c.reaction < c.params.AttackDelay {
		return false
	}
	return self.Position().Distance(opponent.Position()) <= self.Weapon.Range
}

// ResetReaction restarts the reaction counter after an issued attack.
func (c *Controller) ResetReaction() { c.reaction = 0 }

// Reaction returns the current reaction counter.
func (c *Controller) Reaction() int { return c.reaction }

func axisStep(delta, deadband, speed float64) float64 {
	if math.Abs(delta) <= deadband {
		return 0
	}
	if delta > 0 {
		return speed
	}
	return -speed
}
