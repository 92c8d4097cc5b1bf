package match

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/inventory"
	"github.com/cory-johannsen/arena/internal/game/world"
	"github.com/cory-johannsen/arena/internal/observability"
)

// Options configures a Session.
type Options struct {
	Registry *inventory.Registry
	Source   dice.Source
	Width    float64
	Height   float64
	Respawn  world.RespawnRule
	Logger   *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Registry == nil {
		o.Registry = inventory.DefaultRegistry()
	}
	if o.Source == nil {
		o.Source = dice.NewCryptoSource()
	}
	if o.Width <= 0 {
		o.Width = 1400
	}
	if o.Height <= 0 {
		o.Height = 800
	}
	if o.Respawn.MinTicks <= 0 || o.Respawn.MaxTicks < o.Respawn.MinTicks {
		o.Respawn = world.DefaultRespawn
	}
	o.Logger = observability.OrNop(o.Logger)
	return o
}

// remoteAttack is one attack received from the peer, resolved on the next
// tick from the position and facing it was made at.
type remoteAttack struct {
	pos    combat.Point
	facing bool
	aim    *combat.Point
}

// Session is one match between two combatants.
//
// Invariant: exactly two combatants exist while the phase is playing or over.
// Session is not safe for concurrent use; the runner owns it.
type Session struct {
	opts        Options
	logger      *zap.Logger
	phase       Phase
	loadouts    Loadouts
	combatants  [2]*combat.Combatant
	controllers [2]*ai.Controller
	projectiles []*combat.Projectile
	arena       *world.Arena
	remote      [2][]remoteAttack
	attacked    [2]bool
	tick        uint64
	winner      int
}

// NewSession returns a session in the menu phase.
//
// Postcondition: Phase() == PhaseMenu.
func NewSession(opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{opts: opts, logger: opts.Logger, winner: -1}
}

// Phase returns the current lifecycle state.
func (s *Session) Phase() Phase { return s.phase }

// BeginSetup enters the setup phase and returns the selection flow for mode.
//
// Postcondition: returns ErrSessionActive (wrapped) while a match is playing.
func (s *Session) BeginSetup(mode Mode) (*Setup, error) {
	if s.phase == PhasePlaying {
		return nil, fmt.Errorf("BeginSetup: %w", ErrSessionActive)
	}
	s.setPhase(PhaseSetup)
	return NewSetup(mode, s.opts.Registry, s.opts.Source), nil
}

// Start spawns both combatants and the arena zones and enters the playing phase.
//
// Postcondition: returns an error wrapping inventory.ErrUnknownWeapon or
// inventory.ErrUnknownArmor for an unresolvable loadout, leaving the phase unchanged.
func (s *Session) Start(l Loadouts) error {
	if s.phase == PhasePlaying {
		return fmt.Errorf("Start: %w", ErrSessionActive)
	}
	spawns := [2]combat.Point{SpawnP1, SpawnP2}
	var fighters [2]*combat.Combatant
	var controllers [2]*ai.Controller
	for i, lo := range l {
		w, a, err := s.opts.Registry.Loadout(lo.WeaponID, lo.ArmorID)
		if err != nil {
			return fmt.Errorf("Start: player %d: %w", i+1, err)
		}
		fighters[i] = combat.NewCombatant(lo.Name, spawns[i].X, spawns[i].Y, w, a, lo.Controller)
		if lo.Controller.Kind == combat.ControlAI {
			tier, err := ai.ParseTier(lo.Controller.Tier)
			if err != nil {
				return fmt.Errorf("Start: player %d: %w", i+1, err)
			}
			controllers[i] = ai.NewController(tier, s.logger.With(zap.String("combatant", lo.Name)))
		}
	}

	s.loadouts = l
	s.combatants = fighters
	s.controllers = controllers
	s.projectiles = nil
	s.remote = [2][]remoteAttack{}
	s.arena = world.NewArena(s.opts.Width, s.opts.Height, s.opts.Source, s.opts.Respawn)
	for _, c := range fighters {
		c.Place(c.X, c.Y, s.arena.Bounds)
	}
	s.tick = 0
	s.winner = -1
	s.setPhase(PhasePlaying)
	s.logger.Info("match started",
		zap.String("p1", l[0].Name), zap.String("p1_weapon", l[0].WeaponID), zap.String("p1_armor", l[0].ArmorID),
		zap.Stringer("p1_control", l[0].Controller.Kind),
		zap.String("p2", l[1].Name), zap.String("p2_weapon", l[1].WeaponID), zap.String("p2_armor", l[1].ArmorID),
		zap.Stringer("p2_control", l[1].Controller.Kind),
	)
	return nil
}

// Rematch restarts a finished match with the same loadouts.
//
// Postcondition: returns ErrNotOver unless Phase() == PhaseOver.
func (s *Session) Rematch() error {
	if s.phase != PhaseOver {
		return ErrNotOver
	}
	return s.Start(s.loadouts)
}

// Abort discards the match and returns to the menu.
//
// Postcondition: Phase() == PhaseMenu.
func (s *Session) Abort() {
	if s.phase == PhaseMenu {
		return
	}
	s.combatants = [2]*combat.Combatant{}
	s.controllers = [2]*ai.Controller{}
	s.projectiles = nil
	s.remote = [2][]remoteAttack{}
	s.arena = nil
	s.winner = -1
	s.setPhase(PhaseMenu)
}

// IsOver reports whether a combatant has died.
func (s *Session) IsOver() bool { return s.phase == PhaseOver }

// Winner returns the index of the surviving combatant. ok is false while the
// match is undecided or when both combatants died on the same tick.
func (s *Session) Winner() (int, bool) {
	return s.winner, s.winner >= 0
}

// TickCount returns the number of ticks run since Start.
func (s *Session) TickCount() uint64 { return s.tick }

// Combatant returns combatant i for read access.
//
// Precondition: 0 <= i <= 1 and the match has started.
func (s *Session) Combatant(i int) *combat.Combatant { return s.combatants[i] }

// Controller returns the AI controller of combatant i, or nil for non-AI combatants.
func (s *Session) Controller(i int) *ai.Controller { return s.controllers[i] }

// Arena returns the playfield of the current match.
func (s *Session) Arena() *world.Arena { return s.arena }

// Projectiles returns the number of live projectiles.
func (s *Session) Projectiles() int { return len(s.projectiles) }

// Attacked reports whether combatant i spent its cooldown on an attack during the last tick.
func (s *Session) Attacked(i int) bool { return s.attacked[i] }

// RemoteSlot returns the index of the remote-controlled combatant.
func (s *Session) RemoteSlot() (int, bool) {
	for i, c := range s.combatants {
		if c != nil && c.Controller.Kind == combat.ControlRemote {
			return i, true
		}
	}
	return -1, false
}

// ApplyRemote writes the peer's latest snapshot into the remote combatant:
// position (clamped), facing, a queued attack, and death reported by the peer.
// Every snapshot flagged with an attack queues one attack. Attacks queued
// before a reported death are resolved before the combatant is killed.
//
// Postcondition: returns ErrNotPlaying outside the playing phase and
// ErrNoRemote when no combatant is remote-controlled.
func (s *Session) ApplyRemote(st RemoteState) error {
	if s.phase != PhasePlaying {
		return ErrNotPlaying
	}
	i, ok := s.RemoteSlot()
	if !ok {
		return ErrNoRemote
	}
	c := s.combatants[i]
	if !c.Alive() {
		return nil
	}
	c.Place(st.X, st.Y, s.arena.Bounds)
	c.FacingRight = st.FacingRight
	if st.Attack {
		s.remote[i] = append(s.remote[i], remoteAttack{pos: c.Position(), facing: c.FacingRight, aim: st.Aim})
	}
	if !st.Alive {
		s.resolveRemote(i)
		c.Health = 0
		c.Kill()
		s.logger.Info("remote combatant reported dead", zap.String("combatant", c.Name))
	}
	return nil
}

// Tick runs one fixed simulation step. intents[i] is read only for
// human-controlled combatants.
//
// Postcondition: returns ErrNotPlaying unless Phase() == PhasePlaying; on
// return no combatant is out of bounds and every health is in [0, MaxHealth].
func (s *Session) Tick(intents [2]Intent) error {
	if s.phase != PhasePlaying {
		return ErrNotPlaying
	}
	s.tick++
	s.attacked = [2]bool{}

	// Queued attacks from human and remote combatants.
	for i, c := range s.combatants {
		switch c.Controller.Kind {
		case combat.ControlHuman:
			if intents[i].Attack {
				s.resolveAttack(i, intents[i].Aim)
			}
		case combat.ControlRemote:
			s.resolveRemote(i)
		}
	}

	for i := range s.combatants {
		s.updateCombatant(i, intents[i])
	}

	for i, ctrl := range s.controllers {
		if ctrl == nil {
			continue
		}
		self, opp := s.combatants[i], s.combatants[1-i]
		if ctrl.ReadyToAttack(self, opp) {
			s.resolveAttack(i, nil)
			ctrl.ResetReaction()
		}
	}

	s.stepProjectiles()

	for _, p := range s.arena.Tick() {
		s.logger.Debug("pickup respawned", zap.Int("pickup", p.ID))
	}

	s.checkTerminal()
	return nil
}

// updateCombatant runs the per-combatant movement, cooldown, pickup, and death steps.
func (s *Session) updateCombatant(i int, in Intent) {
	c := s.combatants[i]
	if !c.Alive() {
		return
	}
	c.RefreshSpeed()
	switch c.Controller.Kind {
	case combat.ControlAI:
		s.controllers[i].Update(c, s.combatants[1-i], s.arena, s.opts.Source)
	case combat.ControlHuman:
		dx := float64(clampAxis(in.MoveX)) * c.Speed
		dy := float64(clampAxis(in.MoveY)) * c.Speed
		if in.MoveX < 0 {
			c.FacingRight = false
		} else if in.MoveX > 0 {
			c.FacingRight = true
		}
		c.Move(dx, dy, s.arena.Bounds)
	}
	c.TickCooldown()
	for _, col := range s.arena.CollectFor(c, s.opts.Source) {
		s.logger.Debug("pickup collected",
			zap.String("combatant", c.Name),
			zap.Int("pickup", col.Pickup.ID),
			zap.Int("healed", col.Healed),
			zap.Int("health", c.Health),
		)
	}
	if c.CheckDeath() {
		s.logger.Info("combatant died", zap.String("combatant", c.Name), zap.Uint64("tick", s.tick))
	}
}

// resolveAttack performs an attack by combatant i. Melee always targets the
// opponent's center at resolution time; ranged attacks use aim when given.
func (s *Session) resolveAttack(i int, aim *combat.Point) {
	attacker, defender := s.combatants[i], s.combatants[1-i]
	target := defender.Center()
	if aim != nil && attacker.Weapon.Projectile {
		target = *aim
	}
	res := attacker.Attack(target)
	if res.Attempted {
		s.attacked[i] = true
	}
	switch res.Kind {
	case combat.AttackMelee:
		dealt := defender.ApplyDamage(res.Damage)
		s.logger.Debug("melee hit",
			zap.String("attacker", attacker.Name),
			zap.String("defender", defender.Name),
			zap.Int("damage", dealt),
			zap.Int("health", defender.Health),
		)
	case combat.AttackRanged:
		s.projectiles = append(s.projectiles, res.Projectile)
		s.logger.Debug("projectile fired",
			zap.String("attacker", attacker.Name),
			zap.String("projectile", res.Projectile.ID.String()),
		)
	}
}

// resolveRemote resolves the attacks queued for remote combatant i in arrival
// order, each from the position it was made at. The peer already gated every
// attack on its own cooldown.
//
// Postcondition: the queue is empty and the combatant is back at its latest snapshot.
func (s *Session) resolveRemote(i int) {
	queued := s.remote[i]
	if len(queued) == 0 {
		return
	}
	s.remote[i] = nil
	c := s.combatants[i]
	latest, facing := c.Position(), c.FacingRight
	for _, a := range queued {
		c.X, c.Y = a.pos.X, a.pos.Y
		c.FacingRight = a.facing
		c.Cooldown = 0
		s.resolveAttack(i, a.aim)
	}
	c.X, c.Y = latest.X, latest.Y
	c.FacingRight = facing
}

func (s *Session) stepProjectiles() {
	live := s.projectiles[:0]
	for _, p := range s.projectiles {
		p.Step(s.arena.Bounds)
		if !p.Alive() {
			continue
		}
		for _, c := range s.combatants {
			if !p.CanHit(c) {
				continue
			}
			dealt := c.ApplyDamage(p.Damage)
			p.Kill()
			s.logger.Debug("projectile hit",
				zap.String("defender", c.Name),
				zap.Int("damage", dealt),
				zap.Int("health", c.Health),
			)
			break
		}
		if p.Alive() {
			live = append(live, p)
		}
	}
	for i := len(live); i < len(s.projectiles); i++ {
		s.projectiles[i] = nil
	}
	s.projectiles = live
}

func (s *Session) checkTerminal() {
	for _, c := range s.combatants {
		if c.CheckDeath() {
			s.logger.Info("combatant died", zap.String("combatant", c.Name), zap.Uint64("tick", s.tick))
		}
	}
	a, b := s.combatants[0].Alive(), s.combatants[1].Alive()
	if a && b {
		return
	}
	switch {
	case a:
		s.winner = 0
	case b:
		s.winner = 1
	default:
		s.winner = -1
	}
	s.setPhase(PhaseOver)
}

func (s *Session) setPhase(p Phase) {
	if s.phase == p {
		return
	}
	s.logger.Info("phase change", zap.Stringer("from", s.phase), zap.Stringer("to", p))
	s.phase = p
}

// View returns a value snapshot for presentation.
//
// Postcondition: mutating the returned Frame never affects the session.
func (s *Session) View() Frame {
	f := Frame{Phase: s.phase, Tick: s.tick, Winner: s.winner}
	for i, c := range s.combatants {
		if c == nil {
			continue
		}
		f.Combatants[i] = CombatantView{
			Name:        c.Name,
			X:           c.X,
			Y:           c.Y,
			Width:       c.Width,
			Height:      c.Height,
			Health:      c.Health,
			MaxHealth:   c.MaxHealth,
			Cooldown:    c.Cooldown,
			MaxCooldown: c.Weapon.Cooldown,
			FacingRight: c.FacingRight,
			Alive:       c.Alive(),
			WeaponID:    c.Weapon.ID,
			ArmorID:     c.Armor.ID,
			Controller:  c.Controller.Kind,
		}
	}
	for _, p := range s.projectiles {
		f.Projectiles = append(f.Projectiles, ProjectileView{X: p.X, Y: p.Y, Radius: p.Radius})
	}
	if s.arena != nil {
		for _, z := range s.arena.Zones {
			f.Zones = append(f.Zones, z.Rect)
			for _, p := range z.Pickups {
				f.Pickups = append(f.Pickups, PickupView{X: p.Pos.X, Y: p.Pos.Y, Radius: p.Radius, Available: p.Available()})
			}
		}
	}
	return f
}

func clampAxis(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
