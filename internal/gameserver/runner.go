// Package gameserver drives a match session at a fixed tick rate and bridges
// it to the peer link and the presentation layer.
package gameserver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/match"
	"github.com/cory-johannsen/arena/internal/netplay"
	"github.com/cory-johannsen/arena/internal/observability"
)

// IntentSource supplies one tick of input for the human-controlled combatants.
type IntentSource interface {
	Intents(s *match.Session) [2]match.Intent
}

// IntentFunc adapts a function to IntentSource.
type IntentFunc func(s *match.Session) [2]match.Intent

// Intents calls f(s).
func (f IntentFunc) Intents(s *match.Session) [2]match.Intent { return f(s) }

// Observer receives a frame after every tick. It must not retain the session.
type Observer interface {
	Observe(f match.Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f match.Frame)

// Observe calls f(frame).
func (f ObserverFunc) Observe(frame match.Frame) { f(frame) }

// Link is the peer connection seen by the runner. *netplay.Peer satisfies it.
type Link interface {
	Poll() []netplay.Envelope
	SendState(st netplay.StatePayload) bool
	State() netplay.State
	MarkDisconnected()
}

// Config wires a Runner.
type Config struct {
	// Interval is the tick period; zero selects 60 Hz.
	Interval time.Duration
	Input    IntentSource
	Observer Observer
	// Link is nil for local matches.
	Link Link
	// LocalSlot is the combatant this process sends to the peer.
	LocalSlot int
	Logger    *zap.Logger
}

// Runner runs one session's tick loop. Each tick it polls the link and
// applies the remote snapshot, collects local intents, advances the session,
// sends the local snapshot, and publishes a frame.
//
// Invariant: network faults never surface as errors; a dropped link aborts
// the session to the menu and the final frame has Disconnected set.
type Runner struct {
	session      *match.Session
	cfg          Config
	logger       *zap.Logger
	disconnected bool
}

// NewRunner creates a runner for s.
//
// Precondition: s must be in the playing phase when Step or Run is called.
func NewRunner(s *match.Session, cfg Config) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second / 60
	}
	cfg.Logger = observability.OrNop(cfg.Logger)
	return &Runner{session: s, cfg: cfg, logger: cfg.Logger}
}

// Session returns the session being driven.
func (r *Runner) Session() *match.Session { return r.session }

// Disconnected reports whether the link dropped during the match.
func (r *Runner) Disconnected() bool { return r.disconnected }

// Step runs exactly one tick.
//
// Postcondition: returns false once the session has left the playing phase.
func (r *Runner) Step() bool {
	s := r.session
	if s.Phase() != match.PhasePlaying {
		return false
	}

	if r.cfg.Link != nil && !r.pollLink() && !r.remoteDead() {
		r.abortDisconnected()
		return false
	}

	var intents [2]match.Intent
	if r.cfg.Input != nil {
		intents = r.cfg.Input.Intents(s)
	}
	if err := s.Tick(intents); err != nil {
		r.logger.Debug("tick skipped", zap.Error(err))
		return false
	}

	if r.cfg.Link != nil {
		r.sendLocal(intents[r.cfg.LocalSlot])
	}

	r.publish(s.View())
	return s.Phase() == match.PhasePlaying
}

// pollLink applies every queued state snapshot in arrival order, including
// records that were read before the link dropped.
//
// Postcondition: returns false when the link is disconnected.
func (r *Runner) pollLink() bool {
	link := r.cfg.Link
	for _, env := range link.Poll() {
		switch env.T {
		case netplay.MsgState:
			st, err := netplay.DecodePayload[netplay.StatePayload](env)
			if err != nil {
				r.logger.Warn("dropping state", zap.Error(err))
				continue
			}
			if err := r.session.ApplyRemote(match.RemoteState{
				X:           st.X,
				Y:           st.Y,
				FacingRight: st.FacingRight,
				Attack:      st.Attack,
				Aim:         st.Aim,
				Alive:       st.Alive,
			}); err != nil {
				r.logger.Debug("remote state ignored", zap.Error(err))
			}
		case netplay.MsgBye:
			r.logger.Info("peer said bye")
			link.MarkDisconnected()
			return false
		default:
			r.logger.Debug("ignoring envelope", zap.String("type", string(env.T)))
		}
	}
	return link.State() != netplay.StateDisconnected
}

// remoteDead reports whether the peer announced its combatant's death. A peer
// that leaves right after dying still ends the match normally.
func (r *Runner) remoteDead() bool {
	i, ok := r.session.RemoteSlot()
	return ok && !r.session.Combatant(i).Alive()
}

func (r *Runner) sendLocal(in match.Intent) {
	c := r.session.Combatant(r.cfg.LocalSlot)
	st := netplay.StatePayload{
		X:           c.X,
		Y:           c.Y,
		FacingRight: c.FacingRight,
		Health:      c.Health,
		Alive:       c.Alive(),
	}
	if r.session.Attacked(r.cfg.LocalSlot) {
		st.Attack = true
		st.Aim = in.Aim
	}
	r.cfg.Link.SendState(st)
}

func (r *Runner) abortDisconnected() {
	r.disconnected = true
	r.logger.Warn("link lost; aborting match", zap.Uint64("tick", r.session.TickCount()))
	r.session.Abort()
	f := r.session.View()
	f.Disconnected = true
	r.publish(f)
}

func (r *Runner) publish(f match.Frame) {
	if r.cfg.Observer != nil {
		r.cfg.Observer.Observe(f)
	}
}

// Run ticks at the configured interval until the session leaves the playing
// phase or ctx is cancelled.
//
// Postcondition: returns nil when the match ended or was aborted, ctx.Err() on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !r.Step() {
				return nil
			}
		}
	}
}
