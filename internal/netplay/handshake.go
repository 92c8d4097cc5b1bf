package netplay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrLinkClosed is returned when the link drops before an exchange completes.
var ErrLinkClosed = errors.New("netplay: link closed")

// Handshake sends local as a hello and waits for the remote hello.
// Records other than hello that arrive first are discarded; records that
// arrive after the hello stay queued for the next Poll.
//
// Postcondition: returns ErrLinkClosed if the peer disconnects, or the ctx
// error if ctx ends first.
func Handshake(ctx context.Context, p *Peer, local HelloPayload) (HelloPayload, error) {
	if !p.Send(MsgHello, local) {
		return HelloPayload{}, fmt.Errorf("sending hello: %w", ErrLinkClosed)
	}
	for {
		envs := p.Poll()
		for n, env := range envs {
			if env.T != MsgHello {
				continue
			}
			remote, err := DecodePayload[HelloPayload](env)
			if err != nil {
				p.logger.Warn("bad hello", zap.Error(err))
				continue
			}
			p.requeue(envs[n+1:])
			p.logger.Info("handshake complete",
				zap.String("remote_name", remote.Name),
				zap.String("remote_weapon", remote.Weapon),
				zap.String("remote_armor", remote.Armor),
			)
			return remote, nil
		}
		if !p.Connected() {
			return HelloPayload{}, fmt.Errorf("awaiting hello: %w", ErrLinkClosed)
		}
		select {
		case <-ctx.Done():
			return HelloPayload{}, fmt.Errorf("awaiting hello: %w", ctx.Err())
		case <-time.After(p.opts.PollWindow):
		}
	}
}
