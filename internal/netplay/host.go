package netplay

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Host listens for exactly one inbound peer. A background goroutine blocks
// in Accept; the accepted peer is published behind a mutex and an atomic
// connected flag so the tick loop can poll it without blocking.
type Host struct {
	opts   Options
	logger *zap.Logger

	mu        sync.Mutex
	listener  net.Listener
	peer      *Peer
	connected atomic.Bool
	wg        sync.WaitGroup
}

// NewHost creates a host that is not yet listening.
func NewHost(opts Options) *Host {
	opts = opts.withDefaults()
	return &Host{opts: opts, logger: opts.Logger}
}

// Listen releases any listener the host previously held, binds addr, and
// starts the accept goroutine.
//
// Postcondition: a bind failure (e.g. address in use) is returned as an error
// and the host holds no listener.
func (h *Host) Listen(addr string) error {
	h.release()
	start := time.Now()

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	h.mu.Lock()
	h.listener = l
	h.mu.Unlock()

	h.logger.Info("host listening",
		zap.String("addr", l.Addr().String()),
		zap.Duration("startup", time.Since(start)),
	)

	h.wg.Add(1)
	go h.accept(l)
	return nil
}

// accept takes one connection from l and then closes l. Closing l from
// another goroutine makes Accept fail, which ends the goroutine.
func (h *Host) accept(l net.Listener) {
	defer h.wg.Done()
	conn, err := l.Accept()
	if err != nil {
		h.logger.Debug("accept ended", zap.Error(err))
		return
	}

	h.mu.Lock()
	if h.listener != l {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.peer = NewPeer(conn, h.opts)
	h.listener = nil
	h.connected.Store(true)
	h.mu.Unlock()
	_ = l.Close()

	h.logger.Info("peer connected", zap.String("remote_addr", conn.RemoteAddr().String()))
}

// Addr returns the bound address, or "" when not listening.
func (h *Host) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener != nil {
		return h.listener.Addr().String()
	}
	return ""
}

// Connected reports whether a peer has been accepted. Safe to call every tick.
func (h *Host) Connected() bool { return h.connected.Load() }

// Peer returns the accepted peer.
//
// Postcondition: ok is false until Connected() is true.
func (h *Host) Peer() (*Peer, bool) {
	if !h.connected.Load() {
		return nil, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.peer, h.peer != nil
}

// State returns waiting until a peer is accepted, then the peer's state.
func (h *Host) State() State {
	if p, ok := h.Peer(); ok {
		return p.State()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener != nil {
		return StateWaiting
	}
	return StateDisconnected
}

// WaitPeer blocks until a peer is accepted or ctx is done, checking every poll window.
func (h *Host) WaitPeer(ctx context.Context) (*Peer, error) {
	t := time.NewTicker(10 * h.opts.PollWindow)
	defer t.Stop()
	for {
		if p, ok := h.Peer(); ok {
			return p, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for peer: %w", ctx.Err())
		case <-t.C:
		}
	}
}

// Close releases the listener and closes the accepted peer, if any.
//
// Postcondition: the accept goroutine has exited.
func (h *Host) Close() error {
	h.release()
	h.mu.Lock()
	p := h.peer
	h.peer = nil
	h.mu.Unlock()
	h.connected.Store(false)
	if p != nil {
		return p.Close()
	}
	return nil
}

func (h *Host) release() {
	h.mu.Lock()
	l := h.listener
	h.listener = nil
	h.mu.Unlock()
	if l != nil {
		_ = l.Close()
	}
	h.wg.Wait()
}

// Dial connects to a listening host.
//
// Postcondition: a connect failure or ctx expiry is returned as an error;
// the caller treats it as a disconnected link.
func Dial(ctx context.Context, addr string, opts Options) (*Peer, error) {
	opts = opts.withDefaults()
	d := net.Dialer{Timeout: opts.ConnectTimeout}
	opts.Logger.Info("dialing host", zap.String("addr", addr), zap.Stringer("state", StateConnecting))
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	return NewPeer(conn, opts), nil
}
