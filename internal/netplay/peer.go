package netplay

import (
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/observability"
)

// State is the link lifecycle state exposed to the presentation layer.
type State int32

const (
	// StateConnecting is a join peer dialing the host.
	StateConnecting State = iota
	// StateWaiting is a host listening for its single peer.
	StateWaiting
	// StateConnected is an established link.
	StateConnected
	// StateDisconnected is terminal; there is no reconnection.
	StateDisconnected
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateWaiting:
		return "waiting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Options configures a Peer, Host, or Dial.
type Options struct {
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	// PollWindow is the read deadline Poll sets; it bounds how long a poll may block.
	PollWindow     time.Duration
	MaxRecordBytes int
	Logger         *zap.Logger
}

// OptionsFromConfig builds Options from the network configuration section.
func OptionsFromConfig(cfg config.NetworkConfig, logger *zap.Logger) Options {
	return Options{
		ConnectTimeout: cfg.ConnectTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		PollWindow:     cfg.PollWindow,
		MaxRecordBytes: cfg.MaxRecordBytes,
		Logger:         logger,
	}
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 5 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 100 * time.Millisecond
	}
	if o.PollWindow <= 0 {
		o.PollWindow = time.Millisecond
	}
	if o.MaxRecordBytes <= 0 {
		o.MaxRecordBytes = DefaultMaxRecordBytes
	}
	o.Logger = observability.OrNop(o.Logger)
	return o
}

// Peer is one end of an established link.
//
// Send and Poll may be called from different goroutines; each must only be
// called from one goroutine at a time.
type Peer struct {
	conn   net.Conn
	opts   Options
	logger *zap.Logger
	lr     *LineReader
	// pending holds envelopes already read but not yet handed out by Poll.
	pending []Envelope

	state     atomic.Int32
	seq       atomic.Uint64
	writeMu   sync.Mutex
	closeOnce sync.Once
}

// NewPeer wraps an established connection.
//
// Precondition: conn must be open.
// Postcondition: State() == StateConnected.
func NewPeer(conn net.Conn, opts Options) *Peer {
	opts = opts.withDefaults()
	p := &Peer{
		conn:   conn,
		opts:   opts,
		logger: opts.Logger.With(zap.String("remote_addr", conn.RemoteAddr().String())),
		lr:     NewLineReader(conn, opts.MaxRecordBytes),
	}
	p.state.Store(int32(StateConnected))
	return p
}

// State returns the current link state.
func (p *Peer) State() State { return State(p.state.Load()) }

// Connected reports whether the link is usable.
func (p *Peer) Connected() bool { return p.State() == StateConnected }

// RemoteAddr returns the peer's address.
func (p *Peer) RemoteAddr() string { return p.conn.RemoteAddr().String() }

// Send writes one envelope with the configured write deadline. It is
// fire-and-forget: any failure marks the peer disconnected.
//
// Postcondition: returns false if the peer was already disconnected or the write failed.
func (p *Peer) Send(t MsgType, payload any) bool {
	if !p.Connected() {
		return false
	}
	rec, err := Encode(t, payload)
	if err != nil {
		p.logger.Warn("encoding outbound record", zap.String("type", string(t)), zap.Error(err))
		return false
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(p.opts.WriteTimeout))
	if _, err := p.conn.Write(rec); err != nil {
		p.fault("send", err)
		return false
	}
	return true
}

// SendState stamps st with the next outbound sequence number and sends it.
func (p *Peer) SendState(st StatePayload) bool {
	st.Seq = p.seq.Add(1)
	return p.Send(MsgState, st)
}

// Poll reads whatever has arrived within the poll window and returns every
// complete envelope queued, oldest first. A read timeout means no update and
// is not a fault. EOF, oversized records, and other read errors mark the
// peer disconnected; envelopes completed before the fault are still returned.
// Malformed records are logged and skipped. Envelopes pushed back with
// requeue come first.
//
// Postcondition: never blocks longer than the poll window.
func (p *Peer) Poll() []Envelope {
	if p.Connected() {
		p.fill()
	}
	out := p.pending
	p.pending = nil
	for {
		rec, ok := p.lr.Next()
		if !ok {
			break
		}
		env, err := Decode(rec)
		if err != nil {
			p.logger.Warn("dropping inbound record", zap.Error(err))
			continue
		}
		out = append(out, env)
	}
	return out
}

// requeue pushes envs back so the next Poll returns them ahead of newer records.
func (p *Peer) requeue(envs []Envelope) {
	if len(envs) == 0 {
		return
	}
	p.pending = append(append([]Envelope(nil), envs...), p.pending...)
}

func (p *Peer) fill() {
	_ = p.conn.SetReadDeadline(time.Now().Add(p.opts.PollWindow))
	for {
		err := p.lr.Fill()
		if err == nil {
			continue
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return
		}
		p.fault("recv", err)
		return
	}
}

func (p *Peer) fault(op string, err error) {
	if State(p.state.Swap(int32(StateDisconnected))) != StateDisconnected {
		p.logger.Warn("link fault", zap.String("op", op), zap.Error(err))
	}
	p.closeConn()
}

// Close sends a best-effort bye and closes the connection.
//
// Postcondition: State() == StateDisconnected.
func (p *Peer) Close() error {
	if p.Connected() {
		p.Send(MsgBye, nil)
	}
	p.state.Store(int32(StateDisconnected))
	return p.closeConn()
}

// MarkDisconnected closes the link after the remote peer said bye.
func (p *Peer) MarkDisconnected() {
	if State(p.state.Swap(int32(StateDisconnected))) != StateDisconnected {
		p.logger.Info("peer left")
	}
	p.closeConn()
}

func (p *Peer) closeConn() error {
	var err error
	p.closeOnce.Do(func() { err = p.conn.Close() })
	return err
}
