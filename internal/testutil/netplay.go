// Package testutil holds loopback network helpers shared by package tests.
package testutil

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/arena/internal/netplay"
)

// Options returns netplay options tuned for loopback tests.
func Options(t *testing.T) netplay.Options {
	return netplay.Options{
		ConnectTimeout: 2 * time.Second,
		WriteTimeout:   time.Second,
		PollWindow:     5 * time.Millisecond,
		MaxRecordBytes: 4096,
		Logger:         zaptest.NewLogger(t),
	}
}

// LinkedPeers listens on 127.0.0.1:0, dials it, and returns the host and the
// two ends of the accepted link.
//
// Postcondition: both peers are connected; everything is closed on test cleanup.
func LinkedPeers(t *testing.T) (host *netplay.Host, hostSide, joinSide *netplay.Peer) {
	t.Helper()
	start := time.Now()
	opts := Options(t)

	host = netplay.NewHost(opts)
	if err := host.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("listening: %v", err)
	}
	t.Cleanup(func() { _ = host.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	joinSide, err := netplay.Dial(ctx, host.Addr(), opts)
	if err != nil {
		t.Fatalf("dialing %s: %v", host.Addr(), err)
	}
	t.Cleanup(func() { _ = joinSide.Close() })

	hostSide, err = host.WaitPeer(ctx)
	if err != nil {
		t.Fatalf("accepting: %v", err)
	}
	t.Logf("loopback link up [%s]", time.Since(start))
	return host, hostSide, joinSide
}

// PollUntil polls p until want returns true for an envelope or timeout elapses.
//
// Postcondition: returns the matching envelope, or fails the test on timeout.
func PollUntil(t *testing.T, p *netplay.Peer, timeout time.Duration, want func(netplay.Envelope) bool) netplay.Envelope {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, env := range p.Poll() {
			if want(env) {
				return env
			}
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("no matching envelope within %s", timeout)
	return netplay.Envelope{}
}

// RawClient is a plain TCP client for writing arbitrary bytes at a peer.
type RawClient struct {
	conn net.Conn
	t    *testing.T
}

// DialRaw connects a RawClient to addr.
//
// Precondition: addr must have a listener.
func DialRaw(t *testing.T, addr string) *RawClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &RawClient{conn: conn, t: t}
}

// Write sends s verbatim.
func (c *RawClient) Write(s string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := c.conn.Write([]byte(s)); err != nil {
		c.t.Fatalf("writing %q: %v", s, err)
	}
}

// ReadUntil reads until substr appears or timeout elapses.
func (c *RawClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	var buf strings.Builder
	tmp := make([]byte, 1024)
	for {
		n, err := c.conn.Read(tmp)
		if n > 0 {
			buf.Write(tmp[:n])
			if strings.Contains(buf.String(), substr) {
				return buf.String()
			}
		}
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, buf.String(), err)
		}
	}
}

// Close closes the connection.
func (c *RawClient) Close() { c.conn.Close() }
